// Package session owns the client's view of who is logged in.
//
// A single Manager is created at startup and handed to every consumer. It
// starts in the loading state, resolves itself with one automatic
// who-am-I call (the bootstrap), and afterwards changes only through Login,
// Logout, Refresh and RefreshProfile.
//
// # State
//
// State is an immutable snapshot: Identity and Profile are opt.Option
// values, so absence is explicit. At rest both are present or both absent,
// except after a failed RefreshProfile, which clears Profile and keeps
// Identity. State.DisplayName falls back to the username in that case.
//
// # Errors
//
// Operations never return transport errors. Each failure is reduced to an
// error whose Error() text can be shown to the user as is: the server's own
// message when it sent one, otherwise ErrInvalidCredentials (login),
// ErrNotAuthenticated or ErrServer, and ErrNetwork when the request never
// completed.
//
// # Concurrency
//
// Operations may overlap. Each one writes the state once, when its response
// arrives, so the final state is decided by completion order, not call
// order. Login, Logout and Refresh replace the whole state; RefreshProfile
// rewrites only the Profile of whatever state is current when it lands.
// Nothing serializes the operations: callers that need ordering must wait
// for one operation before starting the next.
package session
