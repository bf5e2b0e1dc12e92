// Package cli provides the interactive storefront command-line client.
//
// It wires configuration, the persisted cookie jar, the API client and the
// session manager, then runs a REPL over the session operations. The REPL
// waits for the session bootstrap before showing the first prompt, so a
// session saved by a previous run is picked up automatically.
//
// Commands:
//   - whoami: show the current identity, profile and loading flag
//   - login / logout
//   - refresh: re-read the profile only
//   - reload: re-check the whole session with the server
//   - forget: drop saved cookies and re-check the session
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
