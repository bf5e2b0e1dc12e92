package session

import (
	"github.com/dmitrijs2005/storefront/internal/client/api"
	"github.com/dmitrijs2005/storefront/internal/opt"
)

// Identity is the authenticated account. It is replaced as a whole, never
// edited in place.
type Identity struct {
	ID       int64
	Username string
	IsAdmin  bool
}

// Profile holds the mutable, displayable part of the account.
type Profile struct {
	DisplayName string
}

// State is a snapshot of the session. The zero State is logged out.
type State struct {
	Identity opt.Option[Identity]
	Profile  opt.Option[Profile]
	Loading  bool
}

// Authenticated reports whether an identity is present.
func (s State) Authenticated() bool {
	return s.Identity.IsSome()
}

// IsAdmin reports whether the current identity carries the admin flag.
func (s State) IsAdmin() bool {
	return opt.Map(s.Identity, func(id Identity) bool { return id.IsAdmin }).OrElse(false)
}

// DisplayName returns the profile display name, falling back to the
// username when the profile is missing or blank. It is empty when nobody
// is logged in.
func (s State) DisplayName() string {
	if name := opt.Map(s.Profile, func(p Profile) string { return p.DisplayName }).OrElse(""); name != "" {
		return name
	}
	return opt.Map(s.Identity, func(id Identity) string { return id.Username }).OrElse("")
}

func signedOut() State {
	return State{}
}

func signedIn(u *api.User) State {
	return State{
		Identity: opt.Some(Identity{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}),
		Profile:  opt.Some(profileOf(u)),
	}
}

func profileOf(u *api.User) Profile {
	return Profile{DisplayName: u.DisplayName}
}
