package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/client/session"
	"github.com/dmitrijs2005/storefront/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for a username and a hidden password and hands them to the
// session manager. A failed attempt prints the reason and leaves the
// current session as it was. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, userName, password); err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", a.session.State().DisplayName())
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the current session state.
func (a *App) WhoAmI(context.Context) error {
	s := a.session.State()

	if s.Loading {
		fmt.Fprintln(a.out, "Session is still loading")
		return nil
	}

	id, ok := s.Identity.Get()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	fmt.Fprintf(a.out, "id:       %d\n", id.ID)
	fmt.Fprintf(a.out, "username: %s\n", id.Username)
	fmt.Fprintf(a.out, "admin:    %t\n", id.IsAdmin)
	if _, ok := s.Profile.Get(); ok {
		fmt.Fprintf(a.out, "name:     %s\n", s.DisplayName())
	} else {
		fmt.Fprintf(a.out, "name:     %s (profile unavailable)\n", s.DisplayName())
	}
	return nil
}

// RefreshProfile re-reads the display metadata without touching the
// identity.
func (a *App) RefreshProfile(ctx context.Context) error {
	if err := a.session.RefreshProfile(ctx); err != nil {
		fmt.Fprintln(a.out, "Profile refresh failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

// Reload asks the server again who is logged in.
func (a *App) Reload(ctx context.Context) error {
	if err := a.session.Refresh(ctx); err != nil {
		fmt.Fprintln(a.out, "Session reload:", err)
		return err
	}
	fmt.Fprintln(a.out, "Session reloaded")
	return nil
}

// Forget drops every stored cookie and then re-checks the session, which
// leaves the client logged out locally without telling the server.
func (a *App) Forget(ctx context.Context) error {
	if err := a.jar.Clear(ctx); err != nil {
		fmt.Fprintln(a.out, "Could not clear saved session:", err)
		return err
	}
	fmt.Fprintln(a.out, "Saved session removed")

	// the server no longer recognises us, so not being logged in is expected
	if err := a.session.Refresh(ctx); err != nil && !errors.Is(err, session.ErrNotAuthenticated) {
		a.log.Debug(ctx, "session check after forget failed", "error", err)
		fmt.Fprintln(a.out, "Session check failed:", err)
	}
	return nil
}
