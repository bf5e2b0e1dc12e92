package session

import "fmt"

// LogoutPolicy decides what happens to the local state when the server does
// not confirm a logout.
type LogoutPolicy string

const (
	// LogoutConservative keeps the user logged in locally until the server
	// confirms the logout.
	LogoutConservative LogoutPolicy = "conservative"
	// LogoutOptimistic clears the local state even if the server call fails.
	// The failure is still returned.
	LogoutOptimistic LogoutPolicy = "optimistic"
)

// ParseLogoutPolicy reads a policy name. An empty name means conservative.
func ParseLogoutPolicy(s string) (LogoutPolicy, error) {
	switch p := LogoutPolicy(s); p {
	case LogoutConservative, LogoutOptimistic:
		return p, nil
	case "":
		return LogoutConservative, nil
	default:
		return "", fmt.Errorf("unknown logout policy %q", s)
	}
}
