// Package common contains constants and byte helpers shared by the client
// packages.
package common

// RequestIDHeaderName is the HTTP header carrying the correlation ID of an
// outbound API request.
const RequestIDHeaderName = "X-Request-ID"

// Default paths of the remote authentication endpoints, relative to the
// server URL.
const (
	DefaultMePath     = "/api/me"
	DefaultLoginPath  = "/api/login"
	DefaultLogoutPath = "/api/logout"
)
