package api

import "context"

// User is the account record returned by the who-am-I and login endpoints.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
	DisplayName string `json:"display_name"`
}

// Client talks to the remote authentication endpoints. The session itself
// travels in cookies managed by the implementation.
type Client interface {
	Me(ctx context.Context) (*User, error)
	Login(ctx context.Context, username string, password []byte) (*User, error)
	Logout(ctx context.Context) error
}
