package session

import (
	"errors"

	"github.com/dmitrijs2005/storefront/internal/client/api"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNetwork            = errors.New("network error")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrServer             = errors.New("server error")
)

// ServerError carries a message the server wrote for the user.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// userError reduces an api error to something displayable. rejected is used
// when the server refused without a message.
func userError(err error, rejected error) error {
	var re *api.RejectedError
	switch {
	case errors.As(err, &re) && re.Message != "":
		return &ServerError{Message: re.Message}
	case errors.Is(err, api.ErrUnavailable):
		return ErrNetwork
	default:
		return rejected
	}
}
