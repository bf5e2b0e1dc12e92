package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/storefront/internal/client/api/apitest"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = apitest.Account{ID: 7, Username: "alice", Password: "secret", DisplayName: "Alice A"}

func newTestClient(t *testing.T, opts ...Option) (*HTTPClient, *apitest.Server) {
	t.Helper()
	srv := apitest.New(alice, apitest.Account{ID: 1, Username: "root", Password: "toor", IsAdmin: true})
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, opts...)
	require.NoError(t, err)
	return c, srv
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.com")
	assert.Error(t, err)

	_, err = NewHTTPClient("://nope")
	assert.Error(t, err)
}

func TestLoginThenMe_CarriesSessionCookie(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	u, err := c.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 7, Username: "alice", DisplayName: "Alice A"}, u)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, me)
}

func TestMe_NoSession(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMe_LegacyFlatPayload(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()
	srv.SetLegacyMe(true)

	_, err := c.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized, "legacy reply is 401 without a session")

	_, err = c.Login(ctx, "root", []byte("toor"))
	require.NoError(t, err)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Username: "root", IsAdmin: true}, me)
}

func TestLogin_ServerMessage(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Login(context.Background(), "alice", []byte("wrong"))
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Invalid credentials", rejected.Error())
}

func TestLogout_EndsSession(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)
	require.Equal(t, 1, srv.ActiveSessions())

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, 0, srv.ActiveSessions())

	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFailureMapping(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		fault apitest.Fault
		call  func(c *HTTPClient) error
		check func(t *testing.T, err error)
	}{
		{
			name:  "500 without body",
			path:  common.DefaultLogoutPath,
			fault: apitest.Fault{Status: http.StatusInternalServerError},
			call:  func(c *HTTPClient) error { return c.Logout(context.Background()) },
			check: func(t *testing.T, err error) {
				var rejected *RejectedError
				require.ErrorAs(t, err, &rejected)
				assert.Equal(t, http.StatusInternalServerError, rejected.StatusCode)
				assert.Empty(t, rejected.Message)
			},
		},
		{
			name:  "403 with message",
			path:  common.DefaultLoginPath,
			fault: apitest.Fault{Status: http.StatusForbidden, Body: `{"success":false,"error":"Account locked"}`},
			call: func(c *HTTPClient) error {
				_, err := c.Login(context.Background(), "alice", []byte("secret"))
				return err
			},
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "Account locked")
			},
		},
		{
			name:  "401 with html body",
			path:  common.DefaultMePath,
			fault: apitest.Fault{Status: http.StatusUnauthorized, Body: `<html>nope</html>`},
			call: func(c *HTTPClient) error {
				_, err := c.Me(context.Background())
				return err
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
			},
		},
		{
			name:  "malformed json on 200",
			path:  common.DefaultMePath,
			fault: apitest.Fault{Status: http.StatusOK, Body: `{"success":tru`},
			call: func(c *HTTPClient) error {
				_, err := c.Me(context.Background())
				return err
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:  "success without user",
			path:  common.DefaultLoginPath,
			fault: apitest.Fault{Status: http.StatusOK, Body: `{"success":true}`},
			call: func(c *HTTPClient) error {
				_, err := c.Login(context.Background(), "alice", []byte("secret"))
				return err
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:  "connection dropped",
			path:  common.DefaultMePath,
			fault: apitest.Fault{Hijack: true},
			call: func(c *HTTPClient) error {
				_, err := c.Me(context.Background())
				return err
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(t)
			srv.SetFault(tt.path, tt.fault)
			tt.check(t, tt.call(c))
		})
	}
}

func TestTimeoutIsUnavailable(t *testing.T) {
	c, srv := newTestClient(t, WithTimeout(50*time.Millisecond))
	srv.SetFault(common.DefaultMePath, apitest.Fault{Delay: time.Second})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestServerDown(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Close()

	err := c.Logout(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRequestIDOnEveryCall(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	_, _ = c.Me(ctx)
	_, _ = c.Login(ctx, "alice", []byte("secret"))

	ids := srv.RequestIDs()
	require.Len(t, ids, 2)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestWithPaths(t *testing.T) {
	c, srv := newTestClient(t, WithPaths("/api/me", "/api/signin", ""))

	_, err := c.Login(context.Background(), "alice", []byte("secret"))
	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected), "unknown path is a rejection, got %v", err)
	assert.Equal(t, http.StatusNotFound, rejected.StatusCode)
	assert.Equal(t, 1, srv.Calls("/api/signin"))
}

func TestEndpointJoinsBasePath(t *testing.T) {
	c, err := NewHTTPClient("https://shop.example/store/")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/store/api/me", c.endpoint("/api/me"))
}
