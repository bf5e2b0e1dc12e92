package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/google/uuid"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

type HTTPClient struct {
	baseURL    *url.URL
	mePath     string
	loginPath  string
	logoutPath string
	httpClient *http.Client
	log        logging.Logger
}

type Option func(*HTTPClient)

// WithJar sets the cookie jar carrying the session cookie.
func WithJar(jar http.CookieJar) Option {
	return func(c *HTTPClient) { c.httpClient.Jar = jar }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithPaths overrides the endpoint paths. Empty values keep the defaults.
func WithPaths(me, login, logout string) Option {
	return func(c *HTTPClient) {
		if me != "" {
			c.mePath = me
		}
		if login != "" {
			c.loginPath = login
		}
		if logout != "" {
			c.logoutPath = logout
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithTransport replaces the HTTP transport, e.g. to inject faults in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.httpClient.Transport = rt }
}

// NewHTTPClient returns a client for the API rooted at baseURL. Without
// WithJar the client still keeps cookies, in memory.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL:    u,
		mePath:     common.DefaultMePath,
		loginPath:  common.DefaultLoginPath,
		logoutPath: common.DefaultLogoutPath,
		httpClient: &http.Client{},
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar, _ = cookiejar.New(nil)
	}
	return c, nil
}

// envelope covers both the {"success", "user", "error"} shape and the
// legacy flat who-am-I payload with user fields at the top level.
type envelope struct {
	Success *bool  `json:"success"`
	User    *User  `json:"user"`
	Error   string `json:"error"`

	UserID      *int64 `json:"user_id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
	DisplayName string `json:"display_name"`
}

func (e *envelope) user() *User {
	if e.User != nil {
		return e.User
	}
	if e.UserID != nil {
		return &User{ID: *e.UserID, Username: e.Username, IsAdmin: e.IsAdmin, DisplayName: e.DisplayName}
	}
	return nil
}

func (e *envelope) succeeded() bool {
	if e.Success != nil {
		return *e.Success
	}
	// Legacy payloads carry no flag; a user means success.
	return e.UserID != nil
}

func (c *HTTPClient) Me(ctx context.Context) (*User, error) {
	env, err := c.do(ctx, http.MethodGet, c.mePath, nil)
	if err != nil {
		return nil, err
	}
	return userFrom(env)
}

func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (*User, error) {
	body, err := json.Marshal(struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: string(password)})
	if err != nil {
		return nil, err
	}

	env, err := c.do(ctx, http.MethodPost, c.loginPath, body)
	if err != nil {
		return nil, err
	}
	return userFrom(env)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, c.logoutPath, nil)
	return err
}

func userFrom(env *envelope) (*User, error) {
	if env == nil {
		return nil, ErrMalformedResponse
	}
	if !env.succeeded() {
		if env.Error != "" {
			return nil, &RejectedError{StatusCode: http.StatusOK, Message: env.Error}
		}
		return nil, ErrUnauthorized
	}
	u := env.user()
	if u == nil {
		return nil, fmt.Errorf("%w: no user in successful reply", ErrMalformedResponse)
	}
	return u, nil
}

// do sends one request and decodes the reply. A nil envelope with a nil
// error means a 2xx reply with an empty body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	requestID := uuid.NewString()
	log := c.log.With("request_id", requestID, "method", method, "path", path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Debug(ctx, "reading body failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	var env *envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		env = &envelope{}
		if err := json.Unmarshal(raw, env); err != nil {
			env = nil
			if isSuccess(resp.StatusCode) {
				return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
		}
	}

	if !isSuccess(resp.StatusCode) {
		return nil, mapStatus(resp.StatusCode, env)
	}
	return env, nil
}

func (c *HTTPClient) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return u.String()
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func mapStatus(code int, env *envelope) error {
	if env != nil && env.Error != "" {
		return &RejectedError{StatusCode: code, Message: env.Error}
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return &RejectedError{StatusCode: code}
	}
}
