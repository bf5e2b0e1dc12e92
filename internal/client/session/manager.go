package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/storefront/internal/client/api"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/opt"
)

// Manager is the process-wide session state container.
type Manager struct {
	client       api.Client
	log          logging.Logger
	logoutPolicy LogoutPolicy

	state atomic.Pointer[State]
	ready chan struct{}

	obsMu     sync.Mutex
	observers map[int]func(State)
	nextObsID int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithLogoutPolicy sets how a failed logout treats local state.
func WithLogoutPolicy(p LogoutPolicy) Option {
	return func(m *Manager) { m.logoutPolicy = p }
}

// NewManager creates the manager in the loading state and starts the
// bootstrap in the background; ctx bounds that bootstrap call only.
func NewManager(ctx context.Context, client api.Client, opts ...Option) *Manager {
	m := &Manager{
		client:       client,
		log:          logging.Discard(),
		logoutPolicy: LogoutConservative,
		ready:        make(chan struct{}),
		observers:    make(map[int]func(State)),
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.With("component", "session")
	m.state.Store(&State{Loading: true})

	go m.bootstrap(ctx)
	return m
}

// State returns the current snapshot.
func (m *Manager) State() State {
	return *m.state.Load()
}

// Ready is closed once the bootstrap has resolved the initial state.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until the bootstrap resolved or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn to be called with the new state after every
// write. Calls may come from several goroutines at once. The returned
// function removes the subscription.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.obsMu.Lock()
	id := m.nextObsID
	m.nextObsID++
	m.observers[id] = fn
	m.obsMu.Unlock()

	return func() {
		m.obsMu.Lock()
		delete(m.observers, id)
		m.obsMu.Unlock()
	}
}

func (m *Manager) bootstrap(ctx context.Context) {
	defer close(m.ready)

	if err := m.Refresh(ctx); err != nil && !errors.Is(err, ErrNotAuthenticated) {
		m.log.Warn(ctx, "session bootstrap failed, continuing logged out", "error", err)
	}
}

// Refresh asks the server who is logged in and replaces the whole state
// with the answer. Any failure leaves the client logged out.
func (m *Manager) Refresh(ctx context.Context) error {
	u, err := m.client.Me(ctx)
	if err == nil && u.Username == "" {
		err = api.ErrMalformedResponse
	}
	if err != nil {
		m.replace(ctx, signedOut(), "refresh")
		if errors.Is(err, api.ErrUnauthorized) {
			return ErrNotAuthenticated
		}
		return userError(err, ErrServer)
	}

	m.replace(ctx, signedIn(u), "refresh")
	return nil
}

// Login authenticates with the server. On failure the current state is
// kept, so a failed attempt never logs out an existing session.
func (m *Manager) Login(ctx context.Context, username string, password []byte) error {
	u, err := m.client.Login(ctx, username, password)
	if err == nil && u.Username == "" {
		err = api.ErrMalformedResponse
	}
	if err != nil {
		m.log.Info(ctx, "login failed", "username", username, "error", err)
		return userError(err, ErrInvalidCredentials)
	}

	m.replace(ctx, signedIn(u), "login")
	m.log.Info(ctx, "logged in", "username", u.Username, "admin", u.IsAdmin)
	return nil
}

// Logout ends the server session and clears the state. What happens to the
// state when the server call fails depends on the LogoutPolicy.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.client.Logout(ctx); err != nil {
		m.log.Info(ctx, "logout failed", "error", err, "policy", m.logoutPolicy)
		if m.logoutPolicy == LogoutOptimistic {
			m.replace(ctx, signedOut(), "logout")
		}
		return userError(err, ErrServer)
	}

	m.replace(ctx, signedOut(), "logout")
	m.log.Info(ctx, "logged out")
	return nil
}

// RefreshProfile re-reads the profile after it was edited elsewhere. Only
// Profile changes; on failure it is cleared while Identity stays. When no
// identity is present at the time of the write, the profile stays empty and
// ErrNotAuthenticated is returned.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	u, err := m.client.Me(ctx)
	if err != nil {
		m.update(ctx, func(s State) State {
			s.Profile = opt.None[Profile]()
			return s
		}, "refresh_profile")
		if errors.Is(err, api.ErrUnauthorized) {
			return ErrNotAuthenticated
		}
		return userError(err, ErrServer)
	}

	var signedOutNow bool
	m.update(ctx, func(s State) State {
		// a profile never outlives its identity
		signedOutNow = s.Identity.IsNone()
		if signedOutNow {
			s.Profile = opt.None[Profile]()
		} else {
			s.Profile = opt.Some(profileOf(u))
		}
		return s
	}, "refresh_profile")
	if signedOutNow {
		return ErrNotAuthenticated
	}
	return nil
}

// replace stores next as the new state.
func (m *Manager) replace(ctx context.Context, next State, op string) {
	m.state.Store(&next)
	m.changed(ctx, next, op)
}

// update applies fn to the state current at the time of the write.
func (m *Manager) update(ctx context.Context, fn func(State) State, op string) {
	for {
		cur := m.state.Load()
		next := fn(*cur)
		if m.state.CompareAndSwap(cur, &next) {
			m.changed(ctx, next, op)
			return
		}
	}
}

func (m *Manager) changed(ctx context.Context, s State, op string) {
	m.log.Debug(ctx, "session state written", "op", op,
		"authenticated", s.Authenticated(), "profile", s.Profile.IsSome(), "loading", s.Loading)

	m.obsMu.Lock()
	fns := make([]func(State), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.obsMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
