package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/storefront/internal/client/api"
	"github.com/stretchr/testify/require"
)

// fakeAPI lets each test script the replies of the three endpoints.
type fakeAPI struct {
	me     func(ctx context.Context, call int) (*api.User, error)
	login  func(ctx context.Context, username string, password []byte) (*api.User, error)
	logout func(ctx context.Context) error

	meCalls atomic.Int32
}

func (f *fakeAPI) Me(ctx context.Context) (*api.User, error) {
	n := int(f.meCalls.Add(1))
	if f.me == nil {
		return nil, api.ErrUnauthorized
	}
	return f.me(ctx, n)
}

func (f *fakeAPI) Login(ctx context.Context, username string, password []byte) (*api.User, error) {
	if f.login == nil {
		return nil, api.ErrUnauthorized
	}
	return f.login(ctx, username, password)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx)
}

var aliceUser = &api.User{ID: 7, Username: "alice", IsAdmin: false, DisplayName: "Alice A"}

func meReturns(u *api.User, err error) func(context.Context, int) (*api.User, error) {
	return func(context.Context, int) (*api.User, error) { return u, err }
}

// gate blocks a fake call until released, so tests can choose the order in
// which concurrent operations complete.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	close(g.entered)
	<-g.release
}

func newReadyManager(t *testing.T, c api.Client, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(context.Background(), c, opts...)
	waitReady(t, m)
	return m
}

func waitReady(t *testing.T, m *Manager) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.WaitReady(ctx), "bootstrap did not resolve")
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}
