package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/storefront/internal/client/api"
	"github.com/dmitrijs2005/storefront/internal/client/config"
	"github.com/dmitrijs2005/storefront/internal/client/cookiestore"
	"github.com/dmitrijs2005/storefront/internal/client/session"
	"github.com/dmitrijs2005/storefront/internal/cryptox"
	"github.com/dmitrijs2005/storefront/internal/filex"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

const (
	databaseFile = "session.db"
	keyFile      = "cookie.key"
)

// sessionService is the part of session.Manager the commands use.
type sessionService interface {
	State() session.State
	WaitReady(ctx context.Context) error
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	RefreshProfile(ctx context.Context) error
}

// cookieJar is a cookie jar that can drop everything it holds.
type cookieJar interface {
	http.CookieJar
	Clear(ctx context.Context) error
}

type App struct {
	config  *config.Config
	log     logging.Logger
	session sessionService
	jar     cookieJar
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp builds the client from c. Diagnostics go to stderr so they do not
// interleave with the REPL on stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	policy, err := session.ParseLogoutPolicy(c.LogoutPolicy)
	if err != nil {
		return nil, err
	}

	a := &App{config: c, log: logger, reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	if c.PersistSession {
		if err := a.openPersistentJar(ctx); err != nil {
			return nil, err
		}
	} else {
		a.jar = cookiestore.NewMemoryJar()
	}

	apiClient, err := api.NewHTTPClient(c.ServerURL,
		api.WithJar(a.jar),
		api.WithTimeout(c.RequestTimeout),
		api.WithPaths(c.MePath, c.LoginPath, c.LogoutPath),
		api.WithLogger(logger),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.session = session.NewManager(ctx, apiClient,
		session.WithLogger(logger),
		session.WithLogoutPolicy(policy),
	)
	return a, nil
}

func (a *App) openPersistentJar(ctx context.Context) error {
	dir, err := filex.EnsureDir(a.config.StateDir)
	if err != nil {
		return fmt.Errorf("state dir: %w", err)
	}

	key, err := cryptox.LoadOrCreateKey(filepath.Join(dir, keyFile))
	if err != nil {
		return fmt.Errorf("cookie key: %w", err)
	}

	db, err := cookiestore.OpenDatabase(ctx, filepath.Join(dir, databaseFile))
	if err != nil {
		a.log.Error(ctx, "error initializing database", "error", err)
		return err
	}

	jar, err := cookiestore.NewPersistentJar(ctx, db, key, a.log)
	if err != nil {
		_ = db.Close()
		return err
	}

	a.db, a.jar = db, jar
	return nil
}

// Run waits for the session bootstrap and then serves the REPL on stdin
// until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "Storefront CLI (type 'help' for commands)")
	if err := a.session.WaitReady(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

// Close releases the session database, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *App) getStatus() string {
	s := a.session.State()
	switch {
	case s.Loading:
		return "(loading)"
	case !s.Authenticated():
		return ""
	case s.IsAdmin():
		return fmt.Sprintf("(%s admin)", s.DisplayName())
	default:
		return fmt.Sprintf("(%s)", s.DisplayName())
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Authenticated()
}
