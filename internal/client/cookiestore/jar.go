package cookiestore

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storefront/internal/cryptox"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/opt"
)

// Jar is an http.CookieJar whose cookies survive process restarts when it
// is backed by a Repository.
type Jar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar

	db   *sql.DB
	repo Repository
	key  []byte
	log  logging.Logger
	now  func() time.Time
}

// NewMemoryJar returns a Jar that keeps cookies in memory only.
func NewMemoryJar() *Jar {
	inner, _ := cookiejar.New(nil)
	return &Jar{inner: inner, log: logging.Discard(), now: time.Now}
}

// NewPersistentJar returns a Jar backed by db. Cookies saved by a previous
// run are decrypted with key and loaded; expired or undecryptable records
// are dropped from the database.
func NewPersistentJar(ctx context.Context, db *sql.DB, key []byte, log logging.Logger) (*Jar, error) {
	if log == nil {
		log = logging.Discard()
	}
	j := NewMemoryJar()
	j.db = db
	j.repo = NewSQLiteRepository(db)
	j.key = key
	j.log = log.With("component", "cookiestore")

	if err := j.load(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jar) load(ctx context.Context) error {
	records, err := j.repo.List(ctx)
	if err != nil {
		return err
	}

	now := j.now()
	for _, rec := range records {
		if rec.Expired(now) {
			j.dropRecord(ctx, rec, "expired")
			continue
		}

		value, err := cryptox.Decrypt(rec.Value, rec.Nonce, recordAD(rec.Name, rec.Domain, rec.Path), j.key)
		if err != nil {
			j.dropRecord(ctx, rec, "undecryptable")
			continue
		}

		c := &http.Cookie{
			Name:     rec.Name,
			Value:    string(value),
			Path:     rec.Path,
			Secure:   rec.Secure,
			HttpOnly: rec.HTTPOnly,
		}
		if !rec.HostOnly {
			c.Domain = rec.Domain
		}
		if exp, ok := rec.ExpiresAt.Get(); ok {
			c.Expires = exp
		}

		j.inner.SetCookies(recordURL(rec), []*http.Cookie{c})
	}

	j.log.Debug(ctx, "cookies restored", "count", len(records))
	return nil
}

func (j *Jar) dropRecord(ctx context.Context, rec Record, reason string) {
	j.log.Info(ctx, "dropping stored cookie", "name", rec.Name, "domain", rec.Domain, "reason", reason)
	if err := j.repo.Delete(ctx, rec.Name, rec.Domain, rec.Path); err != nil {
		j.log.Warn(ctx, "cookie delete failed", "name", rec.Name, "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

// SetCookies implements http.CookieJar. Persistence failures are logged and
// do not affect the in-memory jar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	j.inner.SetCookies(u, cookies)
	j.mu.RUnlock()

	if j.repo == nil || len(cookies) == 0 {
		return
	}

	ctx := context.Background()
	err := dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, c := range cookies {
			if err := j.persist(ctx, repo, u, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		j.log.Warn(ctx, "cookie persistence failed", "host", u.Host, "error", err)
	}
}

func (j *Jar) persist(ctx context.Context, repo Repository, u *url.URL, c *http.Cookie) error {
	now := j.now()

	domain, hostOnly := strings.TrimPrefix(strings.ToLower(c.Domain), "."), false
	if domain == "" {
		domain, hostOnly = strings.ToLower(u.Hostname()), true
	}
	path := c.Path
	if path == "" || path[0] != '/' {
		path = defaultPath(u.Path)
	}

	var expires opt.Option[time.Time]
	switch {
	case c.MaxAge < 0:
		return repo.Delete(ctx, c.Name, domain, path)
	case c.MaxAge > 0:
		expires = opt.Some(now.Add(time.Duration(c.MaxAge) * time.Second))
	case !c.Expires.IsZero():
		if !c.Expires.After(now) {
			return repo.Delete(ctx, c.Name, domain, path)
		}
		expires = opt.Some(c.Expires)
	}

	sealed, nonce, err := cryptox.Encrypt([]byte(c.Value), recordAD(c.Name, domain, path), j.key)
	if err != nil {
		return fmt.Errorf("seal cookie %s: %w", c.Name, err)
	}

	return repo.Upsert(ctx, Record{
		Name:      c.Name,
		Domain:    domain,
		Path:      path,
		HostOnly:  hostOnly,
		Secure:    c.Secure,
		HTTPOnly:  c.HttpOnly,
		Value:     sealed,
		Nonce:     nonce,
		ExpiresAt: expires,
	})
}

// Clear forgets every cookie, in memory and on disk.
func (j *Jar) Clear(ctx context.Context) error {
	inner, _ := cookiejar.New(nil)

	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()

	if j.repo == nil {
		return nil
	}
	return j.repo.Clear(ctx)
}

func recordAD(name, domain, path string) []byte {
	return []byte(name + "\x00" + domain + "\x00" + path)
}

func recordURL(rec Record) *url.URL {
	scheme := "http"
	if rec.Secure {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: rec.Domain, Path: rec.Path}
}

// defaultPath follows RFC 6265 section 5.1.4.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
