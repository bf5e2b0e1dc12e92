package cookiestore

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storefront/internal/opt"
)

// Record is a persisted cookie. Value holds the sealed cookie value and Nonce
// the nonce it was sealed with.
type Record struct {
	Name      string
	Domain    string
	Path      string
	HostOnly  bool
	Secure    bool
	HTTPOnly  bool
	Value     []byte
	Nonce     []byte
	ExpiresAt opt.Option[time.Time]
}

// Expired reports whether the record is past its expiry at now. Records
// without an expiry never expire.
func (r Record) Expired(now time.Time) bool {
	exp, ok := r.ExpiresAt.Get()
	return ok && !now.Before(exp)
}

// Repository stores cookie records keyed by (name, domain, path).
type Repository interface {
	List(ctx context.Context) ([]Record, error)
	Upsert(ctx context.Context, r Record) error
	Delete(ctx context.Context, name, domain, path string) error
	Clear(ctx context.Context) error
}
