package cookiestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/opt"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, domain, path, host_only, secure, http_only, value, nonce, expires_at
		FROM cookies
		ORDER BY domain, path, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var (
			rec     Record
			expires sql.NullInt64
		)
		if err := rows.Scan(&rec.Name, &rec.Domain, &rec.Path, &rec.HostOnly, &rec.Secure,
			&rec.HTTPOnly, &rec.Value, &rec.Nonce, &expires); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		if expires.Valid {
			rec.ExpiresAt = opt.Some(time.Unix(expires.Int64, 0))
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, rec Record) error {
	var expires sql.NullInt64
	if exp, ok := rec.ExpiresAt.Get(); ok {
		expires = sql.NullInt64{Int64: exp.Unix(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (name, domain, path, host_only, secure, http_only, value, nonce, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, domain, path) DO UPDATE SET
			host_only  = excluded.host_only,
			secure     = excluded.secure,
			http_only  = excluded.http_only,
			value      = excluded.value,
			nonce      = excluded.nonce,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, rec.Name, rec.Domain, rec.Path, rec.HostOnly, rec.Secure, rec.HTTPOnly,
		rec.Value, rec.Nonce, expires, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save cookie[%s]: %w", rec.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, name, domain, path string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ? AND domain = ? AND path = ?`,
		name, domain, path)
	if err != nil {
		return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies`)
	if err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}
