// Package pg implements UserRepository on PostgreSQL with pgx.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soundfolio/accounts/internal/store/core"
	migrations "github.com/soundfolio/accounts/migrations/postgres"
)

type Repo struct {
	pool *pgxpool.Pool
}

// New connects to the database and applies pending schema migrations.
func New(ctx context.Context, dsn string) (*Repo, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	if err := migrate(ctx, pool, migrations.AccountsFS, migrations.AccountsDir); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) Close() {
	r.pool.Close()
}

const selectUser = `
	SELECT a.id, a.created_at, a.updated_at,
	       s.provider_id, s.access_token, s.access_secret,
	       sc.session_key, sc.display_name
	FROM account a
	LEFT JOIN social_account s ON s.user_id = a.id
	LEFT JOIN scrobble_account sc ON sc.user_id = a.id
`

func scanUser(row pgx.Row) (*core.User, error) {
	var (
		u                                     core.User
		providerID, accessToken, accessSecret *string
		sessionKey, displayName               *string
	)
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt,
		&providerID, &accessToken, &accessSecret,
		&sessionKey, &displayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if providerID != nil {
		u.Social = &core.SocialAccount{
			ProviderID:   *providerID,
			AccessToken:  deref(accessToken),
			AccessSecret: deref(accessSecret),
		}
	}
	if sessionKey != nil {
		u.Scrobble = &core.ScrobbleAccount{
			SessionKey:  *sessionKey,
			DisplayName: deref(displayName),
		}
	}
	return &u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *Repo) FindByID(ctx context.Context, id string) (*core.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE a.id = $1`, id))
}

func (r *Repo) FindBySocialID(ctx context.Context, providerID string) (*core.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE s.provider_id = $1`, providerID))
}

func (r *Repo) Create(ctx context.Context, u *core.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO account (id) VALUES ($1)`, u.ID,
	); err != nil {
		return fmt.Errorf("pg: insert account: %w", err)
	}
	if err := upsertLinks(ctx, tx, u); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) Save(ctx context.Context, u *core.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE account SET updated_at = NOW() WHERE id = $1`, u.ID,
	)
	if err != nil {
		return fmt.Errorf("pg: touch account: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	if err := upsertLinks(ctx, tx, u); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func upsertLinks(ctx context.Context, tx pgx.Tx, u *core.User) error {
	if u.Social != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO social_account (user_id, provider_id, access_token, access_secret)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO UPDATE SET
				provider_id = EXCLUDED.provider_id,
				access_token = EXCLUDED.access_token,
				access_secret = EXCLUDED.access_secret`,
			u.ID, u.Social.ProviderID, u.Social.AccessToken, u.Social.AccessSecret,
		); err != nil {
			return fmt.Errorf("pg: upsert social account: %w", err)
		}
	}
	if u.Scrobble != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO scrobble_account (user_id, session_key, display_name)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET
				session_key = EXCLUDED.session_key,
				display_name = EXCLUDED.display_name`,
			u.ID, u.Scrobble.SessionKey, u.Scrobble.DisplayName,
		); err != nil {
			return fmt.Errorf("pg: upsert scrobble account: %w", err)
		}
	}
	return nil
}
