package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Postgres struct {
	pool DBPool
}

func NewPostgres(pool DBPool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) GetItem(ctx context.Context, sessionID, key string) (string, error) {
	var value string
	row := p.pool.QueryRow(ctx, `SELECT value FROM local_storage WHERE session_id=$1 AND item_key=$2`, sessionID, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get item %q: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) SetItem(ctx context.Context, sessionID, key, value string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO local_storage(session_id, item_key, value)
		VALUES($1, $2, $3)
		ON CONFLICT (session_id, item_key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
	`, sessionID, key, value)
	if err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) RemoveItem(ctx context.Context, sessionID, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM local_storage WHERE session_id=$1 AND item_key=$2`, sessionID, key)
	if err != nil {
		return fmt.Errorf("remove item %q: %w", key, err)
	}
	return nil
}

// PurgeIdle deletes every item not written for longer than idle and returns how many
// rows were removed. It mirrors the idle expiry of the memory backend.
func (p *Postgres) PurgeIdle(ctx context.Context, idle time.Duration) (int64, error) {
	tag, err := p.pool.Exec(ctx, `
		DELETE FROM local_storage
		WHERE updated_at < now() - make_interval(secs => $1)
	`, idle.Seconds())
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
