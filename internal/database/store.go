package database

import (
	"context"
	"fmt"
	"time"

	"go-jobsbot-automation/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobsbot_lists (
	id         BIGSERIAL PRIMARY KEY,
	collection TEXT NOT NULL,
	url        TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS jobsbot_lists_collection_idx ON jobsbot_lists (collection, id);`

// Store keeps the three lists in one Postgres table. It implements
// store.Store.
type Store struct {
	db *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Connect opens a pool, checks connectivity and creates the table.
func Connect(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// poolers in transaction mode do not support prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: pool}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

func (s *Store) Load(ctx context.Context, c store.Collection) ([]string, error) {
	rows, err := s.db.Query(ctx, "SELECT url FROM jobsbot_lists WHERE collection = $1 ORDER BY id", string(c))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c, err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c, err)
	}

	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = store.Normalize(u); u != "" {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) Append(ctx context.Context, c store.Collection, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, u := range urls {
		batch.Queue("INSERT INTO jobsbot_lists (collection, url) VALUES ($1, $2)", string(c), u)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to append to %s: %w", c, err)
	}
	return nil
}

func (s *Store) Overwrite(ctx context.Context, c store.Collection, urls []string) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM jobsbot_lists WHERE collection = $1", string(c)); err != nil {
			return err
		}
		rows := make([][]any, len(urls))
		for i, u := range urls {
			rows[i] = []any{string(c), u}
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"jobsbot_lists"}, []string{"collection", "url"}, pgx.CopyFromRows(rows))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to overwrite %s: %w", c, err)
	}
	return nil
}
