// Package postgres implements the repositories over PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"yatube/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      VARCHAR(150) NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS post_groups (
	id          BIGSERIAL PRIMARY KEY,
	title       VARCHAR(200) NOT NULL,
	slug        VARCHAR(50) NOT NULL UNIQUE,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id        BIGSERIAL PRIMARY KEY,
	text      TEXT NOT NULL,
	pub_date  TIMESTAMPTZ NOT NULL,
	author_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	group_id  BIGINT REFERENCES post_groups (id) ON DELETE SET NULL,
	image     VARCHAR(255) NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS posts_feed_idx ON posts (pub_date DESC, id);
CREATE INDEX IF NOT EXISTS posts_author_idx ON posts (author_id, pub_date DESC);
CREATE INDEX IF NOT EXISTS posts_group_idx ON posts (group_id, pub_date DESC);

CREATE TABLE IF NOT EXISTS comments (
	id        BIGSERIAL PRIMARY KEY,
	post_id   BIGINT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
	author_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	text      TEXT NOT NULL,
	created   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS comments_post_idx ON comments (post_id, created);

CREATE TABLE IF NOT EXISTS follows (
	user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	author_id  BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT unique_follower UNIQUE (user_id, author_id)
);
`

// DB owns the connection pool behind the Postgres repositories.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL, verifies the connection and applies the
// schema.
func Open(ctx context.Context, databaseURL string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	db := &DB{pool: pool}
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates any missing tables and indexes.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

// Store returns the Postgres implementation of every repository.
func (d *DB) Store() *repositories.Store {
	return &repositories.Store{
		Users:    &UserRepository{pool: d.pool},
		Groups:   &GroupRepository{pool: d.pool},
		Posts:    &PostRepository{pool: d.pool},
		Comments: &CommentRepository{pool: d.pool},
		Follows:  &FollowRepository{pool: d.pool},
	}
}

// Truncate empties every table and resets the id sequences.
func (d *DB) Truncate(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `TRUNCATE follows, comments, posts, post_groups, users RESTART IDENTITY`)
	return err
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// notFound maps pgx's empty result to the repository sentinel.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}
	return err
}

// requireRow turns a zero-row command into ErrNotFound.
func requireRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
