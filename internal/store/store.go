// internal/store/store.go

// Package store persists collected commits in Postgres so evidence from
// earlier runs can be queried and exported again.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"commit-evidence/internal/model"
	"commit-evidence/internal/report"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending schema migration to the database at dbURL.
func Migrate(dbURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Store is the Postgres-backed evidence store. It also acts as a report sink.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open migrates the schema and connects a pool to dbURL.
func Open(ctx context.Context, dbURL string, logger *slog.Logger) (*Store, error) {
	if err := Migrate(dbURL); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Debug("Database migrations applied")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established")

	return &Store{pool: pool, logger: logger}, nil
}

// Querier returns queries bound to the pool.
func (s *Store) Querier() Querier {
	return New(s.pool)
}

func (s *Store) Close() {
	s.pool.Close()
}

// Write upserts the commits of one target in a single transaction.
func (s *Store) Write(ctx context.Context, t report.Target, commits []model.Commit) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // no-op after commit

	if err := writeCommits(ctx, New(tx), s.logger, t, commits); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func writeCommits(ctx context.Context, q Querier, logger *slog.Logger, t report.Target, commits []model.Commit) error {
	logger = logger.With("target", t.String(), "author", t.Author)
	if len(commits) == 0 {
		logger.Info("No commits to store")
		return nil
	}

	n, err := q.UpsertCommits(ctx, prepareCommitUpsert(t, commits))
	if err != nil {
		return fmt.Errorf("failed to store commits for %s: %w", t, err)
	}
	logger.Info("Stored commits", "count", n)
	return nil
}

func prepareCommitUpsert(t report.Target, commits []model.Commit) []UpsertCommitParams {
	owner, name := t.Key()
	params := make([]UpsertCommitParams, len(commits))
	for i, c := range commits {
		params[i] = UpsertCommitParams{
			Source:           string(t.Source),
			Owner:            owner,
			Repository:       name,
			Author:           t.Author,
			Revision:         c.ID,
			CommittedAt:      c.CommittedAt,
			CommitterName:    c.CommitterName,
			CommitMessage:    c.CommitMessage,
			ChangedFileCount: int32(c.ChangedFileCount),
			AdditionCount:    int32(c.AdditionCount),
			DeletionCount:    int32(c.DeletionCount),
			ShortExplanation: c.ShortExplanation,
			LongExplanation:  c.LongExplanation,
			LinkURL:          c.LinkURL,
		}
	}
	return params
}
