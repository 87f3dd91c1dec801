// internal/store/queries.go
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"commit-evidence/internal/model"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Querier is the set of queries the evidence store supports.
type Querier interface {
	UpsertCommits(ctx context.Context, arg []UpsertCommitParams) (int64, error)
	GetRepositorySummary(ctx context.Context, arg GetRepositorySummaryParams) (RepositorySummary, error)
	GetCommitsByRepository(ctx context.Context, arg GetCommitsByRepositoryParams) ([]EvidenceCommit, error)
	GetTopNCommitters(ctx context.Context, arg GetTopNCommittersParams) ([]GetTopNCommittersRow, error)
}

var _ Querier = (*Queries)(nil)

// Queries runs the store's SQL against a connection, pool or transaction.
type Queries struct {
	db DBTX
}

// New wraps db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// EvidenceCommit is one stored commit.
type EvidenceCommit struct {
	ID               int64     `json:"-"`
	Source           string    `json:"source"`
	Owner            string    `json:"owner"`
	Repository       string    `json:"repository"`
	Author           string    `json:"author"`
	Revision         string    `json:"revision"`
	CommittedAt      time.Time `json:"committed_at"`
	CommitterName    string    `json:"committer_name"`
	CommitMessage    string    `json:"commit_message"`
	ChangedFileCount int32     `json:"changed_file_count"`
	AdditionCount    int32     `json:"addition_count"`
	DeletionCount    int32     `json:"deletion_count"`
	ShortExplanation string    `json:"short_explanation"`
	LongExplanation  string    `json:"long_explanation"`
	LinkURL          string    `json:"link_url"`
	CollectedAt      time.Time `json:"collected_at"`
}

// ToModel converts a stored row back into a Commit.
func (e EvidenceCommit) ToModel() model.Commit {
	return model.Commit{
		ID:               e.Revision,
		Date:             e.CommittedAt.UTC().Format(model.DisplayDateLayout),
		CommittedAt:      e.CommittedAt.UTC(),
		CommitterName:    e.CommitterName,
		CommitMessage:    e.CommitMessage,
		ChangedFileCount: int(e.ChangedFileCount),
		AdditionCount:    int(e.AdditionCount),
		DeletionCount:    int(e.DeletionCount),
		ShortExplanation: e.ShortExplanation,
		LongExplanation:  e.LongExplanation,
		LinkURL:          e.LinkURL,
	}
}

const upsertCommit = `
INSERT INTO evidence_commits (
    source, owner, repository, author, revision, committed_at, committer_name, commit_message,
    changed_file_count, addition_count, deletion_count, short_explanation, long_explanation, link_url
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (source, owner, repository, revision) DO UPDATE SET
    author             = EXCLUDED.author,
    committed_at       = EXCLUDED.committed_at,
    committer_name     = EXCLUDED.committer_name,
    commit_message     = EXCLUDED.commit_message,
    changed_file_count = EXCLUDED.changed_file_count,
    addition_count     = EXCLUDED.addition_count,
    deletion_count     = EXCLUDED.deletion_count,
    short_explanation  = EXCLUDED.short_explanation,
    long_explanation   = EXCLUDED.long_explanation,
    link_url           = EXCLUDED.link_url,
    collected_at       = now()`

type UpsertCommitParams struct {
	Source           string
	Owner            string
	Repository       string
	Author           string
	Revision         string
	CommittedAt      time.Time
	CommitterName    string
	CommitMessage    string
	ChangedFileCount int32
	AdditionCount    int32
	DeletionCount    int32
	ShortExplanation string
	LongExplanation  string
	LinkURL          string
}

// UpsertCommits inserts or refreshes commits in one batch and returns the
// number of affected rows.
func (q *Queries) UpsertCommits(ctx context.Context, arg []UpsertCommitParams) (int64, error) {
	if len(arg) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, p := range arg {
		batch.Queue(upsertCommit,
			p.Source, p.Owner, p.Repository, p.Author, p.Revision, p.CommittedAt, p.CommitterName, p.CommitMessage,
			p.ChangedFileCount, p.AdditionCount, p.DeletionCount, p.ShortExplanation, p.LongExplanation, p.LinkURL)
	}

	results := q.db.SendBatch(ctx, batch)
	defer results.Close()

	var affected int64
	for range arg {
		tag, err := results.Exec()
		if err != nil {
			return affected, err
		}
		affected += tag.RowsAffected()
	}
	return affected, results.Close()
}

const getRepositorySummary = `
SELECT owner, repository, COUNT(*), MAX(collected_at)
FROM evidence_commits
WHERE owner = $1 AND repository = $2
GROUP BY owner, repository`

type GetRepositorySummaryParams struct {
	Owner      string
	Repository string
}

type RepositorySummary struct {
	Owner           string    `json:"owner"`
	Repository      string    `json:"repository"`
	CommitCount     int64     `json:"commit_count"`
	LastCollectedAt time.Time `json:"last_collected_at"`
}

// GetRepositorySummary returns pgx.ErrNoRows when nothing was stored for the repository.
func (q *Queries) GetRepositorySummary(ctx context.Context, arg GetRepositorySummaryParams) (RepositorySummary, error) {
	var s RepositorySummary
	err := q.db.QueryRow(ctx, getRepositorySummary, arg.Owner, arg.Repository).
		Scan(&s.Owner, &s.Repository, &s.CommitCount, &s.LastCollectedAt)
	return s, err
}

const getCommitsByRepository = `
SELECT id, source, owner, repository, author, revision, committed_at, committer_name, commit_message,
       changed_file_count, addition_count, deletion_count, short_explanation, long_explanation, link_url, collected_at
FROM evidence_commits
WHERE owner = $1 AND repository = $2 AND ($3::text = '' OR author = $3::text)
ORDER BY committed_at DESC, id DESC`

type GetCommitsByRepositoryParams struct {
	Owner      string
	Repository string
	// Author is optional; empty matches every author.
	Author string
}

func (q *Queries) GetCommitsByRepository(ctx context.Context, arg GetCommitsByRepositoryParams) ([]EvidenceCommit, error) {
	rows, err := q.db.Query(ctx, getCommitsByRepository, arg.Owner, arg.Repository, arg.Author)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []EvidenceCommit
	for rows.Next() {
		var i EvidenceCommit
		if err := rows.Scan(
			&i.ID, &i.Source, &i.Owner, &i.Repository, &i.Author, &i.Revision, &i.CommittedAt, &i.CommitterName,
			&i.CommitMessage, &i.ChangedFileCount, &i.AdditionCount, &i.DeletionCount, &i.ShortExplanation,
			&i.LongExplanation, &i.LinkURL, &i.CollectedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getTopNCommitters = `
SELECT committer_name, COUNT(*) AS commit_count
FROM evidence_commits
WHERE owner = $1 AND repository = $2
GROUP BY committer_name
ORDER BY commit_count DESC, committer_name
LIMIT $3`

type GetTopNCommittersParams struct {
	Owner      string
	Repository string
	Limit      int32
}

type GetTopNCommittersRow struct {
	CommitterName string `json:"committer_name"`
	CommitCount   int64  `json:"commit_count"`
}

func (q *Queries) GetTopNCommitters(ctx context.Context, arg GetTopNCommittersParams) ([]GetTopNCommittersRow, error) {
	rows, err := q.db.Query(ctx, getTopNCommitters, arg.Owner, arg.Repository, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GetTopNCommittersRow
	for rows.Next() {
		var i GetTopNCommittersRow
		if err := rows.Scan(&i.CommitterName, &i.CommitCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
