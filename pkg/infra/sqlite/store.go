package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS checks (
    repo TEXT PRIMARY KEY,
    last_release_id INTEGER NOT NULL
)`

type store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite watermark store at the given path
func New(dbPath string) (interfaces.WatermarkStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", dbPath))
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize schema", goerr.V("path", dbPath))
	}

	return &store{db: db}, nil
}

// Get returns the last observed release ID for a repository. The second
// return value is false when no row exists.
func (s *store) Get(ctx context.Context, repo string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT last_release_id FROM checks WHERE repo = ?", repo,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, goerr.Wrap(err, "failed to read watermark", goerr.V("repo", repo))
	}
	return id, true, nil
}

// Set upserts the watermark. The single-row statement is atomic, so a
// failed write leaves the prior value intact.
func (s *store) Set(ctx context.Context, repo string, releaseID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checks (repo, last_release_id) VALUES (?, ?)
		 ON CONFLICT(repo) DO UPDATE SET last_release_id = excluded.last_release_id`,
		repo, releaseID,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to write watermark",
			goerr.V("repo", repo),
			goerr.V("release_id", releaseID),
		)
	}
	return nil
}

func (s *store) Close() error {
	return s.db.Close()
}
