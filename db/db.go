package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summary/models"
)

// ErrNotFound is returned when no request has the given id.
var ErrNotFound = errors.New("request not found")

const schema = `CREATE TABLE IF NOT EXISTS requests (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	video_id TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

// Store is the request journal. It records what was asked for and how it
// ended, never the transcript or summary text.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	logrus.WithField("path", dbPath).Info("Initializing database")

	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "error creating directory for database")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error creating table")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Start records a new request in the processing state.
func (s *Store) Start(ctx context.Context, req *models.Request) error {
	now := time.Now().UTC()
	req.Status = models.StatusProcessing
	req.CreatedAt = now
	req.UpdatedAt = now

	return s.exec(ctx,
		`INSERT INTO requests (id, source, video_id, language, status, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '', ?, ?)`,
		req.ID, string(req.Source), req.VideoID, req.Language, string(req.Status), req.CreatedAt, req.UpdatedAt,
	)
}

// Finish moves a request to completed, or to failed when cause is non-nil.
func (s *Store) Finish(ctx context.Context, req *models.Request, cause error) error {
	req.Status = models.StatusCompleted
	req.Error = ""
	if cause != nil {
		req.Status = models.StatusFailed
		req.Error = cause.Error()
	}
	req.UpdatedAt = time.Now().UTC()

	return s.exec(ctx,
		`UPDATE requests SET video_id = ?, status = ?, error = ?, updated_at = ? WHERE id = ?`,
		req.VideoID, string(req.Status), req.Error, req.UpdatedAt, req.ID,
	)
}

func (s *Store) Get(ctx context.Context, id string) (*models.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, video_id, language, status, error, created_at, updated_at
		 FROM requests WHERE id = ?`, id)

	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "error querying database")
	}
	return req, nil
}

// Recent returns up to limit requests, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*models.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, video_id, language, status, error, created_at, updated_at
		 FROM requests ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error querying database")
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		out = append(out, req)
	}
	return out, errors.Wrap(rows.Err(), "error iterating rows")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*models.Request, error) {
	var (
		req            models.Request
		source, status string
	)
	err := row.Scan(&req.ID, &source, &req.VideoID, &req.Language, &status, &req.Error, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	req.Source = models.Source(source)
	req.Status = models.Status(status)
	return &req, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error beginning transaction")
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "error preparing statement")
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "error executing statement")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing transaction")
	}
	return nil
}
