package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
`

// SQLiteStore keeps sessions in a local SQLite file, one row per id. The CLI
// uses the profile name as the id.
type SQLiteStore struct {
	db     *sql.DB
	sealer *Sealer
	now    func() time.Time
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(path string, sealer *Sealer) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session db: %w", err)
	}
	return &SQLiteStore{db: db, sealer: sealer, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, sess domain.Session, ttl time.Duration) error {
	payload, err := encode(s.sealer, sess)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	expires := s.now().Add(ttl).Unix()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, payload, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		sess.ID, payload, expires)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	var (
		payload []byte
		expires int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT payload, expires_at FROM sessions WHERE id = ?`, id).Scan(&payload, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.now().Unix() >= expires {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return decode(s.sealer, payload)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
