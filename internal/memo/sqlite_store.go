package memo

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	apperrors "github.com/memodesk/memodesk/internal/errors"
)

// Driver names accepted by NewSQLiteStore.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

const memoColumns = "id, title, content, created_at, updated_at"

// SQLiteStore implements memo storage using SQLite
type SQLiteStore struct {
	db     *sql.DB
	path   string
	driver string
	now    Clock
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(driver, path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithClock(driver, path, time.Now)
}

// NewSQLiteStoreWithClock is NewSQLiteStore with an injected clock.
func NewSQLiteStoreWithClock(driver, path string, now Clock) (*SQLiteStore, error) {
	if driver != DriverCGO && driver != DriverPureGo {
		return nil, apperrors.Newf(apperrors.CodeInitialization, "unsupported sqlite driver: %s", driver)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInitialization, "failed to create directory", err).
			WithSuggestion("Check that the data directory is writable or pass --data-dir")
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInitialization, "failed to open database", err)
	}
	// One connection at a time: SQLite allows a single writer per file.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: path, driver: driver, now: now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.CodeInitialization, "failed to apply schema", err)
	}

	return store, nil
}

// migrate creates the memos table
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a memo stamped with a single timestamp for both fields
func (s *SQLiteStore) Create(title, content string) (*Memo, error) {
	now := FormatTime(s.now())

	res, err := s.db.Exec(`
		INSERT INTO memos (title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, title, content, now, now)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to create memo", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to read memo id", err)
	}

	return &Memo{
		ID:        &id,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// List returns all memos, most recently updated first
func (s *SQLiteStore) List() ([]*Memo, error) {
	return s.query("failed to list memos",
		"SELECT "+memoColumns+" FROM memos ORDER BY updated_at DESC")
}

// Get retrieves a memo by id
func (s *SQLiteStore) Get(id int64) (*Memo, error) {
	row := s.db.QueryRow("SELECT "+memoColumns+" FROM memos WHERE id = ?", id)

	m, err := scanMemo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to get memo", err)
	}
	return m, nil
}

// Update overwrites title and content, then re-reads the stored row
func (s *SQLiteStore) Update(id int64, title, content string) (*Memo, error) {
	now := FormatTime(s.now())

	// max() keeps updated_at >= created_at if the wall clock steps backwards.
	res, err := s.db.Exec(`
		UPDATE memos SET title = ?, content = ?, updated_at = max(created_at, ?)
		WHERE id = ?
	`, title, content, now, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to update memo", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to update memo", err)
	}
	if n == 0 {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "memo %d not found", id)
	}

	m, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		// Deleted between the write and the re-read.
		return nil, apperrors.Newf(apperrors.CodeNotFound, "memo %d not found after update", id)
	}
	return m, nil
}

// Delete removes a memo
func (s *SQLiteStore) Delete(id int64) (bool, error) {
	res, err := s.db.Exec("DELETE FROM memos WHERE id = ?", id)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeStorage, "failed to delete memo", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeStorage, "failed to delete memo", err)
	}
	return n > 0, nil
}

// Search matches query against title or content with LIKE. The query is
// wrapped in % but not escaped, so % and _ inside it act as wildcards.
func (s *SQLiteStore) Search(query string) ([]*Memo, error) {
	pattern := "%" + query + "%"
	return s.query("failed to search memos", `
		SELECT `+memoColumns+` FROM memos
		WHERE title LIKE ? OR content LIKE ?
		ORDER BY updated_at DESC
	`, pattern, pattern)
}

// Stats returns the memo count and the database file size
func (s *SQLiteStore) Stats() (*Stats, error) {
	var total int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM memos").Scan(&total); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to count memos", err)
	}

	size, err := fileSize(s.path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to stat database file", err)
	}

	return &Stats{
		TotalMemos:   total,
		DatabasePath: s.path,
		DatabaseSize: size,
	}, nil
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.path
}

// Driver returns the database/sql driver name in use
func (s *SQLiteStore) Driver() string {
	return s.driver
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(failMsg, q string, args ...interface{}) ([]*Memo, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, failMsg, err)
	}
	defer rows.Close()

	memos := make([]*Memo, 0)
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to parse memo", err)
		}
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, failMsg, err)
	}

	return memos, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemo(row scanner) (*Memo, error) {
	var (
		id int64
		m  Memo
	)
	if err := row.Scan(&id, &m.Title, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.ID = &id
	return &m, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}
