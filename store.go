package autoblog

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// Store wraps a SQLite database holding the blogs table.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the panel read while a run writes; busy_timeout makes the
	// writer wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS blogs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    topic TEXT NOT NULL,
    filename TEXT NOT NULL,
    created_date TEXT NOT NULL,
    downloaded INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS blogs_filename ON blogs(filename);
`)
	return err
}

// InsertPost adds a new row and returns its id. Rows are never updated in
// place, so re-publishing a topic yields another row.
func (s *Store) InsertPost(p BlogPost) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO blogs (title, topic, filename, created_date, downloaded) VALUES (?, ?, ?, ?, ?)`,
		p.Title, p.Topic, p.Filename, p.CreatedDate, boolToInt(p.Downloaded))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListPosts returns posts matching filter, newest first.
func (s *Store) ListPosts(filter DownloadFilter) ([]BlogPost, error) {
	query := `SELECT id, title, topic, filename, created_date, downloaded FROM blogs`
	switch filter {
	case OnlyAvailable:
		query += ` WHERE downloaded = 0`
	case OnlyDownloaded:
		query += ` WHERE downloaded = 1`
	}
	query += ` ORDER BY created_date DESC, id DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost returns a single post by id.
func (s *Store) GetPost(id int64) (BlogPost, error) {
	row := s.db.QueryRow(`SELECT id, title, topic, filename, created_date, downloaded FROM blogs WHERE id = ?`, id)
	return scanPost(row)
}

// GetPosts returns the posts for ids in the order given, skipping unknown ids.
func (s *Store) GetPosts(ids []int64) ([]BlogPost, error) {
	var posts []BlogPost
	for _, id := range ids {
		p, err := s.GetPost(id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// MarkDownloaded sets the downloaded flag on ids in a single transaction.
// Already-downloaded and unknown ids are left alone.
func (s *Store) MarkDownloaded(ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`UPDATE blogs SET downloaded = 1 WHERE id = ? AND downloaded = 0`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LatestTopicForFilename returns the topic of the newest row written to
// filename, or "" when no row uses it.
func (s *Store) LatestTopicForFilename(filename string) (string, error) {
	var topic string
	err := s.db.QueryRow(`SELECT topic FROM blogs WHERE filename = ? ORDER BY id DESC LIMIT 1`, filename).Scan(&topic)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return topic, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (BlogPost, error) {
	var p BlogPost
	var downloaded int
	if err := r.Scan(&p.ID, &p.Title, &p.Topic, &p.Filename, &p.CreatedDate, &downloaded); err != nil {
		return BlogPost{}, err
	}
	p.Downloaded = downloaded == 1
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
