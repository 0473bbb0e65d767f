package koreader

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

// createFixture builds a throwaway SQLite database with the given
// statements and returns the file's raw bytes, as a caller upload would
// deliver them.
func createFixture(t *testing.T, stmts []string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			t.Fatalf("exec fixture stmt %q: %v", stmt, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close fixture db: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture db: %v", err)
	}
	return data
}

const createBookmarkTable = `CREATE TABLE bookmark (
	content_id TEXT,
	progress REAL,
	page INTEGER,
	notes TEXT,
	datetime TEXT
);`

const createBookTable = `CREATE TABLE book (
	id INTEGER PRIMARY KEY,
	title TEXT,
	pages INTEGER,
	total_read_time INTEGER,
	last_open INTEGER,
	notes TEXT
);`

const createPageStatDataTable = `CREATE TABLE page_stat_data (
	id_book INTEGER,
	page INTEGER,
	start_time INTEGER,
	duration INTEGER,
	total_pages INTEGER
);`
