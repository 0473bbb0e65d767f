package koreader

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver.
)

// sqliteMagic is the 16-byte header every SQLite 3 file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

func looksLikeSQLite(data []byte) bool {
	return len(data) >= len(sqliteMagic) && bytes.Equal(data[:len(sqliteMagic)], sqliteMagic)
}

// spillBuffer writes the uploaded buffer to a temp file so the driver can
// open it. The returned cleanup removes the file and must always run.
func spillBuffer(data []byte) (string, func(), error) {
	tmpFile, err := os.CreateTemp("", "kostats-*.sqlite")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp database: %w", err)
	}
	path := tmpFile.Name()
	cleanup := func() {
		_ = os.Remove(path)
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp database: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp database: %w", err)
	}
	return path, cleanup, nil
}

// openDatabase opens a database file read-only. The file is never written.
func openDatabase(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on ping failure.
			_ = cerr
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return db, nil
}
