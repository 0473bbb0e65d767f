package koreader

import "errors"

// ErrInvalidInput reports a buffer that cannot be read as a SQLite database.
var ErrInvalidInput = errors.New("invalid database input")

// ErrSchemaMismatch reports a database without any recognized KoReader tables.
var ErrSchemaMismatch = errors.New("unrecognized database schema")
