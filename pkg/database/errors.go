package database

import "errors"

var (
	// ErrNotReady indicates the database cannot be reached.
	ErrNotReady = errors.New("database not ready")
	// ErrInvalidConfig marks a database section that failed validation.
	ErrInvalidConfig = errors.New("invalid database config")
)
