package repository

import "errors"

var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned by writes that target a missing row. Reads
	// return a nil record instead.
	ErrNotFound = errors.New("record not found")
)
