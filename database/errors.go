package database

import "errors"

var (
	// ErrNotFound is returned by every backend when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when inserting a document whose id already exists.
	ErrDuplicate = errors.New("document already exists")
	// ErrTransactionConflict is returned once a transaction exhausted its retry budget
	// because concurrent commits kept invalidating its reads.
	ErrTransactionConflict = errors.New("transaction conflict")
)
