package store

import "errors"

// Error taxonomy shared by every driver. Drivers wrap these sentinels with
// backend detail; callers classify with errors.Is and never retry.
var (
	// ErrConnection means the session could not be established: credentials
	// failed to decode or parse, or the remote store is unreachable or
	// rejected authorization.
	ErrConnection = errors.New("store: connection failed")

	// ErrTableNotFound means the named table/sheet does not exist.
	ErrTableNotFound = errors.New("store: table not found")

	// ErrRead means a row read failed.
	ErrRead = errors.New("store: read failed")

	// ErrWrite means an append or update failed.
	ErrWrite = errors.New("store: write failed")
)
