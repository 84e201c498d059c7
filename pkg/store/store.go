// Package store defines the contract the CRM layers use to talk to the
// backing tabular store. The store is a schema-less grid of cells: no query
// language, no unique-key constraint, no transactions. Drivers emulate
// lookups and filtered queries by returning whole row sets and letting the
// caller scan them.
package store

import "context"

// Store opens named tables in a backing tabular store. Implementations hold
// whatever session state the backend needs (an authorized API client, a
// connection pool); the session is constructed once by the composition root
// and injected into the service layer.
type Store interface {
	// Table returns a handle to the named table. Returns ErrTableNotFound
	// (wrapped) if no table with that name exists.
	Table(ctx context.Context, name string) (Table, error)
	// Close releases the underlying session. Safe to call once at shutdown.
	Close() error
}

// Table is a handle to one sheet-like grid. Row index 0 is the first data
// row; the header row is a driver concern and never surfaces here.
//
// Writes are not protected against concurrent callers: two simultaneous
// appends can interleave, and there is no compare-and-swap to build an atomic
// get-or-create on. Callers that scan-then-append accept that race.
type Table interface {
	Name() string
	// Rows returns every data row. Short rows are returned as-is; padding to
	// a schema width is the caller's job. Returns ErrRead (wrapped) on failure.
	Rows(ctx context.Context) ([][]string, error)
	// Append adds a new row after the last one. Returns ErrWrite (wrapped)
	// on failure. Not retried.
	Append(ctx context.Context, row []string) error
	// Update replaces the row at the given data-row index. Returns ErrWrite
	// (wrapped) on failure, including an out-of-range index.
	Update(ctx context.Context, index int, row []string) error
}
