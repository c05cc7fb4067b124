/*
store.go - Persistence interface for the ledger document

PURPOSE:
  Defines the boundary between the service and the database. The whole
  state is one Document, saved after every successful mutation and loaded
  once at start-up.

ATOMICITY:
  Save must be all-or-nothing: either the whole document is written or the
  previously saved one remains. The service relies on this to keep memory
  and storage in step when a write fails.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite with versioned migrations
  - store/memory: In-memory for tests and --ephemeral runs

SEE ALSO:
  - service.go: The only caller
*/
package leave

import "context"

// Store persists the ledger document.
type Store interface {
	// Load returns the saved document. found is false when nothing was
	// saved yet.
	Load(ctx context.Context) (doc Document, found bool, err error)

	// Save atomically replaces the saved document.
	Save(ctx context.Context, doc Document) error
}
