package sink

import "context"

// Store is the index store write surface the sinks need. The production
// implementation is elastic_client.Indexer; tests use a memory store.
type Store interface {
	// Upsert queues a replace-if-exists write. done is called exactly once
	// with the outcome, possibly from another goroutine.
	Upsert(index string, documentID string, document []byte, done func(error))

	// Flush blocks until every queued Upsert has been written out. A clear
	// must flush first - a buffered pre-clear write that lands after the
	// delete would survive as a stale document.
	Flush(ctx context.Context) error

	// DeleteByMode removes every document of a mode, or all documents when
	// mode is empty, without blocking concurrent writes.
	DeleteByMode(ctx context.Context, index string, mode string) error
}
