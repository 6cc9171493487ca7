package elastic_client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
)

// Indexer wraps a bulk indexer for idempotent document upserts plus the
// scoped delete-by-query the clear protocol needs. Upserts flush once the
// batch size or the flush interval is hit, whichever comes first.
type Indexer struct {
	bulkIndexer esutil.BulkIndexer

	pending sync.WaitGroup
}

func NewIndexer(batchSize int, flushInterval time.Duration) (*Indexer, error) {
	bulkIndexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        Client,
		NumWorkers:    1,
		FlushBytes:    batchSize * 4096,
		FlushInterval: flushInterval,
	})
	if err != nil {
		return nil, err
	}

	return &Indexer{bulkIndexer: bulkIndexer}, nil
}

// Upsert queues a replace-if-exists write for the document. done is invoked
// exactly once from the bulk flush with the outcome - the caller decides
// whether to acknowledge the originating delivery.
func (i *Indexer) Upsert(index string, documentID string, document []byte, done func(error)) {
	i.pending.Add(1)
	finish := func(err error) {
		i.pending.Done()
		done(err)
	}

	err := i.bulkIndexer.Add(context.Background(), esutil.BulkIndexerItem{
		Index:      index,
		Action:     "index",
		DocumentID: documentID,
		Body:       bytes.NewReader(document),
		OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
			finish(nil)
		},
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err == nil {
				err = fmt.Errorf("index failure: %s %s", res.Error.Type, res.Error.Reason)
			}
			log.Error().Err(err).Str("index", index).Str("id", documentID).Msg("Failed to index document")
			finish(err)
		},
	})
	if err != nil {
		finish(err)
	}
}

// Flush blocks until every queued upsert has been written out and its
// callback run. The buffered writer flushes on its own interval, so this
// can wait up to one flush interval.
func (i *Indexer) Flush(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		i.pending.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DeleteByMode removes every document with the given mode, or all documents
// when mode is empty. Conflicts with concurrent writes are proceeded over -
// the clear-then-repopulate protocol makes them safe.
func (i *Indexer) DeleteByMode(ctx context.Context, index string, mode string) error {
	var query string
	if mode == "" {
		query = `{"query":{"match_all":{}}}`
	} else {
		query = fmt.Sprintf(`{"query":{"term":{"mode":%q}}}`, mode)
	}

	deleteReq := esapi.DeleteByQueryRequest{
		Index:     []string{index},
		Body:      strings.NewReader(query),
		Conflicts: "proceed",
	}

	resp, err := deleteReq.Do(ctx, Client)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete by query failed: [%s] %s", resp.Status(), string(body))
	}

	return nil
}

// Close drains any queued upserts.
func (i *Indexer) Close(ctx context.Context) error {
	return i.bulkIndexer.Close(ctx)
}
