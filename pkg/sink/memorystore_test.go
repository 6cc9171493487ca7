package sink

import (
	"context"
	"encoding/json"
	"sync"
)

// memoryStore is an in-process Store for tests. With buffered set it
// mimics the bulk indexer: upserts sit queued until Flush applies them.
type memoryStore struct {
	mutex     sync.Mutex
	documents map[string]map[string][]byte

	buffered bool
	queued   []queuedWrite

	upsertErr error
	flushErr  error
	deleteErr error

	flushes int
}

type queuedWrite struct {
	index      string
	documentID string
	document   []byte
	done       func(error)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		documents: map[string]map[string][]byte{},
	}
}

func (s *memoryStore) Upsert(index string, documentID string, document []byte, done func(error)) {
	s.mutex.Lock()

	if s.upsertErr != nil {
		s.mutex.Unlock()
		done(s.upsertErr)
		return
	}

	if s.buffered {
		s.queued = append(s.queued, queuedWrite{index, documentID, append([]byte{}, document...), done})
		s.mutex.Unlock()
		return
	}

	s.write(index, documentID, document)

	s.mutex.Unlock()
	done(nil)
}

func (s *memoryStore) write(index string, documentID string, document []byte) {
	if s.documents[index] == nil {
		s.documents[index] = map[string][]byte{}
	}
	s.documents[index][documentID] = append([]byte{}, document...)
}

func (s *memoryStore) Flush(_ context.Context) error {
	s.mutex.Lock()

	s.flushes++

	if s.flushErr != nil {
		s.mutex.Unlock()
		return s.flushErr
	}

	queued := s.queued
	s.queued = nil
	for _, write := range queued {
		s.write(write.index, write.documentID, write.document)
	}

	s.mutex.Unlock()

	for _, write := range queued {
		write.done(nil)
	}

	return nil
}

func (s *memoryStore) DeleteByMode(ctx context.Context, index string, mode string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}

	for documentID, document := range s.documents[index] {
		if mode == "" {
			delete(s.documents[index], documentID)
			continue
		}

		var modeField struct {
			Mode string `json:"mode"`
		}
		json.Unmarshal(document, &modeField)

		if modeField.Mode == mode {
			delete(s.documents[index], documentID)
		}
	}

	return nil
}

func (s *memoryStore) document(index string, documentID string) ([]byte, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	document, ok := s.documents[index][documentID]
	return document, ok
}

func (s *memoryStore) all(index string) [][]byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var documents [][]byte
	for _, document := range s.documents[index] {
		documents = append(documents, document)
	}
	return documents
}

func (s *memoryStore) count(index string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.documents[index])
}
