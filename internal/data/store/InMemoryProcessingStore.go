package store

import (
	"context"
	"sync"

	"github.com/getai/ragstore/internal/domain/docModel"
)

// InMemoryProcessingStore is the single-process fallback used when Redis is
// unreachable and in tests. Same uniqueness rules as the Redis store, held
// under one mutex.
type InMemoryProcessingStore struct {
	mu         sync.RWMutex
	records    map[string]docModel.ProcessingRecord
	byFilename map[string]string
	byHash     map[string]string
}

func NewInMemoryProcessingStore() *InMemoryProcessingStore {
	return &InMemoryProcessingStore{
		records:    make(map[string]docModel.ProcessingRecord),
		byFilename: make(map[string]string),
		byHash:     make(map[string]string),
	}
}

func (m *InMemoryProcessingStore) Create(ctx context.Context, record docModel.ProcessingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existingId, exists := m.byFilename[record.Filename]; exists {
		return docModel.NewFilenameDuplicate(existingId, record.Filename)
	}
	if record.ContentHash != "" {
		if existingId, exists := m.byHash[record.ContentHash]; exists {
			return docModel.NewContentDuplicate(existingId, m.records[existingId].Filename)
		}
	}

	m.records[record.Id] = record
	m.byFilename[record.Filename] = record.Id
	if record.ContentHash != "" {
		m.byHash[record.ContentHash] = record.Id
	}
	return nil
}

func (m *InMemoryProcessingStore) Get(ctx context.Context, id string) (docModel.ProcessingRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, found := m.records[id]
	return record, found
}

func (m *InMemoryProcessingStore) FindByFilename(ctx context.Context, filename string) (docModel.ProcessingRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, exists := m.byFilename[filename]
	if !exists {
		return docModel.ProcessingRecord{}, false
	}
	record, found := m.records[id]
	return record, found
}

func (m *InMemoryProcessingStore) FindByHash(ctx context.Context, contentHash string) (docModel.ProcessingRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if contentHash == "" {
		return docModel.ProcessingRecord{}, false
	}
	id, exists := m.byHash[contentHash]
	if !exists {
		return docModel.ProcessingRecord{}, false
	}
	record, found := m.records[id]
	return record, found
}

func (m *InMemoryProcessingStore) UpdateStatus(ctx context.Context, id string, status docModel.ProcessingStatus, update docModel.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, found := m.records[id]
	if !found {
		return docModel.ErrNotFound
	}
	applyUpdate(&record, status, update)
	m.records[id] = record
	return nil
}

func (m *InMemoryProcessingStore) List(ctx context.Context, status docModel.ProcessingStatus) ([]docModel.ProcessingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]docModel.ProcessingRecord, 0, len(m.records))
	for _, record := range m.records {
		if status != "" && record.Status != status {
			continue
		}
		records = append(records, record)
	}
	sortRecords(records)
	return records, nil
}
