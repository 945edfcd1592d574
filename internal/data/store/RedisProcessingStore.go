package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/getai/ragstore/internal/data/redisStore"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/pkg/logging"
)

const (
	recordKeyPrefix   = "record:"
	filenameKeyPrefix = "filename:"
	hashKeyPrefix     = "hash:"
	recordIndexKey    = "records"
)

// RedisProcessingStore keeps one JSON blob per record plus two SETNX-guarded
// index keys (filename and content hash). The index keys are what make Create
// safe under concurrent uploads of the same document.
type RedisProcessingStore struct {
	store  *redisStore.Store
	logger *logging.Logger
}

func NewRedisProcessingStore(store *redisStore.Store) *RedisProcessingStore {
	return &RedisProcessingStore{
		store:  store,
		logger: logging.New("Redis Processing Store"),
	}
}

func (r *RedisProcessingStore) Create(ctx context.Context, record docModel.ProcessingRecord) error {

	filenameKey := filenameKeyPrefix + record.Filename
	created, err := r.store.SetNX(ctx, filenameKey, record.Id, 0)
	if err != nil {
		return fmt.Errorf("claiming filename index: %w", err)
	}
	if !created {
		existingId, err := r.store.Get(ctx, filenameKey)
		if err != nil {
			return fmt.Errorf("reading filename index: %w", err)
		}
		return docModel.NewFilenameDuplicate(existingId, record.Filename)
	}

	if record.ContentHash != "" {
		hashKey := hashKeyPrefix + record.ContentHash
		created, err = r.store.SetNX(ctx, hashKey, record.Id, 0)
		if err != nil {
			r.rollback(ctx, filenameKey)
			return fmt.Errorf("claiming content hash index: %w", err)
		}
		if !created {
			existingId, err := r.store.Get(ctx, hashKey)
			if err != nil {
				r.rollback(ctx, filenameKey)
				return fmt.Errorf("reading content hash index: %w", err)
			}
			existing, found := r.Get(ctx, existingId)
			filename := ""
			if found {
				filename = existing.Filename
			}
			r.rollback(ctx, filenameKey)
			return docModel.NewContentDuplicate(existingId, filename)
		}
	}

	if err := r.write(ctx, record); err != nil {
		return err
	}
	if err := r.store.SAdd(ctx, recordIndexKey, record.Id); err != nil {
		return fmt.Errorf("indexing record %s: %w", record.Id, err)
	}
	return nil
}

func (r *RedisProcessingStore) Get(ctx context.Context, id string) (docModel.ProcessingRecord, bool) {
	raw, err := r.store.Get(ctx, recordKeyPrefix+id)
	if err != nil {
		if !redisStore.IsNil(err) {
			r.logger.Error("Failed to read record", "id", id, "error", err)
		}
		return docModel.ProcessingRecord{}, false
	}
	var record docModel.ProcessingRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		r.logger.Error("Corrupt record payload", "id", id, "error", err)
		return docModel.ProcessingRecord{}, false
	}
	return record, true
}

func (r *RedisProcessingStore) FindByFilename(ctx context.Context, filename string) (docModel.ProcessingRecord, bool) {
	return r.findByIndex(ctx, filenameKeyPrefix+filename)
}

func (r *RedisProcessingStore) FindByHash(ctx context.Context, contentHash string) (docModel.ProcessingRecord, bool) {
	if contentHash == "" {
		return docModel.ProcessingRecord{}, false
	}
	return r.findByIndex(ctx, hashKeyPrefix+contentHash)
}

func (r *RedisProcessingStore) UpdateStatus(ctx context.Context, id string, status docModel.ProcessingStatus, update docModel.StatusUpdate) error {
	record, found := r.Get(ctx, id)
	if !found {
		return fmt.Errorf("record %s: %w", id, docModel.ErrNotFound)
	}
	applyUpdate(&record, status, update)
	return r.write(ctx, record)
}

func (r *RedisProcessingStore) List(ctx context.Context, status docModel.ProcessingStatus) ([]docModel.ProcessingRecord, error) {
	ids, err := r.store.SMembers(ctx, recordIndexKey)
	if err != nil {
		return nil, fmt.Errorf("listing record ids: %w", err)
	}
	records := make([]docModel.ProcessingRecord, 0, len(ids))
	for _, id := range ids {
		record, found := r.Get(ctx, id)
		if !found {
			continue
		}
		if status != "" && record.Status != status {
			continue
		}
		records = append(records, record)
	}
	sortRecords(records)
	return records, nil
}

func (r *RedisProcessingStore) write(ctx context.Context, record docModel.ProcessingRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record %s: %w", record.Id, err)
	}
	if err := r.store.Set(ctx, recordKeyPrefix+record.Id, payload, 0); err != nil {
		return fmt.Errorf("writing record %s: %w", record.Id, err)
	}
	return nil
}

func (r *RedisProcessingStore) findByIndex(ctx context.Context, indexKey string) (docModel.ProcessingRecord, bool) {
	id, err := r.store.Get(ctx, indexKey)
	if err != nil {
		if !redisStore.IsNil(err) {
			r.logger.Error("Failed to read index", "key", indexKey, "error", err)
		}
		return docModel.ProcessingRecord{}, false
	}
	return r.Get(ctx, id)
}

func (r *RedisProcessingStore) rollback(ctx context.Context, keys ...string) {
	if _, err := r.store.Del(ctx, keys...); err != nil {
		r.logger.Error("Failed to roll back index keys", "keys", keys, "error", err)
	}
}

func applyUpdate(record *docModel.ProcessingRecord, status docModel.ProcessingStatus, update docModel.StatusUpdate) {
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	if update.ErrorMessage != "" {
		record.ErrorMessage = update.ErrorMessage
	}
	if update.ChunksProcessed > 0 {
		record.ChunksProcessed = update.ChunksProcessed
	}
	if update.EmbeddingsStored > 0 {
		record.EmbeddingsStored = update.EmbeddingsStored
	}
}

func sortRecords(records []docModel.ProcessingRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].Id < records[j].Id
	})
}
