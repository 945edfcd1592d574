package rag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/metrics"
	"github.com/getai/ragstore/internal/rag/embedding"
	"github.com/getai/ragstore/internal/rag/vectorDB"
	"github.com/getai/ragstore/pkg/logging"
)

// Manager pairs the embedding provider with the vector store: it owns
// batching on the write path and ranking on the read path.
type Manager struct {
	embedder    embedding.Embedder
	vectorStore vectorDB.VectorStore
	batchSize   int
	logger      *logging.Logger
}

func NewManager(em embedding.Embedder, vs vectorDB.VectorStore) *Manager {
	return &Manager{
		embedder:    em,
		vectorStore: vs,
		batchSize:   config.EmbeddingBatchSize,
		logger:      logging.New("Embeddings Manager"),
	}
}

// StoreEmbeddings embeds the chunks batch by batch and upserts each batch
// before starting the next. On failure the ids stored so far stay stored;
// the returned PartialStoreError says how many.
func (m *Manager) StoreEmbeddings(ctx context.Context, chunks []docModel.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}

	storedIds := make([]string, 0, len(chunks))
	for start := 0; start < len(chunks); start += m.batchSize {
		end := min(start+m.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		embedStart := time.Now()
		vectors, err := m.embedder.BatchEmbedding(ctx, texts)
		metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
		if err != nil {
			return storedIds, &docModel.PartialStoreError{
				Stored: len(storedIds),
				Err:    fmt.Errorf("embedding batch at offset %d: %w", start, err),
			}
		}

		upsertStart := time.Now()
		ids, err := m.vectorStore.UpsertBatch(ctx, config.ChunkCollectionName, batch, vectors)
		metrics.CaptureExecutionMetrics("vector_upsert", time.Since(upsertStart))
		if err != nil {
			return storedIds, &docModel.PartialStoreError{
				Stored: len(storedIds),
				Err:    fmt.Errorf("upserting batch at offset %d: %w", start, err),
			}
		}
		storedIds = append(storedIds, ids...)
	}

	m.logger.Info("Stored embeddings", "chunks", len(chunks), "batches", (len(chunks)+m.batchSize-1)/m.batchSize)
	return storedIds, nil
}

// SearchSimilar embeds the query and returns up to maxResults chunks at or
// above the similarity threshold, best first. Equal scores break on
// sequence index, then id, so repeated searches never reorder.
func (m *Manager) SearchSimilar(ctx context.Context, query string, maxResults int, similarityThreshold float32) ([]docModel.ScoredChunk, error) {
	if maxResults <= 0 {
		maxResults = config.DefaultMaxResults
	}

	embedStart := time.Now()
	vector, err := m.embedder.GetEmbedding(ctx, query)
	metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	searchStart := time.Now()
	hits, err := m.vectorStore.NearestNeighbors(ctx, vector, uint64(maxResults), similarityThreshold)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(searchStart))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Chunk.SequenceIndex != hits[j].Chunk.SequenceIndex {
			return hits[i].Chunk.SequenceIndex < hits[j].Chunk.SequenceIndex
		}
		return hits[i].Id < hits[j].Id
	})

	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits, nil
}

func (m *Manager) DocumentStats(ctx context.Context) (docModel.CorpusStats, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_stats", time.Since(start)) }()
	return m.vectorStore.CollectStats(ctx)
}
