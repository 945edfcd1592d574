package vectorDB

import (
	"context"

	"github.com/getai/ragstore/internal/domain/docModel"
)

// VectorStore owns the persisted chunk+vector records. The nearest-neighbor
// algorithm (exact scan vs index-assisted) is the backend's business; the
// contract is only that results come back scored, at most k of them, none
// below minScore.
type VectorStore interface {
	CreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []docModel.Chunk, vectors [][]float32) ([]string, error)
	NearestNeighbors(ctx context.Context, vector []float32, k uint64, minScore float32) ([]docModel.ScoredChunk, error)
	CollectStats(ctx context.Context) (docModel.CorpusStats, error)
}
