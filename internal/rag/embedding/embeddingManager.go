package embedding

import "context"

// Embedder converts text into fixed-length vectors. BatchEmbedding must
// preserve input order so results map back to their chunks.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
