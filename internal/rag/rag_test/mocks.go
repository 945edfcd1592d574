package rag_test

import (
	"context"

	"github.com/getai/ragstore/internal/domain/docModel"
)

// MockVectorStore implements vectorDB.VectorStore
type MockVectorStore struct {
	// Control fields to simulate different behaviors
	OnNearestNeighbors func(ctx context.Context, vector []float32, k uint64, minScore float32) ([]docModel.ScoredChunk, error)
	OnUpsertBatch      func(ctx context.Context, name string, chunks []docModel.Chunk, vectors [][]float32) ([]string, error)
	OnCreateCollection func(ctx context.Context, name string) error
	OnCollectStats     func(ctx context.Context) (docModel.CorpusStats, error)
}

func (m *MockVectorStore) NearestNeighbors(ctx context.Context, vector []float32, k uint64, minScore float32) ([]docModel.ScoredChunk, error) {
	if m.OnNearestNeighbors != nil {
		return m.OnNearestNeighbors(ctx, vector, k, minScore)
	}
	return []docModel.ScoredChunk{}, nil
}

func (m *MockVectorStore) UpsertBatch(ctx context.Context, name string, chunks []docModel.Chunk, vectors [][]float32) ([]string, error) {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = "id-" + chunks[i].SourceFileName
	}
	return ids, nil
}

func (m *MockVectorStore) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorStore) CollectStats(ctx context.Context) (docModel.CorpusStats, error) {
	if m.OnCollectStats != nil {
		return m.OnCollectStats(ctx)
	}
	return docModel.CorpusStats{}, nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, query string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, question string, contextBlock string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, question string, contextBlock string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, question, contextBlock)
	}
	return "mocked llm response", nil
}
