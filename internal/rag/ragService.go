package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/getai/ragstore/internal/cache"
	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/metrics"
	"github.com/getai/ragstore/internal/rag/ingest"
	"github.com/getai/ragstore/internal/rag/llm"
	"github.com/getai/ragstore/pkg/logging"
)

const queryCachePrefix = "query"

// Service is the public contract: handlers and workers call this, never the
// embedder, the vector store or the LLM directly. The private struct keeps
// those dependencies swappable in tests.
type Service interface {
	Query(ctx context.Context, question string, maxResults int, similarityThreshold float32) (docModel.Answer, error)
	IngestDocument(ctx context.Context, filePath string) (chunksProcessed int, embeddingsStored int, err error)
	IngestDirectory(ctx context.Context, path string, recursive bool) (chunksProcessed int, embeddingsStored int, err error)
	Stats(ctx context.Context) (docModel.CorpusStats, error)
}

type service struct {
	manager     *Manager
	processor   *ingest.Processor
	llmProvider llm.Provider
	cache       *cache.Manager
	logger      *logging.Logger
}

// NewService constructor
func NewService(manager *Manager, llmProvider llm.Provider, processor *ingest.Processor, cacheManager *cache.Manager) Service {
	return &service{
		manager:     manager,
		processor:   processor,
		llmProvider: llmProvider,
		cache:       cacheManager,
		logger:      logging.New("RAG Service"),
	}
}

func (s *service) Query(ctx context.Context, question string, maxResults int, similarityThreshold float32) (docModel.Answer, error) {
	if maxResults <= 0 {
		maxResults = config.DefaultMaxResults
	}
	if similarityThreshold <= 0 {
		similarityThreshold = config.DefaultSimilarityThreshold
	}

	queryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cacheParams := map[string]any{
		"question":             question,
		"max_results":          maxResults,
		"similarity_threshold": similarityThreshold,
	}

	if answer, found := s.executeCacheCheckStep(queryCtx, cacheParams); found {
		return answer, nil
	}

	hits, err := s.manager.SearchSimilar(queryCtx, question, maxResults, similarityThreshold)
	if err != nil {
		return docModel.Answer{}, fmt.Errorf("retrieving context: %w", err)
	}

	if len(hits) == 0 {
		answer := docModel.Answer{
			Answer:  config.NoResultsAnswer,
			Sources: []docModel.Source{},
		}
		s.saveToCache(ctx, cacheParams, answer)
		return answer, nil
	}

	generated, err := s.executeLLMStep(queryCtx, question, hits)
	if err != nil {
		return docModel.Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	answer := docModel.Answer{
		Answer:  generated,
		Sources: sourcesOf(hits),
	}
	s.saveToCache(ctx, cacheParams, answer)
	return answer, nil
}

func (s *service) IngestDocument(ctx context.Context, filePath string) (int, int, error) {
	status := docModel.StatusFailed
	defer func() { metrics.CaptureDocumentProcessed(string(status)) }()

	chunks, err := s.processor.ProcessFile(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("processing %s: %w", filePath, err)
	}

	ids, err := s.manager.StoreEmbeddings(ctx, chunks)
	if err != nil {
		return len(chunks), len(ids), fmt.Errorf("storing embeddings for %s: %w", filePath, err)
	}

	status = docModel.StatusCompleted
	return len(chunks), len(ids), nil
}

// IngestDirectory indexes every supported file under path in one pass. Any
// unreadable file aborts the whole run before embedding starts.
func (s *service) IngestDirectory(ctx context.Context, path string, recursive bool) (int, int, error) {
	chunks, err := s.processor.ProcessDirectory(path, recursive)
	if err != nil {
		return 0, 0, fmt.Errorf("processing directory %s: %w", path, err)
	}

	ids, err := s.manager.StoreEmbeddings(ctx, chunks)
	if err != nil {
		return len(chunks), len(ids), fmt.Errorf("storing embeddings for %s: %w", path, err)
	}
	return len(chunks), len(ids), nil
}

func (s *service) Stats(ctx context.Context) (docModel.CorpusStats, error) {
	return s.manager.DocumentStats(ctx)
}
