package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/metrics"
)

func (s *service) executeCacheCheckStep(ctx context.Context, params map[string]any) (docModel.Answer, bool) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	var answer docModel.Answer
	found := s.cache.Get(ctx, queryCachePrefix, params, &answer)
	metrics.CaptureCacheLookup(found)
	if found {
		s.logger.Debug("Query cache hit")
	}
	return answer, found
}

func (s *service) executeLLMStep(ctx context.Context, question string, hits []docModel.ScoredChunk) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, question, buildContext(hits))
}

func (s *service) saveToCache(ctx context.Context, params map[string]any, answer docModel.Answer) {
	go func() {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if ok := s.cache.Set(saveCtx, queryCachePrefix, params, answer); !ok {
			s.logger.Warn("Failed to cache answer")
		}
	}()
}

// buildContext formats the retrieved chunks into numbered blocks and stops
// adding blocks once the prompt budget is spent. The first block always goes
// in, oversized or not, so the model never sees an empty context.
func buildContext(hits []docModel.ScoredChunk) string {
	var builder strings.Builder
	for i, hit := range hits {
		block := fmt.Sprintf("Document %d:\n%s", i+1, hit.Chunk.Content)
		if i > 0 {
			if builder.Len()+len("\n\n")+len(block) > config.MaxContextChars {
				break
			}
			builder.WriteString("\n\n")
		}
		builder.WriteString(block)
	}
	return builder.String()
}

func sourcesOf(hits []docModel.ScoredChunk) []docModel.Source {
	sources := make([]docModel.Source, len(hits))
	for i, hit := range hits {
		sources[i] = docModel.Source{
			FileName:      hit.Chunk.SourceFileName,
			FilePath:      hit.Chunk.SourceFilePath,
			SequenceIndex: hit.Chunk.SequenceIndex,
			Similarity:    hit.Score,
		}
	}
	return sources
}
