package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/getai/ragstore/internal/cache"
	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/data/redisStore"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/rag"
	"github.com/getai/ragstore/internal/rag/chunker"
	"github.com/getai/ragstore/internal/rag/ingest"
	"github.com/redis/go-redis/v9"
)

func newTestService(t *testing.T, embedder *MockEmbedder, vectorStore *MockVectorStore, llm *MockLLM) (rag.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c, err := chunker.New(config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		t.Fatalf("chunker config: %v", err)
	}

	svc := rag.NewService(
		rag.NewManager(embedder, vectorStore),
		llm,
		ingest.NewProcessor(c),
		cache.NewManager(redisStore.NewTestStore(client)),
	)
	return svc, mr
}

func singleHit(score float32) []docModel.ScoredChunk {
	return []docModel.ScoredChunk{{
		Id:    "hit-1",
		Score: score,
		Chunk: docModel.Chunk{
			Content:        "go routines are lightweight threads",
			SequenceIndex:  3,
			SourceFileName: "guide.md",
			SourceFilePath: "/docs/guide.md",
			SourceFileType: docModel.MD,
		},
	}}
}

func TestQuery_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorStore, l *MockLLM)
		expectedAnswer string
		expectedErr    bool
		expectSources  int
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorStore, l *MockLLM) {
				v.OnNearestNeighbors = func(ctx context.Context, vec []float32, k uint64, min float32) ([]docModel.ScoredChunk, error) {
					return singleHit(0.91), nil
				}
				l.OnGenerate = func(ctx context.Context, q string, contextBlock string) (string, error) {
					if !strings.Contains(contextBlock, "Document 1:") {
						t.Errorf("context block missing numbered header: %q", contextBlock)
					}
					return "final answer", nil
				}
			},
			expectedAnswer: "final answer",
			expectSources:  1,
		},
		{
			name: "Empty_Corpus_Fixed_Answer",
			setupMocks: func(e *MockEmbedder, v *MockVectorStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, c string) (string, error) {
					t.Error("LLM must not be called without retrieved context")
					return "", nil
				}
			},
			expectedAnswer: config.NoResultsAnswer,
			expectSources:  0,
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorStore, l *MockLLM) {
				v.OnNearestNeighbors = func(ctx context.Context, vec []float32, k uint64, min float32) ([]docModel.ScoredChunk, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedErr: true,
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorStore, l *MockLLM) {
				v.OnNearestNeighbors = func(ctx context.Context, vec []float32, k uint64, min float32) ([]docModel.ScoredChunk, error) {
					return singleHit(0.88), nil
				}
				l.OnGenerate = func(ctx context.Context, q string, c string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &MockEmbedder{}
			vectorStore := &MockVectorStore{}
			llm := &MockLLM{}
			tt.setupMocks(embedder, vectorStore, llm)

			svc, _ := newTestService(t, embedder, vectorStore, llm)
			answer, err := svc.Query(context.Background(), "what are goroutines?", 5, 0.7)

			if tt.expectedErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if answer.Answer != tt.expectedAnswer {
				t.Errorf("got answer %q, want %q", answer.Answer, tt.expectedAnswer)
			}
			if len(answer.Sources) != tt.expectSources {
				t.Errorf("got %d sources, want %d", len(answer.Sources), tt.expectSources)
			}
			if tt.expectSources > 0 {
				src := answer.Sources[0]
				if src.FileName != "guide.md" || src.SequenceIndex != 3 || src.Similarity != 0.91 {
					t.Errorf("unexpected source attribution: %+v", src)
				}
			}
		})
	}
}

func TestQuery_SecondCallServedFromCache(t *testing.T) {
	llmCalls := 0
	vectorStore := &MockVectorStore{
		OnNearestNeighbors: func(ctx context.Context, vec []float32, k uint64, min float32) ([]docModel.ScoredChunk, error) {
			return singleHit(0.9), nil
		},
	}
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, q string, c string) (string, error) {
			llmCalls++
			return "computed answer", nil
		},
	}

	svc, mr := newTestService(t, &MockEmbedder{}, vectorStore, llm)
	ctx := context.Background()

	first, err := svc.Query(ctx, "repeat me", 5, 0.7)
	if err != nil {
		t.Fatalf("first Query failed: %v", err)
	}

	// cache write is async, wait for the key to land
	deadline := time.Now().Add(2 * time.Second)
	for len(mr.Keys()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("cache entry never written")
		}
		time.Sleep(5 * time.Millisecond)
	}

	second, err := svc.Query(ctx, "repeat me", 5, 0.7)
	if err != nil {
		t.Fatalf("second Query failed: %v", err)
	}

	if llmCalls != 1 {
		t.Errorf("LLM called %d times, want 1 (second call cached)", llmCalls)
	}
	if second.Answer != first.Answer || len(second.Sources) != len(first.Sources) {
		t.Errorf("cached answer differs: %+v vs %+v", second, first)
	}
}

func TestIngestDocument_Counts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := strings.Repeat("some words to split across chunks ", 80)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var stored int
	vectorStore := &MockVectorStore{
		OnUpsertBatch: func(ctx context.Context, name string, chunks []docModel.Chunk, vectors [][]float32) ([]string, error) {
			stored += len(chunks)
			ids := make([]string, len(chunks))
			for i := range ids {
				ids[i] = "id"
			}
			return ids, nil
		},
	}

	svc, _ := newTestService(t, &MockEmbedder{}, vectorStore, &MockLLM{})
	chunksProcessed, embeddingsStored, err := svc.IngestDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestDocument failed: %v", err)
	}
	if chunksProcessed == 0 || embeddingsStored != chunksProcessed {
		t.Errorf("got %d chunks / %d stored, want equal non-zero counts", chunksProcessed, embeddingsStored)
	}
	if stored != chunksProcessed {
		t.Errorf("vector store received %d chunks, want %d", stored, chunksProcessed)
	}
}

func TestIngestDirectory_WalksNestedFiles(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(nested, "b.md"),
	} {
		if err := os.WriteFile(p, []byte(strings.Repeat("directory ingestion text ", 40)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var sources = map[string]bool{}
	vectorStore := &MockVectorStore{
		OnUpsertBatch: func(ctx context.Context, name string, chunks []docModel.Chunk, vectors [][]float32) ([]string, error) {
			for _, c := range chunks {
				sources[filepath.Base(c.SourceFilePath)] = true
			}
			ids := make([]string, len(chunks))
			return ids, nil
		},
	}

	svc, _ := newTestService(t, &MockEmbedder{}, vectorStore, &MockLLM{})
	chunksProcessed, embeddingsStored, err := svc.IngestDirectory(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("IngestDirectory failed: %v", err)
	}
	if chunksProcessed == 0 || embeddingsStored != chunksProcessed {
		t.Errorf("got %d chunks / %d stored, want equal non-zero counts", chunksProcessed, embeddingsStored)
	}
	if !sources["a.txt"] || !sources["b.md"] {
		t.Errorf("expected chunks from both files, got sources %v", sources)
	}
}

func TestIngestDocument_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	if err := os.WriteFile(path, []byte("not a doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc, _ := newTestService(t, &MockEmbedder{}, &MockVectorStore{}, &MockLLM{})
	_, _, err := svc.IngestDocument(context.Background(), path)
	if !errors.Is(err, docModel.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
