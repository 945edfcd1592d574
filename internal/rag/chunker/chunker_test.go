package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/getai/ragstore/internal/domain/docModel"
)

func TestNew_ConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		wantErr   bool
	}{
		{"valid", 1000, 200, false},
		{"zero overlap", 100, 0, false},
		{"overlap equals size", 100, 100, true},
		{"overlap above size", 100, 150, true},
		{"negative overlap", 100, -1, true},
		{"zero chunk size", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.chunkSize, tt.overlap)
			if tt.wantErr {
				if !errors.Is(err, docModel.ErrConfiguration) {
					t.Errorf("New(%d, %d) error = %v, want ErrConfiguration", tt.chunkSize, tt.overlap, err)
				}
				return
			}
			if err != nil {
				t.Errorf("New(%d, %d) unexpected error: %v", tt.chunkSize, tt.overlap, err)
			}
		})
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c, _ := New(100, 10)
	if got := c.Chunk(""); len(got) != 0 {
		t.Errorf("Chunk(\"\") = %v, want empty", got)
	}
}

func TestChunk_BoundsAndBoundaries(t *testing.T) {
	c, _ := New(30, 5)
	text := strings.Repeat("alpha beta gamma delta epsilon ", 20)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if len(chunk) > 30 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(chunk))
		}
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Errorf("chunk %d not trimmed: %q", i, chunk)
		}
	}

	// Every cut should land on a word boundary: no chunk ends mid-word when
	// the source only has short words.
	for i, chunk := range chunks[:len(chunks)-1] {
		last := chunk[strings.LastIndexByte(chunk, ' ')+1:]
		if !strings.Contains(text, last+" ") && !strings.HasSuffix(text, last) {
			t.Errorf("chunk %d ends mid-word: %q", i, last)
		}
	}
}

func TestChunk_HardCutWithoutBoundary(t *testing.T) {
	c, _ := New(10, 2)
	text := strings.Repeat("x", 35)

	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks from unbroken input")
	}
	for i, chunk := range chunks {
		if len(chunk) > 10 {
			t.Errorf("chunk %d exceeds limit after hard cut: %d", i, len(chunk))
		}
	}
	// Hard cuts must still cover the whole input.
	joined := strings.Join(chunks, "")
	if len(joined) < len(text) {
		t.Errorf("hard-cut chunks dropped content: covered %d of %d chars", len(joined), len(text))
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c, _ := New(50, 10)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 30)

	first := c.Chunk(text)
	second := c.Chunk(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs:\n%q\n%q", i, first[i], second[i])
		}
	}
}

func TestChunk_Overlap(t *testing.T) {
	c, _ := New(40, 10)
	text := strings.Repeat("one two three four five six seven eight ", 10)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Successive chunks share content: the head of each chunk re-appears at
	// the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if idx := strings.IndexByte(head, ' '); idx > 0 {
			head = head[:idx]
		}
		if !strings.Contains(chunks[i-1], head) {
			t.Errorf("chunk %d head %q not found in previous chunk %q", i, head, chunks[i-1])
		}
	}
}

func TestChunk_SmallInputSingleChunk(t *testing.T) {
	c, _ := New(500, 50)
	text := strings.Repeat("word ", 80) //400 chars

	chunks := c.Chunk(text)
	if len(chunks) != 1 {
		t.Errorf("400 chars with chunk size 500: got %d chunks, want 1", len(chunks))
	}
}
