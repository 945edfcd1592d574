package chunker

import (
	"fmt"
	"strings"

	"github.com/getai/ragstore/internal/domain/docModel"
)

// Chunker splits raw text into bounded, overlapping segments. It carries no
// state beyond its parameters: identical input always yields an identical
// chunk sequence.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New validates the parameters up front. An overlap at or above the chunk
// size would keep the scan cursor from ever advancing, so it is rejected
// here instead of looping at call time.
func New(chunkSize int, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", docModel.ErrConfiguration, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", docModel.ErrConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d >= chunk size %d, cursor would never advance", docModel.ErrConfiguration, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk splits text into pieces of at most chunkSize characters, each
// overlapping the previous by overlap characters. A cut prefers the last
// word boundary inside the window and falls back to a hard cut only when
// the window holds no boundary at all.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	start := 0
	textLength := len(text)

	for start < textLength {
		end := start + c.chunkSize

		if end < textLength {
			boundary := end
			for boundary > start && text[boundary] != ' ' {
				boundary--
			}
			if boundary > start {
				end = boundary
			}
			//else: no space in the window, hard cut at chunkSize
		} else {
			end = textLength
		}

		piece := strings.TrimSpace(text[start:end])
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end == textLength {
			break
		}
		next := end - c.overlap
		if next <= start {
			//hard-cut window shorter than the overlap; step past it
			next = end
		}
		start = next
	}

	return chunks
}

func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

func (c *Chunker) Overlap() int {
	return c.overlap
}
