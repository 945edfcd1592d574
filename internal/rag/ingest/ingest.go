package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/rag/chunker"
	"github.com/getai/ragstore/pkg/logging"
)

// Processor turns a typed file (or a directory of them) into ordered chunk
// records with provenance metadata. Loading and chunking are synchronous;
// callers decide where the work runs.
type Processor struct {
	chunker *chunker.Chunker
	logger  *logging.Logger
}

func NewProcessor(c *chunker.Chunker) *Processor {
	return &Processor{
		chunker: c,
		logger:  logging.New("DocumentProcessor"),
	}
}

// ProcessFile loads the file through its format loader, chunks the text and
// tags every chunk with a 0-based sequence index and file provenance.
func (p *Processor) ProcessFile(path string) ([]docModel.Chunk, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", docModel.ErrNotFound, path)
		}
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	load, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", docModel.ErrUnsupportedFormat, ext)
	}

	text, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	pieces := p.chunker.Chunk(text)
	p.logger.Debug("Processed file", "path", path, "chunks", len(pieces))

	chunks := make([]docModel.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, docModel.Chunk{
			Content:        piece,
			SequenceIndex:  i,
			SourceFileName: filepath.Base(path),
			SourceFilePath: path,
			SourceFileType: docTypeFor(ext),
			ChunkSize:      len(piece),
		})
	}
	return chunks, nil
}

// ProcessDirectory applies ProcessFile to every recognized file under path,
// in lexicographic path order. A single file's failure aborts the whole
// call: a partially ingested corpus is worse than a retryable failure, and
// callers wanting per-file granularity can call ProcessFile themselves.
func (p *Processor) ProcessDirectory(path string, recursive bool) ([]docModel.Chunk, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", docModel.ErrNotADirectory, path)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", docModel.ErrNotADirectory, path)
	}

	files, err := p.collectFiles(path, recursive)
	if err != nil {
		return nil, err
	}

	var allChunks []docModel.Chunk
	for _, file := range files {
		chunks, err := p.ProcessFile(file)
		if err != nil {
			return nil, err
		}
		allChunks = append(allChunks, chunks...)
	}

	p.logger.Debug("Processed directory", "path", path, "files", len(files), "chunks", len(allChunks))
	return allChunks, nil
}

// collectFiles returns the recognized files under path. WalkDir yields
// lexical order per directory, which keeps directory ingestion
// deterministic.
func (p *Processor) collectFiles(path string, recursive bool) ([]string, error) {
	var files []string

	if !recursive {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, ok := loaders[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
		return files, nil
	}

	err := filepath.WalkDir(path, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := loaders[strings.ToLower(filepath.Ext(file))]; ok {
			files = append(files, file)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
