package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
)

// checkDuplicate is the two-tier gate: first the cheap filename lookup, then
// the content hash. Returns the file's hash when the document is new so the
// caller can store it without hashing twice.
func (s *Service) checkDuplicate(ctx context.Context, filename string, filePath string) (string, error) {
	if existing, found := s.Store.FindByFilename(ctx, filename); found {
		return "", docModel.NewFilenameDuplicate(existing.Id, filename)
	}

	contentHash, err := hashFile(filePath)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", filePath, err)
	}

	if existing, found := s.Store.FindByHash(ctx, contentHash); found {
		return "", docModel.NewContentDuplicate(existing.Id, existing.Filename)
	}
	return contentHash, nil
}

// hashFile streams the file through SHA-256 in fixed-size blocks, so large
// uploads never load fully into memory.
func hashFile(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	buffer := make([]byte, config.HashBlockSize)
	for {
		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
