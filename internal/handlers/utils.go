package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/getai/ragstore/internal/adapter"
	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logDH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func validateId(r *http.Request, id string) (docModel.ProcessingRecord, bool) {
	if id == "" {
		logDH.Warn("Empty record ID")
		return docModel.ProcessingRecord{}, false
	}
	return handlerInstance.documentService.Get(r.Context(), id)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logDH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logDH.Warn("context cancelled")
		return false
	default:
		return true
	}
}

func traceIdOf(r *http.Request) string {
	if trace, ok := r.Context().Value(config.TRACE_ID_KEY).(string); ok {
		return trace
	}
	return ""
}

func isSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range config.SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

func isKnownStatus(status docModel.ProcessingStatus) bool {
	switch status {
	case docModel.StatusPending, docModel.StatusProcessing, docModel.StatusCompleted,
		docModel.StatusFailed, docModel.StatusDuplicate:
		return true
	}
	return false
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

func discardUpload(path string) {
	if err := os.Remove(path); err != nil {
		logDH.Warn("Could not remove rejected upload", "path", path, "error", err)
	}
}
