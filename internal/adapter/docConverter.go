package adapter

import (
	"fmt"
	"net/http"

	"github.com/getai/ragstore/internal/api"
	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
)

func ToUploadResponse(record docModel.ProcessingRecord) api.UploadResponse {
	return api.UploadResponse{
		Id:        record.Id,
		Status:    string(record.Status),
		StatusURL: fmt.Sprintf("documents/status/%s", record.Id),
	}
}

func ToDocumentResponse(record docModel.ProcessingRecord) api.DocumentResponse {
	var errorPtr *api.DocumentError
	if record.Status == docModel.StatusFailed && record.ErrorMessage != "" {
		errorPtr = &api.DocumentError{
			Code:    http.StatusInternalServerError,
			Message: record.ErrorMessage,
			Retry:   true,
		}
	}

	return api.DocumentResponse{
		Id:               record.Id,
		Filename:         record.Filename,
		Status:           string(record.Status),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
		ChunksProcessed:  record.ChunksProcessed,
		EmbeddingsStored: record.EmbeddingsStored,
		Error:            errorPtr,
	}
}

func ToDocumentListResponse(records []docModel.ProcessingRecord) api.DocumentListResponse {
	documents := make([]api.DocumentResponse, len(records))
	for i, record := range records {
		documents[i] = ToDocumentResponse(record)
	}
	return api.DocumentListResponse{Documents: documents, Count: len(documents)}
}

func ToRetryResponse(records []docModel.ProcessingRecord) api.RetryResponse {
	requeued := make([]api.DocumentResponse, len(records))
	for i, record := range records {
		requeued[i] = ToDocumentResponse(record)
	}
	return api.RetryResponse{Requeued: requeued, Count: len(requeued)}
}

func ToDuplicateResponse(dup *docModel.DuplicateError) api.DocumentResponse {
	return api.DocumentResponse{
		Status: string(docModel.StatusDuplicate),
		Error: &api.DocumentError{
			Code:    http.StatusConflict,
			Message: dup.Message,
			Retry:   false,
		},
		Duplicate: &api.DuplicateDocumentRef{
			ExistingId: dup.ExistingId,
			Filename:   dup.Filename,
		},
	}
}

func ToQueryResponse(question string, answer docModel.Answer) api.QueryResponse {
	sources := make([]api.SourceResponse, len(answer.Sources))
	for i, source := range answer.Sources {
		sources[i] = api.SourceResponse{
			FileName:      source.FileName,
			FilePath:      source.FilePath,
			SequenceIndex: source.SequenceIndex,
			Similarity:    source.Similarity,
		}
	}
	return api.QueryResponse{
		Question: question,
		Answer:   answer.Answer,
		Sources:  sources,
	}
}

func ToStatsResponse(stats docModel.CorpusStats) api.StatsResponse {
	return api.StatsResponse{
		TotalChunks:         stats.TotalChunks,
		UniqueFiles:         stats.UniqueFiles,
		FileTypes:           stats.FileTypes,
		ChunkSize:           config.ChunkSize,
		ChunkOverlap:        config.ChunkOverlap,
		SupportedExtensions: config.SupportedExtensions,
	}
}

func BadRequest(id string, message string, code int) api.DocumentResponse {
	return api.DocumentResponse{
		Id:     id,
		Status: string(docModel.StatusFailed),
		Error: &api.DocumentError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
