package api

import "time"

type UploadResponse struct {
	Id        string `json:"id"`
	Status    string `json:"status" example:"PENDING"`
	StatusURL string `json:"status_url"`
}

type DocumentResponse struct {
	Id               string                `json:"id" example:"b7a6d0f2"`
	Filename         string                `json:"filename" example:"report.pdf"`
	Status           string                `json:"status" example:"COMPLETED"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	ChunksProcessed  int                   `json:"chunks_processed,omitempty"`
	EmbeddingsStored int                   `json:"embeddings_stored,omitempty"`
	Error            *DocumentError        `json:"error,omitempty"`
	Duplicate        *DuplicateDocumentRef `json:"duplicate_of,omitempty"`
}

type DocumentError struct {
	Code    int    `json:"code" example:"500"`
	Message string `json:"message" example:"embedding provider unavailable"`
	Retry   bool   `json:"can_retry" example:"true"`
}

// DuplicateDocumentRef points a rejected upload at the record that already
// holds this document.
type DuplicateDocumentRef struct {
	ExistingId string `json:"existing_id"`
	Filename   string `json:"filename"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

type RetryResponse struct {
	Requeued []DocumentResponse `json:"requeued"`
	Count    int                `json:"count"`
}

type SourceResponse struct {
	FileName      string  `json:"file_name"`
	FilePath      string  `json:"file_path"`
	SequenceIndex int     `json:"sequence_index"`
	Similarity    float32 `json:"similarity"`
}

type QueryResponse struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Sources  []SourceResponse `json:"sources"`
}

type StatsResponse struct {
	TotalChunks         int64    `json:"total_chunks"`
	UniqueFiles         int      `json:"unique_files"`
	FileTypes           []string `json:"file_types"`
	ChunkSize           int      `json:"chunk_size"`
	ChunkOverlap        int      `json:"chunk_overlap"`
	SupportedExtensions []string `json:"supported_extensions"`
}

// requests---------------------

type QueryRequest struct {
	Question            string  `json:"question" validate:"required"`
	MaxResults          int     `json:"max_results,omitempty"`
	SimilarityThreshold float32 `json:"similarity_threshold,omitempty"`
}
