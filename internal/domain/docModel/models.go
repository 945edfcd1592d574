package docModel

import (
	"context"
	"time"
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "PENDING"
	StatusProcessing ProcessingStatus = "PROCESSING"
	StatusCompleted  ProcessingStatus = "COMPLETED"
	StatusFailed     ProcessingStatus = "FAILED"
	StatusDuplicate  ProcessingStatus = "DUPLICATE"
)

type DocType string

const (
	TXT  DocType = "txt"
	PDF  DocType = "pdf"
	MD   DocType = "md"
	CSV  DocType = "csv"
	XLSX DocType = "xlsx"
	XLS  DocType = "xls"
	ERR  DocType = "error"
)

// Chunk is one bounded slice of a source document. Immutable once built;
// after StoreEmbeddings hands it to the vector store the store's copy is
// authoritative.
type Chunk struct {
	Content        string  `json:"content"`
	SequenceIndex  int     `json:"sequence_index"`
	SourceFileName string  `json:"file_name"`
	SourceFilePath string  `json:"file_path"`
	SourceFileType DocType `json:"file_type"`
	ChunkSize      int     `json:"chunk_size"`
}

// ScoredChunk is a retrieval hit: the stored chunk, its record id and the
// similarity score the backend assigned.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Id    string  `json:"id"`
	Score float32 `json:"score"`
}

// Source is the per-chunk attribution attached to every answer.
type Source struct {
	FileName      string  `json:"file_name"`
	FilePath      string  `json:"file_path"`
	SequenceIndex int     `json:"sequence_index"`
	Similarity    float32 `json:"similarity"`
}

type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type CorpusStats struct {
	TotalChunks int64    `json:"total_chunks"`
	UniqueFiles int      `json:"unique_files"`
	FileTypes   []string `json:"file_types"`
}

// ProcessingRecord tracks one uploaded file's ingestion lifecycle.
// Filename and ContentHash are each unique at the store level; a missing
// hash is tolerated (legacy records) and excluded from hash uniqueness.
type ProcessingRecord struct {
	Id              string           `json:"id"`
	Filename        string           `json:"filename"`
	FilePath        string           `json:"file_path"`
	ContentHash     string           `json:"content_hash,omitempty"`
	Status          ProcessingStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	ChunksProcessed int              `json:"chunks_processed,omitempty"`
	EmbeddingsStored int             `json:"embeddings_stored,omitempty"`
}

// ProcessingJob is the value pushed through the worker channel: everything a
// worker needs to run one record's ingestion, nothing more.
type ProcessingJob struct {
	RecordId string
	Filename string
	FilePath string
	TraceId  string
}

// StatusUpdate carries the optional fields of a status transition.
type StatusUpdate struct {
	ErrorMessage     string
	ChunksProcessed  int
	EmbeddingsStored int
}

// ProcessingStore persists ProcessingRecords. Create must reject a second
// record with the same filename or the same non-empty content hash with
// ErrDuplicateDocument, atomically enough that two racing inserts cannot
// both succeed.
type ProcessingStore interface {
	Create(ctx context.Context, record ProcessingRecord) error
	Get(ctx context.Context, id string) (ProcessingRecord, bool)
	FindByFilename(ctx context.Context, filename string) (ProcessingRecord, bool)
	FindByHash(ctx context.Context, contentHash string) (ProcessingRecord, bool)
	UpdateStatus(ctx context.Context, id string, status ProcessingStatus, update StatusUpdate) error
	List(ctx context.Context, status ProcessingStatus) ([]ProcessingRecord, error)
}
