package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200

	//retrieval defaults
	DefaultMaxResults          = 5
	DefaultSimilarityThreshold = 0.7
	//context sent to the llm is capped at this many characters (~3k tokens)
	MaxContextChars = 12000

	//embeddings
	EmbeddingDimension int32 = 1536
	EmbeddingModelName       = "text-embedding-ada-002"
	ChunkCollectionName      = "document-chunks"
	EmbeddingBatchSize       = 100

	//duplicate detection reads files in fixed blocks to bound memory
	HashBlockSize = 4096

	//upload allowlist
	MaxUploadSize = 32 << 20 //32mb

	//worker pool
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 3
	IdleWorkerTimeout               = 1 * time.Minute
	JobTimeout                      = 5 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//processing jobs buffer limit - backpressure under upload bursts
	BufferLimit = 100

	//vectorDB
	QdrantHost     = ""
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//llm
	GeminiModelName  = "gemini-2.5-flash-lite-preview-09-2025"
	ModelTemperature = float32(0.2)
	ModelContext     = "You are an assistant that answers questions from the supplied documents. " +
		"Use only the provided context for precise, relevant answers. " +
		"If the answer is not in the documents, say you do not know."

	//fixed answer when retrieval comes back empty - an off-topic question is
	//an expected outcome, not a failure
	NoResultsAnswer = "Sorry, I could not find relevant information to answer your question."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DBs we can use
	RedisProcessingStore = 0
	RedisCacheStore      = 1

	//cache
	CacheDefaultTTL = 1 * time.Hour

	//auth
	NoAuthBypass = true
	AuthToken    = ""
)

// SupportedExtensions is the upload allowlist; the loader table in
// rag/ingest must cover exactly this set.
var SupportedExtensions = []string{".txt", ".pdf", ".md", ".csv", ".xlsx", ".xls"}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}
