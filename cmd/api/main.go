// @title           Document RAG API
// @version         1.0
// @description     Asynchronous document ingestion and retrieval-augmented question answering
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/getai/ragstore/internal/cache"
	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/data/redisStore"
	"github.com/getai/ragstore/internal/data/store"
	"github.com/getai/ragstore/internal/document"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/handlers"
	"github.com/getai/ragstore/internal/rag"
	"github.com/getai/ragstore/internal/rag/chunker"
	"github.com/getai/ragstore/internal/rag/embedding/openaiEmbedding"
	"github.com/getai/ragstore/internal/rag/ingest"
	"github.com/getai/ragstore/internal/rag/llm/gemini"
	"github.com/getai/ragstore/internal/rag/vectorDB/qdrantDB"
	"github.com/getai/ragstore/internal/server"
	"github.com/getai/ragstore/internal/worker"
	"github.com/getai/ragstore/pkg/logging"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logging.Init()
	var logger = logging.New("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan docModel.ProcessingJob, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//processing records live in their own redis DB, the query cache in another
	var processingStore docModel.ProcessingStore
	if rs := redisStore.GetRedisStore(serviceContext, config.RedisProcessingStore); rs != nil {
		processingStore = store.NewRedisProcessingStore(rs)
	} else {
		logger.Error("Redis processing store is offline, falling back to in-memory")
		processingStore = store.NewInMemoryProcessingStore()
	}

	cacheStore := redisStore.GetRedisStore(serviceContext, config.RedisCacheStore)
	if cacheStore == nil {
		logger.Error("Redis cache store is offline, queries will not be cached")
	}
	cacheManager := cache.NewManager(cacheStore)

	documentService := document.InitService(document.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
		Store:             processingStore,
	})

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)
	embeddingService := openaiEmbedding.GetOpenAIEmbeddingClient(config.EmbeddingModelName, config.OpenAIAPIKey())
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GeminiAPIKey())

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	if err := vectorDB.CreateCollection(serviceContext, config.ChunkCollectionName); err != nil {
		logger.Error("Could not prepare chunk collection", "error", err)
		return
	}

	documentChunker, err := chunker.New(config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		logger.Error("Invalid chunker configuration", "error", err)
		return
	}

	ragService := rag.NewService(
		rag.NewManager(embeddingService, vectorDB),
		llmProvider,
		ingest.NewProcessor(documentChunker),
		cacheManager,
	)

	handlers.InitDocumentHandler(documentService, ragService)

	//init worker pool
	worker.InitServices(documentService, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
