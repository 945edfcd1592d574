package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/getai/ragstore/internal/adapter/utils"
	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/pkg/logging"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logging.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingDimension)
var collectionName = config.ChunkCollectionName

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logging.New("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	err = createCollection(context.Background(), client, collectionName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", collectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

// NearestNeighbors pushes both the result cap and the similarity floor into
// the query; qdrant scores with cosine similarity, which matches what the
// embedding provider's vectors are normalized for.
func (db *ClientHolder) NearestNeighbors(ctx context.Context, vector []float32, k uint64, minScore float32) ([]docModel.ScoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(k),
		ScoreThreshold: qdrant.PtrOf(minScore),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	matches := make([]docModel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		matches = append(matches, docModel.ScoredChunk{
			Id:    hit.Id.GetUuid(),
			Score: hit.Score,
			Chunk: docModel.Chunk{
				Content:        hit.Payload["content"].GetStringValue(),
				SequenceIndex:  int(hit.Payload["sequence_index"].GetIntegerValue()),
				SourceFileName: hit.Payload["file_name"].GetStringValue(),
				SourceFilePath: hit.Payload["file_path"].GetStringValue(),
				SourceFileType: docModel.DocType(hit.Payload["file_type"].GetStringValue()),
				ChunkSize:      int(hit.Payload["chunk_size"].GetIntegerValue()),
			},
		})
	}

	loggr.Debug("Vector search done", "hits", len(matches))
	return matches, nil
}

func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

// UpsertBatch persists chunk+vector pairs and returns the assigned ids in
// input order. Records are never mutated afterwards.
func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []docModel.Chunk, vectors [][]float32) ([]string, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	ids := make([]string, len(chunks))

	for i, chunk := range chunks {
		id := utils.GetNewUUID()
		ids[i] = id

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":        chunk.Content,
				"sequence_index": chunk.SequenceIndex,
				"file_name":      chunk.SourceFileName,
				"file_path":      chunk.SourceFilePath,
				"file_type":      string(chunk.SourceFileType),
				"chunk_size":     chunk.ChunkSize,
				"created_at":     time.Now().Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return nil, fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return ids, nil
}

const statsScrollPageSize = uint32(4096)

// CollectStats aggregates corpus counts. Exact count comes from qdrant; the
// per-file aggregation scrolls every payload page by page.
func (db *ClientHolder) CollectStats(ctx context.Context) (docModel.CorpusStats, error) {
	total, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return docModel.CorpusStats{}, fmt.Errorf("qdrant count failed: %w", err)
	}

	files := make(map[string]struct{})
	types := make(map[string]struct{})
	var offset *qdrant.PointId
	for {
		response, err := db.QObj.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collectionName,
			Limit:          qdrant.PtrOf(statsScrollPageSize),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude("file_path", "file_type"),
		})
		if err != nil {
			return docModel.CorpusStats{}, fmt.Errorf("qdrant scroll failed: %w", err)
		}
		for _, point := range response.GetResult() {
			files[point.Payload["file_path"].GetStringValue()] = struct{}{}
			types[point.Payload["file_type"].GetStringValue()] = struct{}{}
		}
		offset = response.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	fileTypes := make([]string, 0, len(types))
	for t := range types {
		fileTypes = append(fileTypes, t)
	}
	sort.Strings(fileTypes)

	return docModel.CorpusStats{
		TotalChunks: int64(total),
		UniqueFiles: len(files),
		FileTypes:   fileTypes,
	}, nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
