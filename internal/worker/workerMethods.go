package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/metrics"
)

// executeJob is the only writer of PROCESSING and the terminal states, so a
// record never sees interleaved status updates from two goroutines.
func executeJob(job docModel.ProcessingJob) {
	start := time.Now()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobTimeout)
	defer cancel()

	jobLogger := logger.With("traceId", job.TraceId, "recordId", job.RecordId)
	jobLogger.Debug("Processing ingestion job", "filename", job.Filename)

	saveRecordState(ctx, job.RecordId, docModel.StatusProcessing, docModel.StatusUpdate{})

	chunksProcessed, embeddingsStored, err := _ragService.IngestDocument(ctx, job.FilePath)
	if err != nil {
		jobLogger.Error("Ingestion failed", "error", err)
		saveRecordState(ctx, job.RecordId, docModel.StatusFailed, docModel.StatusUpdate{
			ErrorMessage:     err.Error(),
			ChunksProcessed:  chunksProcessed,
			EmbeddingsStored: embeddingsStored,
		})
		metrics.CaptureJobMetrics(string(docModel.StatusFailed), time.Since(start))
		return
	}

	saveRecordState(ctx, job.RecordId, docModel.StatusCompleted, docModel.StatusUpdate{
		ChunksProcessed:  chunksProcessed,
		EmbeddingsStored: embeddingsStored,
	})
	jobLogger.Info("Ingestion complete", "chunks", chunksProcessed, "stored", embeddingsStored)
	metrics.CaptureJobMetrics(string(docModel.StatusCompleted), time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func saveRecordState(ctx context.Context, recordId string, status docModel.ProcessingStatus, update docModel.StatusUpdate) {
	if err := _documentService.UpdateStatus(ctx, recordId, status, update); err != nil {
		logger.Error("Failed to update record status", "recordId", recordId, "status", status, "err", err)
	}
}
