package document

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/metrics"
	"github.com/getai/ragstore/pkg/logging"
	"github.com/google/uuid"
)

// Service owns the document lifecycle: the duplicate gate, the processing
// record state machine and the handoff to the worker pool. Workers are the
// only writers of PROCESSING and later states; this service writes PENDING
// and the retry reset.
type Service struct {
	JobChannel        chan docModel.ProcessingJob
	RequestCount      int64
	DispatcherChannel chan bool
	Store             docModel.ProcessingStore
	logger            *logging.Logger
}

type ServiceConfig struct {
	JobChannel        chan docModel.ProcessingJob
	DispatcherChannel chan bool
	Store             docModel.ProcessingStore
}

func InitService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		Store:             cfg.Store,
		logger:            logging.New("Document Service"),
	}
}

// CreateProcessingRecord runs the duplicate gate and persists a PENDING
// record. The store re-checks uniqueness on insert, so two racing uploads of
// the same document cannot both get a record.
func (s *Service) CreateProcessingRecord(ctx context.Context, filename string, filePath string) (docModel.ProcessingRecord, error) {
	contentHash, err := s.checkDuplicate(ctx, filename, filePath)
	if err != nil {
		return docModel.ProcessingRecord{}, err
	}

	now := time.Now().UTC()
	record := docModel.ProcessingRecord{
		Id:          uuid.NewString(),
		Filename:    filename,
		FilePath:    filePath,
		ContentHash: contentHash,
		Status:      docModel.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Create(ctx, record); err != nil {
		return docModel.ProcessingRecord{}, err
	}
	s.logger.Info("Created processing record", "id", record.Id, "filename", filename)
	return record, nil
}

// Enqueue hands the record to the worker pool. The send blocks once the job
// buffer is full, which is the system's backpressure.
func (s *Service) Enqueue(record docModel.ProcessingRecord, traceId string) {
	job := docModel.ProcessingJob{
		RecordId: record.Id,
		Filename: record.Filename,
		FilePath: record.FilePath,
		TraceId:  traceId,
	}

	metrics.IncrementJobsInQueue()
	s.JobChannel <- job
	s.logger.Info("Queued ingestion job", "recordId", record.Id)

	// ingestion is batch-heavy, so every queued job may warrant an extra
	// worker; the dispatcher caps the pool at MaxWorkerCount
	accurateCount := atomic.AddInt64(&s.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || len(s.JobChannel) > 0 {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
}

func (s *Service) Get(ctx context.Context, id string) (docModel.ProcessingRecord, bool) {
	return s.Store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status docModel.ProcessingStatus) ([]docModel.ProcessingRecord, error) {
	return s.Store.List(ctx, status)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status docModel.ProcessingStatus, update docModel.StatusUpdate) error {
	return s.Store.UpdateStatus(ctx, id, status, update)
}

// RetryFailed resets every FAILED record to PENDING and queues it again.
// Only FAILED records are eligible; everything else is untouched.
func (s *Service) RetryFailed(ctx context.Context, traceId string) ([]docModel.ProcessingRecord, error) {
	failed, err := s.Store.List(ctx, docModel.StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("listing failed records: %w", err)
	}

	retried := make([]docModel.ProcessingRecord, 0, len(failed))
	for _, record := range failed {
		if err := s.Store.UpdateStatus(ctx, record.Id, docModel.StatusPending, docModel.StatusUpdate{}); err != nil {
			s.logger.Error("Failed to reset record for retry", "id", record.Id, "error", err)
			continue
		}
		record.Status = docModel.StatusPending
		s.Enqueue(record, traceId)
		retried = append(retried, record)
	}

	s.logger.Info("Requeued failed documents", "count", len(retried))
	return retried, nil
}
