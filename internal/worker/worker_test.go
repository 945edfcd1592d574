package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/data/store"
	"github.com/getai/ragstore/internal/document"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/pkg/logging"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	IngestedCount int32
	OnIngest      func(ctx context.Context, filePath string) (int, int, error)
}

func (m *MockRagService) Query(ctx context.Context, question string, maxResults int, threshold float32) (docModel.Answer, error) {
	return docModel.Answer{}, nil
}

func (m *MockRagService) IngestDocument(ctx context.Context, filePath string) (int, int, error) {
	atomic.AddInt32(&m.IngestedCount, 1)
	if m.OnIngest != nil {
		return m.OnIngest(ctx, filePath)
	}
	return 3, 3, nil
}

func (m *MockRagService) IngestDirectory(ctx context.Context, path string, recursive bool) (int, int, error) {
	return 0, 0, nil
}

func (m *MockRagService) Stats(ctx context.Context) (docModel.CorpusStats, error) {
	return docModel.CorpusStats{}, nil
}

func newTestDocumentService(buffer int) *document.Service {
	return document.InitService(document.ServiceConfig{
		JobChannel:        make(chan docModel.ProcessingJob, buffer),
		DispatcherChannel: make(chan bool, 10),
		Store:             store.NewInMemoryProcessingStore(),
	})
}

func createPendingRecord(t *testing.T, docSvc *document.Service, id string) {
	t.Helper()
	err := docSvc.Store.Create(context.Background(), docModel.ProcessingRecord{
		Id:       id,
		Filename: id + ".txt",
		FilePath: "/tmp/" + id + ".txt",
		Status:   docModel.StatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func waitForStatus(t *testing.T, docSvc *document.Service, id string, want docModel.ProcessingStatus) docModel.ProcessingRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		record, found := docSvc.Get(context.Background(), id)
		if found && record.Status == want {
			return record
		}
		time.Sleep(5 * time.Millisecond)
	}
	record, _ := docSvc.Get(context.Background(), id)
	t.Fatalf("record %s never reached %s, stuck at %s", id, want, record.Status)
	return docModel.ProcessingRecord{}
}

func TestWorkerPool_Flow(t *testing.T) {
	docSvc := newTestDocumentService(10)
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(docSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		docSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker runs job to COMPLETED with counts", func(t *testing.T) {
		createPendingRecord(t, docSvc, "job-ok")
		docSvc.JobChannel <- docModel.ProcessingJob{RecordId: "job-ok", Filename: "job-ok.txt", FilePath: "/tmp/job-ok.txt"}

		record := waitForStatus(t, docSvc, "job-ok", docModel.StatusCompleted)
		if record.ChunksProcessed != 3 || record.EmbeddingsStored != 3 {
			t.Errorf("counts not persisted: %+v", record)
		}
		if atomic.LoadInt32(&mockRag.IngestedCount) != 1 {
			t.Errorf("Expected 1 ingestion, got %d", mockRag.IngestedCount)
		}
	})

	t.Run("Record reads PROCESSING while ingestion runs", func(t *testing.T) {
		release := make(chan struct{})
		mockRag.OnIngest = func(ctx context.Context, filePath string) (int, int, error) {
			<-release
			return 3, 3, nil
		}
		defer func() { mockRag.OnIngest = nil }()

		createPendingRecord(t, docSvc, "job-slow")
		docSvc.JobChannel <- docModel.ProcessingJob{RecordId: "job-slow", Filename: "job-slow.txt", FilePath: "/tmp/job-slow.txt"}

		waitForStatus(t, docSvc, "job-slow", docModel.StatusProcessing)
		close(release)
		waitForStatus(t, docSvc, "job-slow", docModel.StatusCompleted)
	})

	t.Run("Failed ingestion lands on FAILED with message", func(t *testing.T) {
		mockRag.OnIngest = func(ctx context.Context, filePath string) (int, int, error) {
			return 5, 2, errors.New("qdrant unavailable")
		}
		createPendingRecord(t, docSvc, "job-bad")
		docSvc.JobChannel <- docModel.ProcessingJob{RecordId: "job-bad", Filename: "job-bad.txt", FilePath: "/tmp/job-bad.txt"}

		record := waitForStatus(t, docSvc, "job-bad", docModel.StatusFailed)
		if record.ErrorMessage == "" {
			t.Error("failure must record the error message")
		}
		if record.ChunksProcessed != 5 || record.EmbeddingsStored != 2 {
			t.Errorf("partial counts not persisted: %+v", record)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the full idle timeout")
	}
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 2)
	logger = logging.New("TestWorkerPool")
	docSvc := newTestDocumentService(0)
	InitServices(docSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	createWorker()
	time.Sleep(config.IdleWorkerTimeout)

	time.Sleep(100 * time.Millisecond)
	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}
}
