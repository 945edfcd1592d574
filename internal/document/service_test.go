package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/data/store"
	"github.com/getai/ragstore/internal/domain/docModel"
)

func newTestService() *Service {
	return InitService(ServiceConfig{
		JobChannel:        make(chan docModel.ProcessingJob, config.BufferLimit),
		DispatcherChannel: make(chan bool, 1),
		Store:             store.NewInMemoryProcessingStore(),
	})
}

func writeTempFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateProcessingRecord(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	path := writeTempFile(t, "report.txt", "quarterly numbers")

	record, err := svc.CreateProcessingRecord(ctx, "report.txt", path)
	if err != nil {
		t.Fatalf("CreateProcessingRecord failed: %v", err)
	}
	if record.Id == "" || record.Status != docModel.StatusPending {
		t.Errorf("unexpected record: %+v", record)
	}
	if record.ContentHash == "" {
		t.Error("record must carry the content hash")
	}

	stored, found := svc.Get(ctx, record.Id)
	if !found || stored.Filename != "report.txt" {
		t.Errorf("record not persisted: %+v found=%v", stored, found)
	}
}

func TestCreateProcessingRecord_FilenameDuplicate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	path := writeTempFile(t, "same.txt", "content a")

	first, err := svc.CreateProcessingRecord(ctx, "same.txt", path)
	if err != nil {
		t.Fatal(err)
	}

	other := writeTempFile(t, "same.txt", "content b")
	_, err = svc.CreateProcessingRecord(ctx, "same.txt", other)

	var dup *docModel.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.ExistingId != first.Id {
		t.Errorf("duplicate points at %q, want %q", dup.ExistingId, first.Id)
	}
}

func TestCreateProcessingRecord_ContentDuplicate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	pathA := writeTempFile(t, "original.txt", "identical bytes")
	pathB := writeTempFile(t, "renamed.txt", "identical bytes")

	first, err := svc.CreateProcessingRecord(ctx, "original.txt", pathA)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.CreateProcessingRecord(ctx, "renamed.txt", pathB)
	var dup *docModel.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError for identical content, got %v", err)
	}
	if dup.ExistingId != first.Id || dup.Filename != "original.txt" {
		t.Errorf("unexpected duplicate details: %+v", dup)
	}
}

func TestCreateProcessingRecord_MissingFile(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateProcessingRecord(context.Background(), "ghost.txt", "/nonexistent/ghost.txt")
	if err == nil {
		t.Fatal("expected error for unreadable file")
	}
	if errors.Is(err, docModel.ErrDuplicateDocument) {
		t.Error("unreadable file must not classify as duplicate")
	}
}

func TestEnqueuePushesJob(t *testing.T) {
	svc := newTestService()
	record := docModel.ProcessingRecord{Id: "rec-1", Filename: "doc.txt", FilePath: "/tmp/doc.txt"}

	svc.Enqueue(record, "trace-1")

	select {
	case job := <-svc.JobChannel:
		if job.RecordId != "rec-1" || job.Filename != "doc.txt" || job.TraceId != "trace-1" {
			t.Errorf("unexpected job: %+v", job)
		}
	default:
		t.Fatal("no job queued")
	}
}

func TestRetryFailed_OnlyRequeuesFailed(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	failedPath := writeTempFile(t, "failed.txt", "aaa")
	donePath := writeTempFile(t, "done.txt", "bbb")

	failed, err := svc.CreateProcessingRecord(ctx, "failed.txt", failedPath)
	if err != nil {
		t.Fatal(err)
	}
	done, err := svc.CreateProcessingRecord(ctx, "done.txt", donePath)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.UpdateStatus(ctx, failed.Id, docModel.StatusFailed, docModel.StatusUpdate{ErrorMessage: "boom"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdateStatus(ctx, done.Id, docModel.StatusCompleted, docModel.StatusUpdate{ChunksProcessed: 2, EmbeddingsStored: 2}); err != nil {
		t.Fatal(err)
	}

	retried, err := svc.RetryFailed(ctx, "trace-retry")
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if len(retried) != 1 || retried[0].Id != failed.Id {
		t.Fatalf("retried %d records, want just the failed one", len(retried))
	}

	job := <-svc.JobChannel
	if job.RecordId != failed.Id {
		t.Errorf("queued job for %q, want %q", job.RecordId, failed.Id)
	}

	record, _ := svc.Get(ctx, failed.Id)
	if record.Status != docModel.StatusPending {
		t.Errorf("record status %q, want PENDING after retry", record.Status)
	}

	untouched, _ := svc.Get(ctx, done.Id)
	if untouched.Status != docModel.StatusCompleted {
		t.Errorf("completed record must not be touched, got %q", untouched.Status)
	}
}
