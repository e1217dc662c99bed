package stats

import (
	"context"
	"testing"
	"time"

	"omiscribe/internal/queue"
	"omiscribe/internal/store"
)

func testConfig() ConfigEcho {
	return ConfigEcho{
		BatchDurationSeconds: 120,
		MaxAudioSizeMB:       20,
		Model:                "whisper-large-v3-turbo",
		CostPerHourUSD:       0.04,
	}
}

func TestCurrentReport(t *testing.T) {
	ctx := context.Background()

	mem := store.NewMemoryStore()
	ts := store.NewTranscriptStore(mem, "test")

	q, err := queue.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create queue: %v", err)
	}
	if _, err := q.Enqueue([]byte("pending"), queue.SourceUpload, "alice", 1700000000); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	agg := NewAggregator(ts, q, testConfig())
	// Pin the clock so the elapsed-day extrapolation is deterministic, while
	// staying in the same month Save partitions into
	now := time.Now().UTC()
	agg.now = func() time.Time { return now }

	// Two records in the current month's partition, $0.0013 each
	for _, uid := range []string{"alice", "bob"} {
		rec := &store.TranscriptRecord{
			UID:            uid,
			Timestamp:      1700000000,
			AudioFilename:  "audio_" + uid + "_1700000000.wav",
			TranscriptText: "hi",
			CostUSD:        0.0013,
			CreatedAt:      now,
			ProcessedAt:    now,
		}
		if _, err := ts.Save(ctx, rec); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	report := agg.Current(ctx)

	if report.CurrentMonth.FilesProcessed != 2 {
		t.Errorf("Expected 2 files processed, got %d", report.CurrentMonth.FilesProcessed)
	}
	if report.CurrentMonth.TotalCostUSD != 0.0026 {
		t.Errorf("Expected total cost 0.0026, got %v", report.CurrentMonth.TotalCostUSD)
	}

	// Elapsed-day-to-date cost extrapolated linearly to a 30-day month
	want := 0.0026 * 30 / float64(now.Day())
	if report.CurrentMonth.EstimatedMonthlyCost != want {
		t.Errorf("Expected estimated monthly cost %v, got %v", want, report.CurrentMonth.EstimatedMonthlyCost)
	}

	if report.Queue.PendingFiles != 1 {
		t.Errorf("Expected 1 pending file, got %d", report.Queue.PendingFiles)
	}
	if report.Queue.NextBatchInSeconds != 120 {
		t.Errorf("Expected batch interval 120, got %d", report.Queue.NextBatchInSeconds)
	}
	if report.Config.Model != "whisper-large-v3-turbo" {
		t.Errorf("Expected model echo, got %q", report.Config.Model)
	}
}

func TestCurrentReportFailsSoft(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.FailWalk = true
	ts := store.NewTranscriptStore(mem, "test")

	q, err := queue.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create queue: %v", err)
	}

	agg := NewAggregator(ts, q, testConfig())
	report := agg.Current(context.Background())

	if report.CurrentMonth.FilesProcessed != 0 || report.CurrentMonth.TotalCostUSD != 0 {
		t.Errorf("Expected zero usage on provider failure, got %+v", report.CurrentMonth)
	}
	if report.CurrentMonth.EstimatedMonthlyCost != 0 {
		t.Errorf("Expected zero estimate on provider failure, got %v", report.CurrentMonth.EstimatedMonthlyCost)
	}
}

func TestMonthlyPassthrough(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	ts := store.NewTranscriptStore(mem, "test")
	q, err := queue.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create queue: %v", err)
	}

	agg := NewAggregator(ts, q, testConfig())
	monthly := agg.Monthly(ctx, 7, 2026)

	if monthly.Month != "2026-07" {
		t.Errorf("Expected month 2026-07, got %q", monthly.Month)
	}
	if monthly.TotalFiles != 0 {
		t.Errorf("Expected empty month, got %d files", monthly.TotalFiles)
	}
}
