package stats

import (
	"context"
	"time"

	"omiscribe/internal/queue"
	"omiscribe/internal/store"
)

// MonthUsage is the current-month cost summary exposed by the stats endpoint
type MonthUsage struct {
	FilesProcessed       int     `json:"files_processed"`
	TotalSizeMB          float64 `json:"total_size_mb"`
	TotalCostUSD         float64 `json:"total_cost_usd"`
	StorageCostUSD       float64 `json:"storage_cost_usd"`
	EstimatedMonthlyCost float64 `json:"estimated_monthly_cost"`
}

// QueueStatus reports the live queue backlog
type QueueStatus struct {
	PendingFiles       int `json:"pending_files"`
	NextBatchInSeconds int `json:"next_batch_in_seconds"`
}

// ConfigEcho mirrors the static processing parameters back to clients
type ConfigEcho struct {
	BatchDurationSeconds int     `json:"batch_duration_seconds"`
	MaxAudioSizeMB       int     `json:"max_audio_size_mb"`
	Model                string  `json:"model"`
	CostPerHourUSD       float64 `json:"cost_per_hour_usd"`
}

// Report combines month usage, queue state, and the processing parameters
type Report struct {
	CurrentMonth MonthUsage  `json:"current_month"`
	Queue        QueueStatus `json:"queue"`
	Config       ConfigEcho  `json:"config"`
}

// Aggregator composes transcript-store month aggregation with the live queue
// depth. It owns no state of its own.
type Aggregator struct {
	store  *store.TranscriptStore
	queue  *queue.Queue
	config ConfigEcho
	now    func() time.Time
}

// NewAggregator builds an aggregator over the given store and queue.
func NewAggregator(ts *store.TranscriptStore, q *queue.Queue, cfg ConfigEcho) *Aggregator {
	return &Aggregator{
		store:  ts,
		queue:  q,
		config: cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Current aggregates the current UTC month and extrapolates the
// elapsed-day-to-date cost linearly to a 30-day month. The day-of-month can
// never be zero, but the division is guarded anyway.
func (a *Aggregator) Current(ctx context.Context) Report {
	now := a.now()
	monthly := a.store.MonthStats(ctx, int(now.Month()), now.Year())

	estimated := 0.0
	if day := now.Day(); day > 0 {
		estimated = monthly.TotalCostUSD * 30 / float64(day)
	}

	return Report{
		CurrentMonth: MonthUsage{
			FilesProcessed:       monthly.TotalFiles,
			TotalSizeMB:          monthly.TotalSizeMB,
			TotalCostUSD:         monthly.TotalCostUSD,
			StorageCostUSD:       monthly.StorageCostUSD,
			EstimatedMonthlyCost: estimated,
		},
		Queue: QueueStatus{
			PendingFiles:       a.queue.Depth(),
			NextBatchInSeconds: a.config.BatchDurationSeconds,
		},
		Config: a.config,
	}
}

// Monthly exposes one named month's aggregate for reporting endpoints.
func (a *Aggregator) Monthly(ctx context.Context, month, year int) store.MonthlyStats {
	return a.store.MonthStats(ctx, month, year)
}
