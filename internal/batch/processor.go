package batch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"omiscribe/internal/queue"
	"omiscribe/internal/store"
	"omiscribe/internal/stt"
)

// CostPerHour is the engine's per-hour transcription rate in USD
// (whisper-large-v3-turbo).
const CostPerHour = 0.04

// assumedAudioMinutes is the constant audio-length estimate used for cost
// accounting. Cost is not derived from the container's actual duration.
const assumedAudioMinutes = 2.0

// ItemResult summarizes one successfully processed queue item
type ItemResult struct {
	UID            string  `json:"uid"`
	Filename       string  `json:"filename"`
	Transcript     string  `json:"transcript"`
	CostUSD        float64 `json:"cost"`
	ProcessingTime float64 `json:"processing_time"`
	StorageKey     string  `json:"storage_key"`
}

// Processor drains the queue directory once per invocation, transcribing each
// item and persisting the result. Items are processed strictly sequentially;
// a failing item is logged and left queued for the next cycle.
type Processor struct {
	queue     *queue.Queue
	engine    stt.Engine
	store     *store.TranscriptStore
	maxSizeMB float64
	now       func() time.Time
}

// NewProcessor wires a processor from explicitly constructed collaborators.
func NewProcessor(q *queue.Queue, engine stt.Engine, ts *store.TranscriptStore, maxSizeMB int) *Processor {
	return &Processor{
		queue:     q,
		engine:    engine,
		store:     ts,
		maxSizeMB: float64(maxSizeMB),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessBatch runs one batch cycle over all currently pending items and
// returns the successes. Every failure mode short of process death leaves the
// source file in place for retry.
func (p *Processor) ProcessBatch(ctx context.Context) []ItemResult {
	results := []ItemResult{}
	runID := uuid.NewString()[:8]

	paths, err := p.queue.Pending()
	if err != nil {
		log.Printf("[Batch %s] Failed to list queue: %v", runID, err)
		return results
	}

	if len(paths) == 0 {
		log.Printf("[Batch %s] No audio files to process", runID)
		return results
	}

	log.Printf("[Batch %s] Processing %d audio files", runID, len(paths))

	for _, path := range paths {
		res, err := p.processItem(ctx, path)
		if err != nil {
			// Keep the file; it will be retried next cycle
			log.Printf("[Batch %s] Error processing %s: %v", runID, path, err)
			continue
		}
		if res != nil {
			results = append(results, *res)
			log.Printf("[Batch %s] Successfully processed %s, saved as %s", runID, res.Filename, res.StorageKey)
		}
	}

	return results
}

// processItem handles a single queue file. A (nil, nil) return means the item
// was deliberately skipped (oversize policy) and stays queued without counting
// as an error.
func (p *Processor) processItem(ctx context.Context, path string) (*ItemResult, error) {
	filename := filepath.Base(path)

	uid, timestamp, ok := queue.ParseName(filename)
	if !ok {
		uid = queue.UnknownUID
		timestamp = p.now().Unix()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat queue item: %w", err)
	}
	fileSizeMB := float64(info.Size()) / (1024 * 1024)

	if fileSizeMB > p.maxSizeMB {
		log.Printf("[Batch] File %s is too large (%.2fMB), skipping", filename, fileSizeMB)
		return nil, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue item: %w", err)
	}

	result, err := p.engine.Transcribe(ctx, filename, payload)
	if err != nil {
		return nil, err
	}

	cost := (assumedAudioMinutes / 60) * CostPerHour

	now := p.now()
	rec := &store.TranscriptRecord{
		UID:             uid,
		Timestamp:       timestamp,
		AudioFilename:   filename,
		TranscriptText:  result.Text,
		DurationSeconds: result.ProcessingTime.Seconds(),
		CostUSD:         cost,
		CreatedAt:       now,
		ProcessedAt:     now,
		FileSizeMB:      fileSizeMB,
		Model:           result.Model,
	}

	key, err := p.store.Save(ctx, rec)
	if err != nil {
		// Persistence failed: the audio bytes stay queued
		return nil, fmt.Errorf("failed to save transcript, keeping audio file: %w", err)
	}

	// Delete only after the store confirmed the write
	if err := p.queue.Remove(filename); err != nil {
		log.Printf("[Batch] Transcript %s persisted but queue item %s could not be removed: %v", key, filename, err)
	}

	return &ItemResult{
		UID:            uid,
		Filename:       filename,
		Transcript:     result.Text,
		CostUSD:        cost,
		ProcessingTime: result.ProcessingTime.Seconds(),
		StorageKey:     key,
	}, nil
}
