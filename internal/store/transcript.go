package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"path"
	"sort"
	"strings"
	"time"
)

const transcriptPrefix = "transcripts/"

// storageCostPerGB is the flat per-gigabyte-month storage rate used for the
// estimated storage cost in monthly stats.
const storageCostPerGB = 0.015

// TranscriptRecord is the durable output of one successful transcription.
// DurationSeconds is the wall-clock latency of the transcription call, not
// the audio length; the upstream contract persists it under this name.
type TranscriptRecord struct {
	UID             string    `json:"uid"`
	Timestamp       int64     `json:"timestamp"`
	AudioFilename   string    `json:"audio_filename"`
	TranscriptText  string    `json:"transcript_text"`
	DurationSeconds float64   `json:"duration_seconds"`
	CostUSD         float64   `json:"cost_usd"`
	CreatedAt       time.Time `json:"created_at"`
	ProcessedAt     time.Time `json:"processed_at"`
	FileSizeMB      float64   `json:"file_size_mb"`
	Model           string    `json:"model"`

	// Attached by Save; immutable afterward.
	SavedAt     time.Time `json:"saved_at"`
	Environment string    `json:"environment"`
	StorageKey  string    `json:"storage_key"`
}

// MonthlyStats aggregates one calendar month's partition
type MonthlyStats struct {
	Month          string  `json:"month"`
	TotalFiles     int     `json:"total_files"`
	TotalSizeMB    float64 `json:"total_size_mb"`
	TotalCostUSD   float64 `json:"total_cost_usd"`
	StorageCostUSD float64 `json:"storage_cost_usd"`
}

// TranscriptStore persists transcript records as self-contained JSON objects
// under time-partitioned keys. There is no secondary index: every listing
// operation works off the key scheme alone.
type TranscriptStore struct {
	objects     ObjectStore
	environment string
	now         func() time.Time
}

// NewTranscriptStore binds a transcript store to an object store. The
// environment tag is stamped into every record on save.
func NewTranscriptStore(objects ObjectStore, environment string) *TranscriptStore {
	return &TranscriptStore{
		objects:     objects,
		environment: environment,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Save writes the record under transcripts/<year>/<month>/<uid>_<save-epoch>.json.
// The partition derives from the save time, not the recording timestamp, so a
// transcript processed after a month boundary lands in the later partition.
func (s *TranscriptStore) Save(ctx context.Context, rec *TranscriptRecord) (string, error) {
	now := s.now()
	key := fmt.Sprintf("%s%d/%02d/%s_%d.json", transcriptPrefix, now.Year(), int(now.Month()), rec.UID, now.Unix())

	rec.SavedAt = now
	rec.Environment = s.environment
	rec.StorageKey = key

	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}

	if err := s.objects.Put(ctx, key, body, "application/json"); err != nil {
		return "", fmt.Errorf("failed to save transcript: %w", err)
	}

	log.Printf("[Store] Saved transcript: %s", key)
	return key, nil
}

// Get retrieves a single transcript by key. ErrNotFound passes through when
// the key does not exist.
func (s *TranscriptStore) Get(ctx context.Context, key string) (*TranscriptRecord, error) {
	body, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var rec TranscriptRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode transcript %s: %w", key, err)
	}
	return &rec, nil
}

// Delete removes a transcript record. Records are immutable; superseding one
// means deleting and re-creating it.
func (s *TranscriptStore) Delete(ctx context.Context, key string) error {
	if err := s.objects.Delete(ctx, key); err != nil {
		return err
	}
	log.Printf("[Store] Deleted transcript: %s", key)
	return nil
}

// ListForUser returns up to limit records for a uid, newest first by object
// last-modified time. There is no per-user index, so the whole transcripts/
// prefix is scanned with a best-effort early stop once limit keys match:
// "newest N" is only exact when the provider lists in a favorable order.
// Listing errors degrade to an empty result.
func (s *TranscriptStore) ListForUser(ctx context.Context, uid string, limit int) []*TranscriptRecord {
	var matches []ObjectInfo

	err := s.objects.Walk(ctx, transcriptPrefix, func(obj ObjectInfo) bool {
		if keyBelongsTo(obj.Key, uid) {
			matches = append(matches, obj)
		}
		return len(matches) < limit
	})
	if err != nil {
		log.Printf("[Store] Error listing transcripts for %s: %v", uid, err)
		return []*TranscriptRecord{}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Updated.After(matches[j].Updated)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	records := make([]*TranscriptRecord, 0, len(matches))
	for _, obj := range matches {
		rec, err := s.Get(ctx, obj.Key)
		if err != nil {
			log.Printf("[Store] Error fetching transcript %s: %v", obj.Key, err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// MonthStats walks one month's partition in full, summing object count, byte
// volume, and each record's persisted cost. Provider errors degrade to a
// zero-valued aggregate.
func (s *TranscriptStore) MonthStats(ctx context.Context, month, year int) MonthlyStats {
	stats := MonthlyStats{Month: fmt.Sprintf("%d-%02d", year, month)}
	prefix := fmt.Sprintf("%s%d/%02d/", transcriptPrefix, year, month)

	var totalBytes int64
	err := s.objects.Walk(ctx, prefix, func(obj ObjectInfo) bool {
		stats.TotalFiles++
		totalBytes += obj.Size

		rec, err := s.Get(ctx, obj.Key)
		if err != nil {
			log.Printf("[Store] Error reading cost from %s: %v", obj.Key, err)
			return true
		}
		stats.TotalCostUSD += rec.CostUSD
		return true
	})
	if err != nil {
		log.Printf("[Store] Error aggregating stats for %s: %v", stats.Month, err)
		return MonthlyStats{Month: stats.Month}
	}

	stats.TotalSizeMB = round(float64(totalBytes)/(1024*1024), 2)
	stats.TotalCostUSD = round(stats.TotalCostUSD, 4)
	stats.StorageCostUSD = round(float64(totalBytes)/(1024*1024*1024)*storageCostPerGB, 4)
	return stats
}

// keyBelongsTo reports whether a transcript key was written for uid. The key
// basename is <uid>_<epoch>.json; requiring a purely numeric suffix keeps
// "team" from matching keys owned by "team_alpha".
func keyBelongsTo(key, uid string) bool {
	base := path.Base(key)
	rest, ok := strings.CutPrefix(base, uid+"_")
	if !ok {
		return false
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok || rest == "" {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
