package queue

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Ingestion sources encoded as the first filename token. Direct uploads and
// reconstructed raw streams share the queue but keep distinct prefixes.
const (
	SourceUpload = "audio"
	SourceStream = "stream"
)

// Ext is the file extension of every queued item.
const Ext = ".wav"

// UnknownUID is the sentinel owner for items whose filename does not conform
// to the <source>_<uid>_<timestamp> scheme.
const UnknownUID = "unknown"

// validSampleRates are the rates wearable firmware is known to emit. Anything
// else is coerced to DefaultSampleRate rather than rejected.
var validSampleRates = map[int]bool{
	8000:  true,
	16000: true,
	22050: true,
	44100: true,
	48000: true,
}

// DefaultSampleRate is the rate assumed for wearable devices.
const DefaultSampleRate = 16000

// Queue is a file-per-item staging area. All item metadata lives in the
// filename; there is no side store.
type Queue struct {
	root string
}

// New creates the queue root directory if needed and returns a Queue bound
// to it.
func New(root string) (*Queue, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create queue directory: %w", err)
	}
	return &Queue{root: root}, nil
}

// Root returns the queue directory path.
func (q *Queue) Root() string {
	return q.root
}

// Enqueue stages a payload under <source>_<uid>_<timestamp>.wav. The write is
// atomic: the payload lands in a temp file first and is renamed into place so
// the batch processor never sees a partial item. Two enqueues for the same uid
// within the same second collide; accepted at this cadence.
func (q *Queue) Enqueue(payload []byte, source, uid string, timestamp int64) (string, error) {
	name := EncodeName(source, uid, timestamp)
	dst := filepath.Join(q.root, name)

	tmp, err := os.CreateTemp(q.root, ".enqueue-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to stage queue item: %w", err)
	}

	return name, nil
}

// Pending lists the queued item paths. Ordering is filesystem-dependent and
// callers must not rely on it.
func (q *Queue) Pending() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(q.root, "*"+Ext))
	if err != nil {
		return nil, fmt.Errorf("failed to list queue directory: %w", err)
	}
	return paths, nil
}

// Depth returns the number of items currently queued.
func (q *Queue) Depth() int {
	paths, err := q.Pending()
	if err != nil {
		log.Printf("[Queue] Failed to count pending items: %v", err)
		return 0
	}
	return len(paths)
}

// Remove deletes a consumed item.
func (q *Queue) Remove(name string) error {
	return os.Remove(filepath.Join(q.root, filepath.Base(name)))
}

// EncodeName builds the queue filename for an item.
func EncodeName(source, uid string, timestamp int64) string {
	return fmt.Sprintf("%s_%s_%d%s", source, uid, timestamp, Ext)
}

// ParseName recovers (uid, timestamp) from a queue filename. The uid may
// itself contain underscores, so everything between the source token and the
// trailing timestamp token is rejoined. ok is false for names that do not
// conform; callers fall back to UnknownUID and the current time.
func ParseName(name string) (uid string, timestamp int64, ok bool) {
	base := strings.TrimSuffix(filepath.Base(name), Ext)
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return "", 0, false
	}
	if parts[0] != SourceUpload && parts[0] != SourceStream {
		return "", 0, false
	}
	ts, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	uid = strings.Join(parts[1:len(parts)-1], "_")
	if uid == "" {
		return "", 0, false
	}
	return uid, ts, true
}

// ValidateStreamParams checks raw-stream submission parameters. A missing uid
// is a hard error; an unsupported sample rate falls back to the default.
func ValidateStreamParams(sampleRate int, uid string) (int, string, error) {
	if uid == "" {
		return 0, "", fmt.Errorf("user ID (uid) is required")
	}

	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	if !validSampleRates[sampleRate] {
		log.Printf("[Queue] Unsupported sample rate %d, falling back to %d", sampleRate, DefaultSampleRate)
		sampleRate = DefaultSampleRate
	}

	return sampleRate, uid, nil
}
