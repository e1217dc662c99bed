package queue

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		uid       string
		timestamp int64
	}{
		{"simple uid", SourceUpload, "alice", 1700000000},
		{"uid with underscore", SourceUpload, "team_alpha", 1700000001},
		{"uid with many underscores", SourceStream, "a_b_c_d", 1700000002},
		{"numeric uid", SourceUpload, "12345", 1700000003},
		{"stream source", SourceStream, "bob", 1700000004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeName(tt.source, tt.uid, tt.timestamp)

			uid, ts, ok := ParseName(encoded)
			if !ok {
				t.Fatalf("ParseName(%q) reported non-conforming name", encoded)
			}
			if uid != tt.uid {
				t.Errorf("Expected uid %q, got %q", tt.uid, uid)
			}
			if ts != tt.timestamp {
				t.Errorf("Expected timestamp %d, got %d", tt.timestamp, ts)
			}
		})
	}
}

func TestParseNameNonConforming(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"wrong source token", "upload_alice_1700000000.wav"},
		{"missing timestamp", "audio_alice.wav"},
		{"non-numeric timestamp", "audio_alice_notatime.wav"},
		{"empty uid", "audio__1700000000.wav"},
		{"bare name", "recording.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := ParseName(tt.filename); ok {
				t.Errorf("Expected %q to be rejected", tt.filename)
			}
		})
	}
}

func TestParseNameExtraUnderscore(t *testing.T) {
	// A uid containing the separator must be recovered whole, not truncated
	// at the first underscore.
	uid, ts, ok := ParseName("audio_team_alpha_1700000001.wav")
	if !ok {
		t.Fatal("Expected name to parse")
	}
	if uid != "team_alpha" {
		t.Errorf("Expected uid team_alpha, got %q", uid)
	}
	if ts != 1700000001 {
		t.Errorf("Expected timestamp 1700000001, got %d", ts)
	}
}

func TestEnqueueAndPending(t *testing.T) {
	q, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	payload := []byte("fake wav bytes")
	name, err := q.Enqueue(payload, SourceUpload, "alice", 1700000000)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if name != "audio_alice_1700000000.wav" {
		t.Errorf("Unexpected item name %q", name)
	}

	pending, err := q.Pending()
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending item, got %d", len(pending))
	}

	got, err := os.ReadFile(pending[0])
	if err != nil {
		t.Fatalf("Failed to read queued item: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("Queued payload does not match enqueued bytes")
	}

	if q.Depth() != 1 {
		t.Errorf("Expected depth 1, got %d", q.Depth())
	}
}

func TestEnqueueLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	q, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := q.Enqueue([]byte("data"), SourceStream, "bob", 1700000005); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected exactly 1 file in queue dir, got %d", len(entries))
	}
}

func TestRemove(t *testing.T) {
	q, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	name, err := q.Enqueue([]byte("data"), SourceUpload, "alice", 1700000000)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if err := q.Remove(name); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if q.Depth() != 0 {
		t.Errorf("Expected empty queue after Remove, got depth %d", q.Depth())
	}

	// Remove also accepts a full path as returned by Pending
	name, _ = q.Enqueue([]byte("data"), SourceUpload, "alice", 1700000001)
	if err := q.Remove(filepath.Join(q.Root(), name)); err != nil {
		t.Fatalf("Remove by path failed: %v", err)
	}
}

func TestValidateStreamParams(t *testing.T) {
	// Missing uid is a hard error
	if _, _, err := ValidateStreamParams(16000, ""); err == nil {
		t.Error("Expected error for missing uid")
	}

	// Supported rates pass through
	for _, rate := range []int{8000, 16000, 22050, 44100, 48000} {
		got, uid, err := ValidateStreamParams(rate, "alice")
		if err != nil {
			t.Fatalf("ValidateStreamParams(%d) failed: %v", rate, err)
		}
		if got != rate {
			t.Errorf("Expected rate %d to pass through, got %d", rate, got)
		}
		if uid != "alice" {
			t.Errorf("Expected uid alice, got %q", uid)
		}
	}

	// Unsupported rates are silently coerced, not rejected
	for _, rate := range []int{11025, 96000, -1, 7999} {
		got, _, err := ValidateStreamParams(rate, "alice")
		if err != nil {
			t.Fatalf("Expected no error for rate %d, got %v", rate, err)
		}
		if got != DefaultSampleRate {
			t.Errorf("Expected rate %d to coerce to %d, got %d", rate, DefaultSampleRate, got)
		}
	}

	// Zero means unspecified and takes the default
	got, _, err := ValidateStreamParams(0, "alice")
	if err != nil {
		t.Fatalf("ValidateStreamParams(0) failed: %v", err)
	}
	if got != DefaultSampleRate {
		t.Errorf("Expected default rate %d, got %d", DefaultSampleRate, got)
	}
}
