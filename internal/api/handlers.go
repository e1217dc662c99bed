package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"omiscribe/internal/audio"
	"omiscribe/internal/queue"
	"omiscribe/internal/stats"
	"omiscribe/internal/store"
	"omiscribe/internal/utils"
)

// maxUploadBytes caps a single direct upload (engine limit for one file)
const maxUploadBytes = 25 * 1024 * 1024

// rawStreamBitsPerSample and rawStreamChannels describe the PCM wearable
// devices emit: mono 16-bit.
const (
	rawStreamChannels      = 1
	rawStreamBitsPerSample = 16
)

// Handler carries the explicitly constructed collaborators the HTTP surface
// reads and writes through.
type Handler struct {
	queue        *queue.Queue
	store        *store.TranscriptStore
	stats        *stats.Aggregator
	batchSeconds int
}

// NewHandler wires the HTTP surface.
func NewHandler(q *queue.Queue, ts *store.TranscriptStore, agg *stats.Aggregator, batchSeconds int) *Handler {
	return &Handler{
		queue:        q,
		store:        ts,
		stats:        agg,
		batchSeconds: batchSeconds,
	}
}

// RegisterRoutes attaches all endpoints to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.healthCheck)
	r.POST("/audio", h.receiveAudio)
	r.POST("/audio/raw", h.receiveRawStream)
	r.GET("/transcript", h.getTranscript)
	r.GET("/transcripts/:uid", h.getTranscripts)
	r.GET("/stats", h.getStats)
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// receiveAudio handles direct audio file upload from a device or companion app
func (h *Handler) receiveAudio(c *gin.Context) {
	uid := c.Query("uid")
	if uid == "" {
		utils.Error(c, http.StatusBadRequest, "uid is required")
		return
	}

	file, err := c.FormFile("audio_file")
	if err != nil {
		// Try alternative field names
		if file, err = c.FormFile("audio"); err != nil {
			if file, err = c.FormFile("file"); err != nil {
				utils.Error(c, http.StatusBadRequest, "audio_file is required")
				return
			}
		}
	}

	if file.Size > maxUploadBytes {
		utils.Error(c, http.StatusBadRequest, "file size exceeds 25MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("[Ingest] Failed to open upload: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to read audio file")
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		log.Printf("[Ingest] Failed to read upload: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to read audio file")
		return
	}

	name, err := h.queue.Enqueue(content, queue.SourceUpload, uid, time.Now().Unix())
	if err != nil {
		log.Printf("[Ingest] Failed to queue audio from %s: %v", uid, err)
		utils.Error(c, http.StatusInternalServerError, "failed to queue audio")
		return
	}

	sizeMB := float64(len(content)) / (1024 * 1024)
	log.Printf("[Ingest] Received audio from %s: %s (%.2fMB)", uid, name, sizeMB)

	utils.Success(c, gin.H{
		"status":   "queued",
		"uid":      uid,
		"filename": name,
		"size_mb":  round2(sizeMB),
		"message":  fmt.Sprintf("Audio queued for processing. Will be transcribed within %d seconds.", h.batchSeconds),
	})
}

// receiveRawStream handles headerless PCM pushed by the low-level streaming
// path. The bytes get a WAV descriptor before queuing so downstream tooling
// can open them as a standard audio file.
func (h *Handler) receiveRawStream(c *gin.Context) {
	sampleRate := 0
	if s := c.Query("sample_rate"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid sample_rate")
			return
		}
		sampleRate = n
	}

	sampleRate, uid, err := queue.ValidateStreamParams(sampleRate, c.Query("uid"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes+1))
	if err != nil {
		log.Printf("[Ingest] Failed to read raw stream from %s: %v", uid, err)
		utils.Error(c, http.StatusInternalServerError, "failed to read audio data")
		return
	}
	if len(raw) == 0 {
		utils.Error(c, http.StatusBadRequest, "empty audio payload")
		return
	}
	if len(raw) > maxUploadBytes {
		utils.Error(c, http.StatusBadRequest, "audio payload exceeds 25MB limit")
		return
	}

	wav := audio.WrapPCM(raw, sampleRate, rawStreamChannels, rawStreamBitsPerSample)

	name, err := h.queue.Enqueue(wav, queue.SourceStream, uid, time.Now().Unix())
	if err != nil {
		log.Printf("[Ingest] Failed to queue raw stream from %s: %v", uid, err)
		utils.Error(c, http.StatusInternalServerError, "failed to queue audio")
		return
	}

	log.Printf("[Ingest] Received raw stream from %s: %s (%d PCM bytes at %dHz)", uid, name, len(raw), sampleRate)

	utils.Success(c, gin.H{
		"status":      "queued",
		"uid":         uid,
		"filename":    name,
		"sample_rate": sampleRate,
		"size_mb":     round2(float64(len(wav)) / (1024 * 1024)),
	})
}

// getTranscript returns a single transcript record by its storage key
func (h *Handler) getTranscript(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		utils.Error(c, http.StatusBadRequest, "key is required")
		return
	}

	rec, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		if err == store.ErrNotFound {
			utils.Error(c, http.StatusNotFound, "transcript not found")
			return
		}
		log.Printf("[API] Error fetching transcript %s: %v", key, err)
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve transcript")
		return
	}

	utils.Success(c, gin.H{"transcript": rec})
}

// getTranscripts returns up to limit transcripts for a user, newest first
func (h *Handler) getTranscripts(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		utils.Error(c, http.StatusBadRequest, "uid is required")
		return
	}

	limit := 10
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			utils.Error(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}

	records := h.store.ListForUser(c.Request.Context(), uid, limit)

	items := make([]gin.H, 0, len(records))
	for _, rec := range records {
		items = append(items, gin.H{
			"key":              rec.StorageKey,
			"text":             rec.TranscriptText,
			"filename":         rec.AudioFilename,
			"cost":             rec.CostUSD,
			"created_at":       rec.CreatedAt.Format(time.RFC3339),
			"duration_seconds": rec.DurationSeconds,
			"model":            rec.Model,
		})
	}

	utils.Success(c, gin.H{
		"uid":         uid,
		"count":       len(items),
		"transcripts": items,
	})
}

// getStats returns the usage report; month and year query parameters select a
// specific partition instead of the current-month summary
func (h *Handler) getStats(c *gin.Context) {
	monthStr := c.Query("month")
	yearStr := c.Query("year")

	if monthStr != "" || yearStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			utils.Error(c, http.StatusBadRequest, "invalid month")
			return
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 2000 {
			utils.Error(c, http.StatusBadRequest, "invalid year")
			return
		}
		monthly := h.stats.Monthly(c.Request.Context(), month, year)
		utils.Success(c, gin.H{"month_stats": monthly})
		return
	}

	report := h.stats.Current(c.Request.Context())
	utils.Success(c, gin.H{
		"current_month": report.CurrentMonth,
		"queue":         report.Queue,
		"config":        report.Config,
	})
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
