package transcription

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"meeting-transcription-service/internal/observability/metrics"
	"meeting-transcription-service/internal/storage"
)

// Reaper removes the transient artifacts of one request. Local temp
// files are removed exactly once on every exit path; remote objects are
// deleted best-effort after successful extraction, with failures logged
// and counted but never propagated.
type Reaper struct {
	mu      sync.Mutex
	files   []string
	objects []string

	store   storage.ObjectStore
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewReaper creates a reaper deleting remote objects through store.
func NewReaper(store storage.ObjectStore, log zerolog.Logger, m *metrics.Metrics) *Reaper {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Reaper{store: store, log: log, metrics: m}
}

// TrackFile registers a local temp file for removal.
func (r *Reaper) TrackFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, path)
}

// TrackObject registers a remote object key for best-effort deletion.
func (r *Reaper) TrackObject(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = append(r.objects, key)
}

// RemoveLocal deletes every tracked temp file that still exists. The
// tracked list is cleared, so a second call is a no-op and no file is
// removed twice. Safe to defer alongside explicit calls.
func (r *Reaper) RemoveLocal() {
	r.mu.Lock()
	files := r.files
	r.files = nil
	r.mu.Unlock()

	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			r.log.Warn().Err(err).Str("path", path).Msg("failed to remove temp file")
			r.metrics.RecordCleanupError("local")
		}
	}
}

// RemoveRemote deletes every tracked remote object. Failures are logged
// and counted, never returned; a storage leak is preferable to failing
// a successful transcription on cleanup.
func (r *Reaper) RemoveRemote(ctx context.Context) {
	r.mu.Lock()
	objects := r.objects
	r.objects = nil
	r.mu.Unlock()

	for _, key := range objects {
		if err := r.store.Delete(ctx, key); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("failed to delete remote object")
			r.metrics.RecordCleanupError("remote")
		}
	}
}
