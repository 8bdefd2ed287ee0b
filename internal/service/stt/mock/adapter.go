// Package mock provides fake recognizers for testing without cloud
// credentials. The batch fake simulates the submit/poll lifecycle of a
// long-running recognition job; the sync fake returns scripted segments.
package mock

import (
	"context"
	"fmt"
	"sync"

	"meeting-transcription-service/internal/models"
	"meeting-transcription-service/internal/service/stt"
)

// BatchRecognizer implements stt.BatchRecognizer with scripted behavior.
type BatchRecognizer struct {
	mu      sync.Mutex
	counter int
	// polls tracks how many times each known operation was polled.
	polls map[string]int

	// PendingPolls is how many polls return done=false before the job
	// completes.
	PendingPolls int
	// SubmitErr, when set, fails every Submit call.
	SubmitErr error
	// JobErr, when set, is returned once the job reaches done.
	JobErr error
}

// NewBatch creates a batch fake whose jobs complete on the first poll.
func NewBatch() *BatchRecognizer {
	return &BatchRecognizer{polls: make(map[string]int)}
}

// Submit returns a generated operation ID, or SubmitErr when injected.
func (b *BatchRecognizer) Submit(ctx context.Context, audioURI, outputURI string) (string, error) {
	if b.SubmitErr != nil {
		return "", b.SubmitErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counter++
	id := fmt.Sprintf("operations/mock-%d", b.counter)
	b.polls[id] = 0
	return id, nil
}

// Poll reports pending for the first PendingPolls checks, then done.
// Unknown operation IDs return an error, never a false pending.
func (b *BatchRecognizer) Poll(ctx context.Context, operationID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.polls[operationID]
	if !ok {
		return false, fmt.Errorf("unknown operation %q", operationID)
	}
	b.polls[operationID] = n + 1

	if n < b.PendingPolls {
		return false, nil
	}
	if b.JobErr != nil {
		return false, b.JobErr
	}
	return true, nil
}

// SyncRecognizer implements stt.SyncRecognizer with a scripted result.
type SyncRecognizer struct {
	Result *stt.SyncResult
	Err    error

	mu    sync.Mutex
	calls int
}

// NewSync creates a sync fake returning two diarized segments.
func NewSync() *SyncRecognizer {
	return &SyncRecognizer{
		Result: &stt.SyncResult{
			Text: "Hi there",
			Segments: []models.SpeakerSegment{
				{Speaker: models.SpeakerTag(1), Text: "Hi"},
				{Speaker: nil, Text: "there"},
			},
		},
	}
}

// Transcribe returns the scripted result or error.
func (s *SyncRecognizer) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (*stt.SyncResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result, nil
}

// Calls returns how many times Transcribe was invoked.
func (s *SyncRecognizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
