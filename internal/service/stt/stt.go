// Package stt defines the interfaces for speech-to-text providers.
package stt

import (
	"context"

	"meeting-transcription-service/internal/models"
)

// BatchRecognizer drives an asynchronous long-running recognition job.
// Submission is fire-and-forget; completion is observed by polling.
type BatchRecognizer interface {
	// Submit starts a batch job reading audio from audioURI and writing
	// result artifacts under outputURI. Returns the opaque operation ID.
	Submit(ctx context.Context, audioURI, outputURI string) (string, error)

	// Poll performs exactly one status check. done=false with a nil
	// error means the job is still running. A non-nil error is terminal:
	// either the job failed internally or the ID is unknown; the caller
	// must stop polling.
	Poll(ctx context.Context, operationID string) (done bool, err error)
}

// SyncResult is the outcome of a single synchronous transcription call.
type SyncResult struct {
	// Text is the plain transcript, used when no segments are returned.
	Text string
	// Segments carry per-speaker attribution when the provider diarizes.
	Segments []models.SpeakerSegment
}

// SyncRecognizer transcribes audio in one blocking call, with inline
// diarization where the provider supports it.
type SyncRecognizer interface {
	Transcribe(ctx context.Context, audio []byte, filename, contentType string) (*SyncResult, error)
}
