// Package models defines the data structures for transcription jobs and results.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// JobState represents the client-observed state of a transcription job.
// It is recomputed from the recognition service on every poll and never
// persisted server-side.
type JobState int

const (
	// StateSubmitted - job accepted by the recognition service.
	StateSubmitted JobState = iota
	// StatePending - job reported as still running.
	StatePending
	// StateCompleted - job finished and results were extracted.
	StateCompleted
	// StateFailed - job reported a terminal error; polling must stop.
	StateFailed
)

// String returns the string representation of the state.
func (s JobState) String() string {
	switch s {
	case StateSubmitted:
		return "SUBMITTED"
	case StatePending:
		return "PENDING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (COMPLETED or FAILED).
func (s JobState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// TranscriptionJob is one in-flight or completed transcription attempt.
// The operation ID and storage locations are handed back to the client at
// submission time and echoed on every poll; the server keeps nothing.
type TranscriptionJob struct {
	// ID is the opaque operation identifier assigned by the recognition
	// service at submission time.
	ID string `json:"operationId"`
	// StagingKey is the object key of the uploaded canonical audio.
	StagingKey string `json:"stagingKey"`
	// Token is the uniqueness token the staging key and result prefix are
	// derived from. Exposed as "timestamp" for wire compatibility.
	Token string `json:"timestamp"`
	// State is client-observed only.
	State JobState `json:"-"`
}

// PollRequest carries the identifiers a client echoes back when polling.
type PollRequest struct {
	ID         string
	StagingKey string
	Token      string
}

// PollResult is the outcome of one poll request.
type PollResult struct {
	Completed bool   `json:"completed"`
	Text      string `json:"text,omitempty"`
	RawText   string `json:"rawText,omitempty"`
}

// SyncTranscript is the result of the synchronous diarizing variant.
type SyncTranscript struct {
	Completed   bool   `json:"completed"`
	Text        string `json:"text"`
	RawText     string `json:"rawText"`
	MeetingType string `json:"meetingType"`
}

// SpeakerSegment is one timed segment of a diarized transcript.
// Speaker is nil when the provider could not attribute the segment.
type SpeakerSegment struct {
	Speaker *string `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// UnmarshalJSON accepts both numeric and string speaker tags; providers
// disagree on the type.
func (s *SpeakerSegment) UnmarshalJSON(data []byte) error {
	var raw struct {
		Speaker json.RawMessage `json:"speaker"`
		Text    string          `json:"text"`
		Start   float64         `json:"start"`
		End     float64         `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Text = raw.Text
	s.Start = raw.Start
	s.End = raw.End
	s.Speaker = nil

	if len(raw.Speaker) == 0 || string(raw.Speaker) == "null" {
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw.Speaker, &asString); err == nil {
		s.Speaker = &asString
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw.Speaker, &asNumber); err == nil {
		tag := asNumber.String()
		s.Speaker = &tag
		return nil
	}
	return fmt.Errorf("speaker tag is neither string nor number: %s", raw.Speaker)
}

// SpeakerTag is a convenience constructor for tests and formatters.
func SpeakerTag(n int) *string {
	tag := strconv.Itoa(n)
	return &tag
}
