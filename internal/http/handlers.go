package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"meeting-transcription-service/internal/models"
	"meeting-transcription-service/internal/observability/logging"
	"meeting-transcription-service/internal/service/transcription"
)

// TranscriptionService is the surface the handlers drive. The pipeline
// implements it; tests substitute a scripted fake.
type TranscriptionService interface {
	Submit(ctx context.Context, audio []byte) (*models.TranscriptionJob, error)
	Poll(ctx context.Context, req models.PollRequest) (*models.PollResult, error)
	TranscribeSync(ctx context.Context, audio []byte, filename, contentType, meetingType string) (*models.SyncTranscript, error)
}

// Handlers serves the transcription API.
type Handlers struct {
	service   TranscriptionService
	maxUpload int64
	log       zerolog.Logger
}

// NewHandlers creates the API handlers. maxUpload bounds the multipart
// form size per request.
func NewHandlers(service TranscriptionService, maxUpload int64) *Handlers {
	return &Handlers{
		service:   service,
		maxUpload: maxUpload,
		log:       logging.WithComponent("http"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps pipeline error kinds onto HTTP statuses: missing
// client input is a 400, everything else a 500 carrying the wrapped
// upstream message.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, transcription.ErrMissingInput) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// readAudioPart pulls the "audio" multipart field into memory. A missing
// field is reported as missing input so it maps to a 400.
func (h *Handlers) readAudioPart(r *http.Request) ([]byte, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, nil, transcription.ErrMissingInput
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		return nil, nil, transcription.ErrMissingInput
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}
	return audio, header, nil
}

// SubmitTranscription handles POST /v1/transcriptions: ingest the
// uploaded audio, start the asynchronous recognition job, and return the
// identifiers the client echoes back on every status poll.
func (h *Handlers) SubmitTranscription(w http.ResponseWriter, r *http.Request) {
	audio, header, err := h.readAudioPart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info().Str("filename", header.Filename).Int("bytes", len(audio)).Msg("transcription upload received")

	job, err := h.service.Submit(r.Context(), audio)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// TranscriptionStatus handles GET /v1/transcriptions/status: one poll of
// the recognition job named by the query parameters. The server holds no
// job table; everything needed to continue arrives with the request.
func (h *Handlers) TranscriptionStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.PollRequest{
		ID:         q.Get("id"),
		StagingKey: q.Get("stagingKey"),
		Token:      q.Get("timestamp"),
	}

	res, err := h.service.Poll(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SubmitSyncTranscription handles POST /v1/transcriptions/sync: the
// blocking diarizing variant. Returns the finished speaker-attributed
// transcript in one round trip.
func (h *Handlers) SubmitSyncTranscription(w http.ResponseWriter, r *http.Request) {
	audio, header, err := h.readAudioPart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	meetingType := r.FormValue("meetingType")
	if meetingType == "" {
		h.writeError(w, fmt.Errorf("%w: meetingType is required", transcription.ErrMissingInput))
		return
	}

	contentType := header.Header.Get("Content-Type")
	res, err := h.service.TranscribeSync(r.Context(), audio, header.Filename, contentType, meetingType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
