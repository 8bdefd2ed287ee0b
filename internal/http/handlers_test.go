package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"meeting-transcription-service/internal/models"
	"meeting-transcription-service/internal/service/transcription"
)

// fakeService scripts the pipeline surface for handler tests.
type fakeService struct {
	job     *models.TranscriptionJob
	poll    *models.PollResult
	syncRes *models.SyncTranscript
	err     error

	lastPoll models.PollRequest
	lastSync struct {
		filename, contentType, meetingType string
	}
}

func (f *fakeService) Submit(ctx context.Context, audio []byte) (*models.TranscriptionJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.job, nil
}

func (f *fakeService) Poll(ctx context.Context, req models.PollRequest) (*models.PollResult, error) {
	f.lastPoll = req
	if f.err != nil {
		return nil, f.err
	}
	return f.poll, nil
}

func (f *fakeService) TranscribeSync(ctx context.Context, audio []byte, filename, contentType, meetingType string) (*models.SyncTranscript, error) {
	f.lastSync.filename = filename
	f.lastSync.contentType = contentType
	f.lastSync.meetingType = meetingType
	if f.err != nil {
		return nil, f.err
	}
	return f.syncRes, nil
}

func newTestRouter(svc TranscriptionService) http.Handler {
	return NewRouter(NewHandlers(svc, 16*1024*1024))
}

// multipartBody builds a form with an optional audio file part and extra
// string fields.
func multipartBody(t *testing.T, withAudio bool, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if withAudio {
		part, err := mw.CreateFormFile("audio", "meeting.mp3")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("fake-audio-bytes")); err != nil {
			t.Fatal(err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return body, mw.FormDataContentType()
}

func TestSubmitTranscription(t *testing.T) {
	svc := &fakeService{job: &models.TranscriptionJob{
		ID:         "operations/abc",
		StagingKey: "transcription/123-deadbeef.wav",
		Token:      "123-deadbeef",
	}}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, true, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["operationId"] != "operations/abc" {
		t.Errorf("operationId = %q", got["operationId"])
	}
	if got["stagingKey"] != "transcription/123-deadbeef.wav" {
		t.Errorf("stagingKey = %q", got["stagingKey"])
	}
	if got["timestamp"] != "123-deadbeef" {
		t.Errorf("timestamp = %q", got["timestamp"])
	}
}

func TestSubmitTranscription_MissingAudio(t *testing.T) {
	router := newTestRouter(&fakeService{})

	body, contentType := multipartBody(t, false, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing input", transcription.ErrMissingInput, http.StatusBadRequest},
		{"transcode", transcription.ErrTranscodeFailed, http.StatusInternalServerError},
		{"staging", transcription.ErrStagingFailed, http.StatusInternalServerError},
		{"submission", transcription.ErrSubmissionFailed, http.StatusInternalServerError},
		{"recognition", transcription.ErrRecognitionFailed, http.StatusInternalServerError},
		{"empty result", transcription.ErrEmptyResult, http.StatusInternalServerError},
		{"timeout", transcription.ErrTimeout, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeService{err: tt.err})

			body, contentType := multipartBody(t, true, nil)
			req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var got map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if got["error"] == "" {
				t.Error("error body missing error field")
			}
		})
	}
}

func TestTranscriptionStatus(t *testing.T) {
	svc := &fakeService{poll: &models.PollResult{Completed: true, Text: "done text", RawText: "raw"}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/transcriptions/status?id=operations%2Fabc&stagingKey=transcription%2Fx.wav&timestamp=123-deadbeef", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	want := models.PollRequest{ID: "operations/abc", StagingKey: "transcription/x.wav", Token: "123-deadbeef"}
	if svc.lastPoll != want {
		t.Errorf("poll request = %+v, want %+v", svc.lastPoll, want)
	}
	var got models.PollResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Completed || got.Text != "done text" {
		t.Errorf("result = %+v", got)
	}
}

func TestTranscriptionStatus_Pending(t *testing.T) {
	router := newTestRouter(&fakeService{poll: &models.PollResult{Completed: false}})

	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/status?id=operations%2Fabc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// Pending responses omit text fields entirely.
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["completed"] != false {
		t.Errorf("completed = %v, want false", got["completed"])
	}
	if _, present := got["text"]; present {
		t.Error("pending response carries a text field")
	}
}

func TestSubmitSyncTranscription(t *testing.T) {
	svc := &fakeService{syncRes: &models.SyncTranscript{
		Completed:   true,
		Text:        "Speaker 1: Hi",
		RawText:     "Speaker 1: Hi",
		MeetingType: "Standup",
	}}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, true, map[string]string{"meetingType": "Standup"})
	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/sync", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastSync.meetingType != "Standup" {
		t.Errorf("meetingType passed = %q, want Standup", svc.lastSync.meetingType)
	}
	if svc.lastSync.filename != "meeting.mp3" {
		t.Errorf("filename passed = %q, want meeting.mp3", svc.lastSync.filename)
	}
}

func TestSubmitSyncTranscription_MissingMeetingType(t *testing.T) {
	router := newTestRouter(&fakeService{})

	body, contentType := multipartBody(t, true, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/sync", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(&fakeService{})

	for _, path := range []string{"/v1/liveness", "/v1/readiness"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
