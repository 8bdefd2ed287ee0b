// Package lemonfox provides a synchronous diarizing speech-to-text
// client for the Lemonfox transcription API.
package lemonfox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"meeting-transcription-service/internal/models"
	"meeting-transcription-service/internal/service/stt"
)

const defaultEndpoint = "https://api.lemonfox.ai/v1/audio/transcriptions"

// Client implements stt.SyncRecognizer against the Lemonfox REST API.
// The whole transcription happens in one blocking call; diarized
// segments come back inline.
type Client struct {
	apiKey   string
	endpoint string
	language string
	http     *http.Client
}

// New creates a Lemonfox client. An empty endpoint selects the public API.
func New(apiKey, endpoint, language string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		language: language,
		http:     &http.Client{Timeout: timeout},
	}
}

type response struct {
	Text     string                  `json:"text"`
	Segments []models.SpeakerSegment `json:"segments"`
}

// Transcribe sends the audio as multipart form data and decodes the
// verbose response with speaker labels.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (*stt.SyncResult, error) {
	if filename == "" {
		filename = "audio.mp3"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := mw.WriteField("language", c.language); err != nil {
		return nil, err
	}
	if err := mw.WriteField("speaker_labels", "true"); err != nil {
		return nil, err
	}

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lemonfox request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("lemonfox http %d: %s", resp.StatusCode, string(b))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("lemonfox decode: %w", err)
	}

	return &stt.SyncResult{Text: out.Text, Segments: out.Segments}, nil
}
