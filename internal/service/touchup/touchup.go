// Package touchup refines raw transcripts with a single generative text
// call. Failures are the caller's business to swallow; this package only
// reports them.
package touchup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Refiner corrects grammar and punctuation without changing meaning or
// speaker labels.
type Refiner interface {
	Refine(ctx context.Context, text, meetingType string) (string, error)
}

const instruction = "Task: Fix punctuation and grammar. Do not summarize. " +
	"Keep exact meaning. Preserve speaker labels exactly as written."

// Vertex implements Refiner against the Vertex AI generateContent REST
// endpoint, authenticated with an API key header.
type Vertex struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// Endpoint builds the regional generateContent URL for a model.
func Endpoint(region, projectID, model string) string {
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		region, projectID, region, model)
}

// New creates a Vertex refiner for the given endpoint.
func New(apiKey, endpoint string, timeout time.Duration) *Vertex {
	return &Vertex{
		apiKey:   apiKey,
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Refine makes exactly one generateContent call. No retries; a failed or
// empty response is an error and the caller falls back to the raw text.
func (v *Vertex) Refine(ctx context.Context, text, meetingType string) (string, error) {
	prompt := instruction
	if meetingType != "" {
		prompt += " Meeting type: " + meetingType + "."
	}
	prompt += " Text: \"" + text + "\""

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	reqBody.GenerationConfig.Temperature = 0.1

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", v.apiKey)

	resp, err := v.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("touchup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("touchup http %d: %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("touchup decode: %w", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("touchup returned no candidates")
	}

	refined := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if refined == "" {
		return "", fmt.Errorf("touchup returned empty text")
	}
	return refined, nil
}
