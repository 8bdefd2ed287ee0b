// Package google provides a Google Cloud Speech-to-Text v2 batch
// recognition adapter.
package google

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv2"
	"cloud.google.com/go/speech/apiv2/speechpb"
	"google.golang.org/api/option"
)

// Config holds the static recognition settings. They are fixed per
// deployment so job behavior stays deterministic.
type Config struct {
	ProjectID     string
	Region        string
	Model         string
	LanguageCodes []string
	MinSpeakers   int
	MaxSpeakers   int
}

// Adapter implements stt.BatchRecognizer using Speech v2 BatchRecognize.
type Adapter struct {
	client *speech.Client
	cfg    Config
}

// New creates a new batch recognition adapter against the regional
// endpoint. Requires GOOGLE_APPLICATION_CREDENTIALS or equivalent.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	client, err := speech.NewClient(ctx,
		option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:443", cfg.Region)))
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Adapter{client: client, cfg: cfg}, nil
}

// buildRequest assembles the BatchRecognize request from the static
// config and the per-job URIs.
func (a *Adapter) buildRequest(audioURI, outputURI string) *speechpb.BatchRecognizeRequest {
	return &speechpb.BatchRecognizeRequest{
		Recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_",
			a.cfg.ProjectID, a.cfg.Region),
		Config: &speechpb.RecognitionConfig{
			DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
				AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
			},
			Model:         a.cfg.Model,
			LanguageCodes: a.cfg.LanguageCodes,
			Features: &speechpb.RecognitionFeatures{
				EnableAutomaticPunctuation: true,
				DiarizationConfig: &speechpb.SpeakerDiarizationConfig{
					MinSpeakerCount: int32(a.cfg.MinSpeakers),
					MaxSpeakerCount: int32(a.cfg.MaxSpeakers),
				},
			},
		},
		Files: []*speechpb.BatchRecognizeFileMetadata{
			{
				AudioSource: &speechpb.BatchRecognizeFileMetadata_Uri{
					Uri: audioURI,
				},
			},
		},
		RecognitionOutputConfig: &speechpb.RecognitionOutputConfig{
			Output: &speechpb.RecognitionOutputConfig_GcsOutputConfig{
				GcsOutputConfig: &speechpb.GcsOutputConfig{Uri: outputURI},
			},
		},
	}
}

// Submit starts a batch recognition job. It does not block for
// completion; the returned operation name is the client's poll handle.
func (a *Adapter) Submit(ctx context.Context, audioURI, outputURI string) (string, error) {
	op, err := a.client.BatchRecognize(ctx, a.buildRequest(audioURI, outputURI))
	if err != nil {
		return "", fmt.Errorf("batch recognize: %w", err)
	}
	return op.Name(), nil
}

// Poll rehydrates the operation from its name and performs one status
// check. Unknown operation names and internal job errors both surface
// as errors, never as a false "pending".
func (a *Adapter) Poll(ctx context.Context, operationID string) (bool, error) {
	op := a.client.BatchRecognizeOperation(operationID)
	if _, err := op.Poll(ctx); err != nil {
		return false, fmt.Errorf("poll %s: %w", operationID, err)
	}
	return op.Done(), nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.client.Close()
}
