package transcription

import (
	"context"
	"errors"
	"testing"
	"time"

	storagemock "meeting-transcription-service/internal/storage/mock"
)

func extractionPipeline(store *storagemock.Store) *Pipeline {
	return New(Deps{Store: store}, Config{
		ResultsPrefix:   "results/",
		ResultGraceWait: 10 * time.Millisecond,
		CallTimeout:     time.Second,
	})
}

func TestExtractFragments_PrimaryPath(t *testing.T) {
	doc := []byte(`{
		"results": [
			{"alternatives": [{"transcript": "hello world", "confidence": 0.9}]},
			{"alternatives": [{"transcript": "second segment"}]},
			{"alternatives": []},
			{"languageCode": "en-IN"}
		]
	}`)

	frags, usedFallback, err := extractFragments(doc)
	if err != nil {
		t.Fatalf("extractFragments() error = %v", err)
	}
	if usedFallback {
		t.Error("expected primary path, fallback scan was used")
	}
	if len(frags) != 2 || frags[0] != "hello world" || frags[1] != "second segment" {
		t.Errorf("fragments = %v, want [hello world, second segment]", frags)
	}
}

func TestExtractFragments_NestedResults(t *testing.T) {
	doc := []byte(`{
		"results": {
			"results": [
				{"alternatives": [{"transcript": "nested shape"}]}
			]
		}
	}`)

	frags, usedFallback, err := extractFragments(doc)
	if err != nil {
		t.Fatalf("extractFragments() error = %v", err)
	}
	if usedFallback {
		t.Error("nested results shape should use the primary path")
	}
	if len(frags) != 1 || frags[0] != "nested shape" {
		t.Errorf("fragments = %v, want [nested shape]", frags)
	}
}

func TestExtractFragments_FallbackScan(t *testing.T) {
	// No segment array at either expected location: transcripts live
	// under unexpected nesting and must be found by the full scan.
	doc := []byte(`{
		"metadata": {"totalBilledDuration": "12s"},
		"inlineResult": {
			"transcript": {
				"chunks": [
					{"transcript": "found me"},
					{"inner": [{"transcript": "me too"}]}
				]
			}
		}
	}`)

	frags, usedFallback, err := extractFragments(doc)
	if err != nil {
		t.Fatalf("extractFragments() error = %v", err)
	}
	if !usedFallback {
		t.Error("expected fallback scan for unknown document shape")
	}
	if len(frags) != 2 || frags[0] != "found me" || frags[1] != "me too" {
		t.Errorf("fragments = %v, want [found me, me too]", frags)
	}
}

func TestExtractFragments_TranscriptMapIsLeaf(t *testing.T) {
	// A map carrying a "transcript" string is a leaf: siblings of the
	// transcript field must not be descended into.
	doc := []byte(`{
		"chunk": {
			"transcript": "outer",
			"detail": {"transcript": "inner must be ignored"}
		}
	}`)

	frags, usedFallback, err := extractFragments(doc)
	if err != nil {
		t.Fatalf("extractFragments() error = %v", err)
	}
	if !usedFallback {
		t.Error("expected fallback scan")
	}
	if len(frags) != 1 || frags[0] != "outer" {
		t.Errorf("fragments = %v, want [outer]", frags)
	}
}

func TestExtractFragments_MalformedJSON(t *testing.T) {
	if _, _, err := extractFragments([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestCollectResults_DedupAcrossArtifacts(t *testing.T) {
	store := storagemock.New()
	store.Seed("results/job-1/a.json", []byte(`{"results": [
		{"alternatives": [{"transcript": "alpha"}]},
		{"alternatives": [{"transcript": "beta"}]}
	]}`))
	store.Seed("results/job-1/b.json", []byte(`{"results": [
		{"alternatives": [{"transcript": "beta"}]},
		{"alternatives": [{"transcript": "gamma"}]}
	]}`))
	store.Seed("results/job-1/manifest.txt", []byte("not a result"))

	p := extractionPipeline(store)
	text, keys, err := p.collectResults(context.Background(), "results/job-1/")
	if err != nil {
		t.Fatalf("collectResults() error = %v", err)
	}
	if text != "alpha beta gamma" {
		t.Errorf("text = %q, want %q", text, "alpha beta gamma")
	}
	// All keys under the prefix are returned for cleanup, including the
	// non-JSON one.
	if len(keys) != 3 {
		t.Errorf("artifact keys = %v, want 3 entries", keys)
	}
}

func TestCollectResults_EmptyPrefixAfterRelist(t *testing.T) {
	store := storagemock.New()
	p := extractionPipeline(store)

	start := time.Now()
	_, _, err := p.collectResults(context.Background(), "results/ghost/")
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("error = %v, want ErrEmptyResult", err)
	}
	if elapsed := time.Since(start); elapsed < p.cfg.ResultGraceWait {
		t.Errorf("returned after %v, expected a grace wait of at least %v", elapsed, p.cfg.ResultGraceWait)
	}
}

func TestCollectResults_RelistFindsLateArtifact(t *testing.T) {
	store := storagemock.New()
	p := extractionPipeline(store)

	// Simulate a late flush: the artifact appears during the grace wait.
	go func() {
		time.Sleep(2 * time.Millisecond)
		store.Seed("results/late/out.json", []byte(`{"results": [
			{"alternatives": [{"transcript": "late arrival"}]}
		]}`))
	}()

	text, _, err := p.collectResults(context.Background(), "results/late/")
	if err != nil {
		t.Fatalf("collectResults() error = %v", err)
	}
	if text != "late arrival" {
		t.Errorf("text = %q, want %q", text, "late arrival")
	}
}

func TestCollectResults_EmptyTextIsNotAnError(t *testing.T) {
	// Artifacts exist but carry no speech: that is a benign empty
	// transcript, not ErrEmptyResult.
	store := storagemock.New()
	store.Seed("results/silent/out.json", []byte(`{"results": []}`))

	p := extractionPipeline(store)
	text, keys, err := p.collectResults(context.Background(), "results/silent/")
	if err != nil {
		t.Fatalf("collectResults() error = %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
	if len(keys) != 1 {
		t.Errorf("artifact keys = %v, want the silent artifact", keys)
	}
}
