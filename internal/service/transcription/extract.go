package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// collectResults lists the artifacts under prefix, extracts transcript
// text from each JSON document, and returns the deduplicated space-joined
// text plus the artifact keys so the caller can reap them.
//
// Recognition services may flush output objects with a lag after marking
// the job done, so an empty first listing gets one grace wait and one
// re-list. Still empty after that is ErrEmptyResult.
func (p *Pipeline) collectResults(ctx context.Context, prefix string) (string, []string, error) {
	keys, err := p.store.List(ctx, prefix)
	if err != nil {
		return "", nil, wrapKind(ErrRecognitionFailed, err)
	}

	if len(keys) == 0 {
		p.metrics.RecordRelist()
		p.log.Info().Str("prefix", prefix).Dur("wait", p.cfg.ResultGraceWait).
			Msg("no result artifacts yet, waiting once")

		select {
		case <-time.After(p.cfg.ResultGraceWait):
		case <-ctx.Done():
			return "", nil, wrapKind(ErrRecognitionFailed, ctx.Err())
		}

		keys, err = p.store.List(ctx, prefix)
		if err != nil {
			return "", nil, wrapKind(ErrRecognitionFailed, err)
		}
		if len(keys) == 0 {
			return "", nil, fmt.Errorf("%w: no artifacts under %s", ErrEmptyResult, prefix)
		}
	}

	var fragments []string
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := p.store.Download(ctx, key)
		if err != nil {
			return "", nil, wrapKind(ErrRecognitionFailed, err)
		}
		frags, usedFallback, err := extractFragments(data)
		if err != nil {
			return "", nil, wrapKind(ErrRecognitionFailed, fmt.Errorf("artifact %s: %v", key, err))
		}
		if usedFallback {
			p.metrics.RecordFallbackScan()
			p.log.Info().Str("key", key).Msg("result schema variant mismatch, fallback scan used")
		}
		fragments = append(fragments, frags...)
	}

	// Set semantics: the fallback scan can reach the same string through
	// different nesting routes.
	seen := make(map[string]struct{}, len(fragments))
	deduped := fragments[:0]
	for _, f := range fragments {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		deduped = append(deduped, f)
	}

	return strings.TrimSpace(strings.Join(deduped, " ")), keys, nil
}

// extractFragments parses one recognition result document of ambiguous
// shape. The primary path walks the expected nesting: a segment array at
// `results` (or one level deeper at `results.results`), each segment
// carrying ranked alternatives whose first entry holds the transcript.
// When no segment array is found at either location, the fallback path
// scans the whole document for any field named "transcript".
func extractFragments(doc []byte) (fragments []string, usedFallback bool, err error) {
	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, false, fmt.Errorf("parse result document: %w", err)
	}

	segments := segmentArray(root)
	if segments == nil {
		scanTranscripts(root, &fragments)
		return fragments, true, nil
	}

	for _, seg := range segments {
		m, ok := seg.(map[string]any)
		if !ok {
			continue
		}
		alts, ok := m["alternatives"].([]any)
		if !ok || len(alts) == 0 {
			continue
		}
		top, ok := alts[0].(map[string]any)
		if !ok {
			continue
		}
		if text, ok := top["transcript"].(string); ok && text != "" {
			fragments = append(fragments, text)
		}
	}
	return fragments, false, nil
}

// segmentArray locates the segment collection at its expected locations,
// or returns nil when the document has some other shape.
func segmentArray(root any) []any {
	m, ok := root.(map[string]any)
	if !ok {
		return nil
	}
	results := m["results"]
	// Speech v2 often nests the segment array one level deeper, inside a
	// "results" object that itself holds a "results" array.
	if inner, ok := results.(map[string]any); ok {
		results = inner["results"]
	}
	if arr, ok := results.([]any); ok {
		return arr
	}
	return nil
}

// scanTranscripts recursively collects every string-valued "transcript"
// field. A map carrying a transcript is treated as a leaf; its other
// values are not descended into.
func scanTranscripts(v any, out *[]string) {
	switch node := v.(type) {
	case map[string]any:
		if text, ok := node["transcript"].(string); ok && text != "" {
			*out = append(*out, text)
			return
		}
		for _, val := range node {
			scanTranscripts(val, out)
		}
	case []any:
		for _, val := range node {
			scanTranscripts(val, out)
		}
	}
}
