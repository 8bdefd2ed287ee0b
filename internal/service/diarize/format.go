// Package diarize turns diarized segment lists into speaker-attributed
// transcript text.
package diarize

import (
	"strings"

	"meeting-transcription-service/internal/models"
)

// Lines renders segments as newline-joined "Speaker <tag>: <text>" lines
// ("Speaker: <text>" when the tag is absent), in input order. Segments
// are never reordered or merged.
func Lines(segments []models.SpeakerSegment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		label := "Speaker"
		if s.Speaker != nil {
			label = "Speaker " + *s.Speaker
		}
		lines = append(lines, label+": "+s.Text)
	}
	return strings.Join(lines, "\n")
}
