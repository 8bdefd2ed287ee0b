// Package media transcodes untrusted input audio into the canonical
// format required by the recognition backends: mono, 16 kHz, 16-bit
// signed little-endian PCM in a WAV container.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Canonical audio parameters. Both recognition backends require exactly
// this format.
const (
	CanonicalChannels   = 1
	CanonicalSampleRate = 16000
	CanonicalCodec      = "pcm_s16le"
)

// Normalizer converts an arbitrary audio file into canonical PCM WAV.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath, outputPath string) error
}

// FFmpeg invokes the ffmpeg binary as a subprocess. Transcoding is
// deterministic, so a failure is surfaced immediately with no retry.
type FFmpeg struct {
	binary string
}

// NewFFmpeg creates a normalizer using the given ffmpeg binary path.
func NewFFmpeg(binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary}
}

// Args returns the ffmpeg argument list for one transcode. Split out so
// the canonical format invariant is testable without running ffmpeg.
func (f *FFmpeg) Args(inputPath, outputPath string) []string {
	return []string{
		"-y", "-i", inputPath,
		"-ac", fmt.Sprintf("%d", CanonicalChannels),
		"-ar", fmt.Sprintf("%d", CanonicalSampleRate),
		"-acodec", CanonicalCodec,
		"-f", "wav",
		outputPath,
	}
}

// Normalize transcodes inputPath to canonical WAV at outputPath. Any
// nonzero exit is returned with the tail of ffmpeg's stderr attached.
func (f *FFmpeg) Normalize(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, f.binary, f.Args(inputPath, outputPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, stderrTail(stderr.String()))
	}
	return nil
}

// stderrTail keeps the last few lines of ffmpeg output; the head is
// build/banner noise.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	const keep = 4
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	return strings.Join(lines, " | ")
}
