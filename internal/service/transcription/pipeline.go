// Package transcription orchestrates the upload → transcode → stage →
// recognize → extract → touch-up pipeline. The server keeps no job state
// between requests: every identifier a poll needs is handed to the
// client at submission time and echoed back.
package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"meeting-transcription-service/internal/events"
	"meeting-transcription-service/internal/media"
	"meeting-transcription-service/internal/models"
	"meeting-transcription-service/internal/observability/logging"
	"meeting-transcription-service/internal/observability/metrics"
	"meeting-transcription-service/internal/service/diarize"
	"meeting-transcription-service/internal/service/stt"
	"meeting-transcription-service/internal/service/token"
	"meeting-transcription-service/internal/service/touchup"
	"meeting-transcription-service/internal/storage"
)

// NoSpeechSentinel is returned as the transcript text when recognition
// completed but produced no speech.
const NoSpeechSentinel = "No speech detected."

// touchupMinLength skips the generative call for texts too short to fix.
const touchupMinLength = 5

// Config holds pipeline settings.
type Config struct {
	// StagingPrefix namespaces uploaded audio objects, e.g. "transcription/".
	StagingPrefix string
	// ResultsPrefix namespaces result artifacts, e.g. "results/".
	ResultsPrefix string
	// ResultGraceWait is the single bounded wait before re-listing an
	// empty result prefix.
	ResultGraceWait time.Duration
	// CallTimeout bounds each external call.
	CallTimeout time.Duration
	// SyncTimeout bounds the blocking synchronous recognition call,
	// which covers a full transcription rather than a single RPC.
	SyncTimeout time.Duration
	// TempDir is where per-request temp files are written. Defaults to
	// the system temp dir.
	TempDir string
}

// Deps are the injected collaborators. Constructing them explicitly and
// passing them in keeps the handlers free of hidden global state and
// makes every piece fakeable in tests.
type Deps struct {
	Store      storage.ObjectStore
	Batch      stt.BatchRecognizer
	Sync       stt.SyncRecognizer
	Refiner    touchup.Refiner
	Normalizer media.Normalizer
	Publisher  *events.Publisher
	Tokens     *token.Generator
}

// Pipeline implements the transcription endpoints' behavior.
//
// A submitted remote job cannot be cancelled: a client that stops
// polling simply abandons it, and the recognition service runs the job
// to completion anyway. Likewise, a client that crashes before recording
// the returned operation ID loses the job irrecoverably; continuation is
// entirely client-driven by design.
type Pipeline struct {
	store      storage.ObjectStore
	batch      stt.BatchRecognizer
	sync       stt.SyncRecognizer
	refiner    touchup.Refiner
	normalizer media.Normalizer
	publisher  *events.Publisher
	tokens     *token.Generator
	cfg        Config
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// New creates a pipeline from its dependencies.
func New(deps Deps, cfg Config) *Pipeline {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.SyncTimeout == 0 {
		cfg.SyncTimeout = cfg.CallTimeout
	}
	if deps.Tokens == nil {
		deps.Tokens = token.New()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.New(nil)
	}
	return &Pipeline{
		store:      deps.Store,
		batch:      deps.Batch,
		sync:       deps.Sync,
		refiner:    deps.Refiner,
		normalizer: deps.Normalizer,
		publisher:  deps.Publisher,
		tokens:     deps.Tokens,
		cfg:        cfg,
		metrics:    metrics.DefaultMetrics,
		log:        logging.WithComponent("pipeline"),
	}
}

// Submit transcodes the uploaded audio to canonical PCM, stages it, and
// starts the batch recognition job. It returns immediately with the
// identifiers the client must echo on every poll. Local temp files are
// removed on every exit path.
func (p *Pipeline) Submit(ctx context.Context, audio []byte) (*models.TranscriptionJob, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: no audio", ErrMissingInput)
	}
	p.metrics.UploadBytes.Add(float64(len(audio)))

	tok := p.tokens.Next()
	log := logging.WithJob("", tok)

	reaper := NewReaper(p.store, log, p.metrics)
	defer reaper.RemoveLocal()

	inputPath := filepath.Join(p.cfg.TempDir, "raw-"+tok)
	outputPath := filepath.Join(p.cfg.TempDir, "clean-"+tok+".wav")
	reaper.TrackFile(inputPath)
	reaper.TrackFile(outputPath)

	if err := os.WriteFile(inputPath, audio, 0o600); err != nil {
		p.metrics.RecordJobFailed("transcode")
		return nil, wrapKind(ErrTranscodeFailed, err)
	}

	start := time.Now()
	tctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	err := p.normalizer.Normalize(tctx, inputPath, outputPath)
	cancel()
	if err != nil {
		p.metrics.RecordJobFailed("transcode")
		return nil, wrapKind(ErrTranscodeFailed, err)
	}
	p.metrics.RecordTranscode(time.Since(start).Seconds())

	pcm, err := os.ReadFile(outputPath)
	if err != nil {
		p.metrics.RecordJobFailed("transcode")
		return nil, wrapKind(ErrTranscodeFailed, err)
	}
	log.Info().Int("bytes", len(pcm)).Msg("canonical WAV created")

	stagingKey := p.cfg.StagingPrefix + tok + ".wav"
	sctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	err = p.store.Upload(sctx, stagingKey, pcm)
	cancel()
	if err != nil {
		p.metrics.RecordJobFailed("staging")
		return nil, wrapKind(ErrStagingFailed, err)
	}
	p.metrics.StagedBytes.Add(float64(len(pcm)))

	resultPrefix := p.cfg.ResultsPrefix + tok + "/"
	bctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	id, err := p.batch.Submit(bctx, p.store.URI(stagingKey), p.store.URI(resultPrefix))
	cancel()
	if err != nil {
		p.metrics.RecordJobFailed("submission")
		return nil, wrapKind(ErrSubmissionFailed, err)
	}

	p.metrics.RecordJobSubmitted()
	log.Info().Str("operationId", id).Str("stagingKey", stagingKey).Msg("batch job submitted")

	// Publish failures are logged by the publisher; a lost event must
	// not fail the submission.
	_ = p.publisher.PublishSubmitted(ctx, id, models.JobSubmitted{
		EventType:   "transcription.job.submitted",
		OperationID: id,
		StagingKey:  stagingKey,
		Token:       tok,
		Timestamp:   time.Now().UnixMilli(),
	})

	return &models.TranscriptionJob{
		ID:         id,
		StagingKey: stagingKey,
		Token:      tok,
		State:      models.StateSubmitted,
	}, nil
}

// Poll performs exactly one status check. While the job runs it returns
// a pending result; once done it extracts the transcript, applies the
// optional touch-up, reaps the remote artifacts best-effort, and returns
// the final text. The server holds no timer and no job table; the client
// re-polls on its own schedule.
func (p *Pipeline) Poll(ctx context.Context, req models.PollRequest) (*models.PollResult, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: missing operation id", ErrMissingInput)
	}
	log := logging.WithJob(req.ID, req.Token)

	pctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	done, err := p.batch.Poll(pctx, req.ID)
	cancel()
	if err != nil {
		p.metrics.RecordPoll("failed")
		p.metrics.RecordJobFailed("recognition")
		return nil, wrapKind(ErrRecognitionFailed, err)
	}
	if !done {
		p.metrics.RecordPoll("pending")
		return &models.PollResult{Completed: false}, nil
	}

	prefix := p.cfg.ResultsPrefix + req.Token + "/"
	raw, artifacts, err := p.collectResults(ctx, prefix)
	if err != nil {
		p.metrics.RecordPoll("failed")
		p.metrics.RecordJobFailed("extraction")
		return nil, err
	}

	text := raw
	touched := false
	// Completed with well-formed artifacts but no speech: a benign
	// outcome, not an error.
	if raw == "" {
		text = NoSpeechSentinel
	} else if p.refiner != nil && len(raw) >= touchupMinLength {
		rctx, rcancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		refined, rerr := p.refiner.Refine(rctx, raw, "")
		rcancel()
		if rerr != nil {
			p.metrics.RecordTouchupFallback()
			log.Warn().Err(rerr).Msg("touch-up failed, falling back to raw transcript")
		} else {
			text = refined
			touched = true
		}
	}

	reaper := NewReaper(p.store, log, p.metrics)
	if req.StagingKey != "" {
		reaper.TrackObject(req.StagingKey)
	}
	for _, key := range artifacts {
		reaper.TrackObject(key)
	}
	reaper.RemoveRemote(ctx)

	p.metrics.RecordPoll("completed")
	p.metrics.RecordJobCompleted()
	log.Info().Int("rawLength", len(raw)).Bool("touchedUp", touched).Msg("transcription completed")

	_ = p.publisher.PublishCompleted(ctx, req.ID, models.JobCompleted{
		EventType:   "transcription.job.completed",
		OperationID: req.ID,
		Token:       req.Token,
		Timestamp:   time.Now().UnixMilli(),
		Text:        text,
		RawText:     raw,
		TouchedUp:   touched,
	})

	return &models.PollResult{Completed: true, Text: text, RawText: raw}, nil
}

// TranscribeSync runs the synchronous variant: one blocking provider
// call returning diarized segments, reconstructed into speaker lines,
// then the optional touch-up. No staging, no polling, no temp files.
func (p *Pipeline) TranscribeSync(ctx context.Context, audio []byte, filename, contentType, meetingType string) (*models.SyncTranscript, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: no audio", ErrMissingInput)
	}
	if meetingType == "" {
		meetingType = "General"
	}
	p.metrics.UploadBytes.Add(float64(len(audio)))

	sctx, cancel := context.WithTimeout(ctx, p.cfg.SyncTimeout)
	res, err := p.sync.Transcribe(sctx, audio, filename, contentType)
	cancel()
	if err != nil {
		p.metrics.RecordJobFailed("recognition")
		return nil, wrapKind(ErrRecognitionFailed, err)
	}

	raw := res.Text
	if len(res.Segments) > 0 {
		raw = diarize.Lines(res.Segments)
	}

	text := raw
	if raw == "" {
		text = NoSpeechSentinel
	} else if p.refiner != nil && len(raw) >= touchupMinLength {
		rctx, rcancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		refined, rerr := p.refiner.Refine(rctx, raw, meetingType)
		rcancel()
		if rerr != nil {
			p.metrics.RecordTouchupFallback()
			p.log.Warn().Err(rerr).Msg("touch-up failed, falling back to raw transcript")
		} else {
			text = refined
		}
	}

	p.metrics.RecordJobCompleted()
	return &models.SyncTranscript{
		Completed:   true,
		Text:        text,
		RawText:     raw,
		MeetingType: meetingType,
	}, nil
}
