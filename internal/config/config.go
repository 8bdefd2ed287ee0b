// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Service       ServiceConfig
	Storage       StorageConfig
	Recognition   RecognitionConfig
	Lemonfox      LemonfoxConfig
	Touchup       TouchupConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Principal string
	HTTPPort  string
	// MaxUploadBytes bounds the multipart form kept in memory per request.
	MaxUploadBytes int64
	// FFmpegPath is the transcoder binary invoked as a subprocess.
	FFmpegPath string
}

// StorageConfig holds blob storage settings.
type StorageConfig struct {
	Bucket        string
	StagingPrefix string
	ResultsPrefix string
}

// RecognitionConfig holds the static batch recognition settings.
// These are per-deployment, not user-tunable, so behavior stays
// deterministic across jobs.
type RecognitionConfig struct {
	ProjectID     string
	Region        string
	Model         string
	LanguageCodes []string
	MinSpeakers   int
	MaxSpeakers   int
	// ResultGraceWait is how long to wait before the single re-list when
	// the job is done but no result objects are visible yet.
	ResultGraceWait time.Duration
	// CallTimeout bounds every recognition and storage call.
	CallTimeout time.Duration
}

// LemonfoxConfig holds the synchronous diarizing provider settings.
type LemonfoxConfig struct {
	APIKey   string
	Endpoint string
	Language string
	Timeout  time.Duration
}

// TouchupConfig holds the generative touch-up settings.
type TouchupConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TopicSubmitted string
	TopicCompleted string
	Principal      string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsPort string
}

// Load reads configuration from environment variables, falling back to
// defaults on missing or unparsable values.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-meeting-transcription")

	return &Config{
		Service: ServiceConfig{
			Principal:      principal,
			HTTPPort:       envOrDefault("HTTP_PORT", "8080"),
			MaxUploadBytes: envOrDefaultInt64("MAX_UPLOAD_BYTES", 64*1024*1024),
			FFmpegPath:     envOrDefault("FFMPEG_PATH", "ffmpeg"),
		},
		Storage: StorageConfig{
			Bucket:        envOrDefault("STORAGE_BUCKET", "meetlens-audio"),
			StagingPrefix: envOrDefault("STORAGE_STAGING_PREFIX", "transcription/"),
			ResultsPrefix: envOrDefault("STORAGE_RESULTS_PREFIX", "results/"),
		},
		Recognition: RecognitionConfig{
			ProjectID:       strings.TrimSpace(os.Getenv("GCP_PROJECT_ID")),
			Region:          envOrDefault("RECOGNITION_REGION", "us-central1"),
			Model:           envOrDefault("RECOGNITION_MODEL", "chirp_2"),
			LanguageCodes:   envOrDefaultList("RECOGNITION_LANGUAGES", []string{"en-IN"}),
			MinSpeakers:     envOrDefaultInt("RECOGNITION_MIN_SPEAKERS", 1),
			MaxSpeakers:     envOrDefaultInt("RECOGNITION_MAX_SPEAKERS", 6),
			ResultGraceWait: envOrDefaultDuration("RECOGNITION_RESULT_GRACE_WAIT", 8*time.Second),
			CallTimeout:     envOrDefaultDuration("RECOGNITION_CALL_TIMEOUT", 60*time.Second),
		},
		Lemonfox: LemonfoxConfig{
			APIKey:   os.Getenv("LEMONFOX_API_KEY"),
			Endpoint: envOrDefault("LEMONFOX_ENDPOINT", "https://api.lemonfox.ai/v1/audio/transcriptions"),
			Language: envOrDefault("LEMONFOX_LANGUAGE", "en"),
			Timeout:  envOrDefaultDuration("LEMONFOX_TIMEOUT", 5*time.Minute),
		},
		Touchup: TouchupConfig{
			APIKey:  os.Getenv("VERTEX_API_KEY"),
			Model:   envOrDefault("TOUCHUP_MODEL", "gemini-1.5-flash-001"),
			Timeout: envOrDefaultDuration("TOUCHUP_TIMEOUT", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:        envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:        envOrDefaultList("KAFKA_BROKERS", nil),
			TopicSubmitted: envOrDefault("KAFKA_TOPIC_SUBMITTED", "transcription.job.submitted"),
			TopicCompleted: envOrDefault("KAFKA_TOPIC_COMPLETED", "transcription.job.completed"),
			Principal:      envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
