package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "MAX_UPLOAD_BYTES", "FFMPEG_PATH",
		"STORAGE_BUCKET", "STORAGE_STAGING_PREFIX", "STORAGE_RESULTS_PREFIX",
		"RECOGNITION_REGION", "RECOGNITION_MODEL", "RECOGNITION_LANGUAGES",
		"RECOGNITION_MIN_SPEAKERS", "RECOGNITION_MAX_SPEAKERS",
		"RECOGNITION_RESULT_GRACE_WAIT", "RECOGNITION_CALL_TIMEOUT",
		"KAFKA_ENABLED", "KAFKA_PRINCIPAL", "LOG_LEVEL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	if cfg.Service.Principal != "svc-meeting-transcription" {
		t.Errorf("expected default principal 'svc-meeting-transcription', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Service.MaxUploadBytes != 64*1024*1024 {
		t.Errorf("expected default max upload 64MB, got %d", cfg.Service.MaxUploadBytes)
	}
	if cfg.Service.FFmpegPath != "ffmpeg" {
		t.Errorf("expected default ffmpeg path 'ffmpeg', got %s", cfg.Service.FFmpegPath)
	}

	if cfg.Storage.Bucket != "meetlens-audio" {
		t.Errorf("expected default bucket 'meetlens-audio', got %s", cfg.Storage.Bucket)
	}
	if cfg.Storage.StagingPrefix != "transcription/" {
		t.Errorf("expected default staging prefix 'transcription/', got %s", cfg.Storage.StagingPrefix)
	}
	if cfg.Storage.ResultsPrefix != "results/" {
		t.Errorf("expected default results prefix 'results/', got %s", cfg.Storage.ResultsPrefix)
	}

	if cfg.Recognition.Region != "us-central1" {
		t.Errorf("expected default region 'us-central1', got %s", cfg.Recognition.Region)
	}
	if cfg.Recognition.Model != "chirp_2" {
		t.Errorf("expected default model 'chirp_2', got %s", cfg.Recognition.Model)
	}
	if len(cfg.Recognition.LanguageCodes) != 1 || cfg.Recognition.LanguageCodes[0] != "en-IN" {
		t.Errorf("expected default languages [en-IN], got %v", cfg.Recognition.LanguageCodes)
	}
	if cfg.Recognition.ResultGraceWait != 8*time.Second {
		t.Errorf("expected default grace wait 8s, got %v", cfg.Recognition.ResultGraceWait)
	}
	if cfg.Recognition.MinSpeakers != 1 || cfg.Recognition.MaxSpeakers != 6 {
		t.Errorf("expected default speaker bounds 1..6, got %d..%d",
			cfg.Recognition.MinSpeakers, cfg.Recognition.MaxSpeakers)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("STORAGE_BUCKET", "my-bucket")
	os.Setenv("RECOGNITION_LANGUAGES", "en-US, hi-IN")
	os.Setenv("RECOGNITION_RESULT_GRACE_WAIT", "250ms")
	os.Setenv("RECOGNITION_MAX_SPEAKERS", "2")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("SERVICE_PRINCIPAL")
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("STORAGE_BUCKET")
		os.Unsetenv("RECOGNITION_LANGUAGES")
		os.Unsetenv("RECOGNITION_RESULT_GRACE_WAIT")
		os.Unsetenv("RECOGNITION_MAX_SPEAKERS")
		os.Unsetenv("KAFKA_ENABLED")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Storage.Bucket != "my-bucket" {
		t.Errorf("expected bucket 'my-bucket', got %s", cfg.Storage.Bucket)
	}
	if len(cfg.Recognition.LanguageCodes) != 2 ||
		cfg.Recognition.LanguageCodes[0] != "en-US" ||
		cfg.Recognition.LanguageCodes[1] != "hi-IN" {
		t.Errorf("expected languages [en-US hi-IN], got %v", cfg.Recognition.LanguageCodes)
	}
	if cfg.Recognition.ResultGraceWait != 250*time.Millisecond {
		t.Errorf("expected grace wait 250ms, got %v", cfg.Recognition.ResultGraceWait)
	}
	if cfg.Recognition.MaxSpeakers != 2 {
		t.Errorf("expected max speakers 2, got %d", cfg.Recognition.MaxSpeakers)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	os.Setenv("RECOGNITION_MIN_SPEAKERS", "invalid")
	os.Setenv("RECOGNITION_RESULT_GRACE_WAIT", "invalid")
	os.Setenv("KAFKA_ENABLED", "invalid")

	defer func() {
		os.Unsetenv("MAX_UPLOAD_BYTES")
		os.Unsetenv("RECOGNITION_MIN_SPEAKERS")
		os.Unsetenv("RECOGNITION_RESULT_GRACE_WAIT")
		os.Unsetenv("KAFKA_ENABLED")
	}()

	cfg := Load()

	if cfg.Service.MaxUploadBytes != 64*1024*1024 {
		t.Errorf("expected default max upload on invalid input, got %d", cfg.Service.MaxUploadBytes)
	}
	if cfg.Recognition.MinSpeakers != 1 {
		t.Errorf("expected default min speakers on invalid input, got %d", cfg.Recognition.MinSpeakers)
	}
	if cfg.Recognition.ResultGraceWait != 8*time.Second {
		t.Errorf("expected default grace wait on invalid input, got %v", cfg.Recognition.ResultGraceWait)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled on invalid input")
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	os.Unsetenv("KAFKA_PRINCIPAL")

	defer os.Unsetenv("SERVICE_PRINCIPAL")

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultList(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      []string
		expected []string
	}{
		{"single", "en-US", nil, []string{"en-US"}},
		{"multiple with spaces", "en-US, hi-IN ,es-ES", nil, []string{"en-US", "hi-IN", "es-ES"}},
		{"empty", "", []string{"en-IN"}, []string{"en-IN"}},
		{"only commas", ",,", []string{"en-IN"}, []string{"en-IN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_LIST_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultList(key, tt.def)
			if len(got) != len(tt.expected) {
				t.Fatalf("envOrDefaultList(%q) = %v, want %v", tt.envValue, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("envOrDefaultList(%q)[%d] = %q, want %q", tt.envValue, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
