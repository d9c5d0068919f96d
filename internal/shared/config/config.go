package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultMaxUploadBytes = 10 << 20 // 10MB

// Config holds application configuration.
type Config struct {
	Port            string   `toml:"port" yaml:"port" validate:"required"`
	Env             string   `toml:"env" yaml:"env" validate:"oneof=dev local staging production"`
	CORSAllowOrigin []string `toml:"cors_allow_origins" yaml:"cors_allow_origins"`

	UploadDir      string `toml:"upload_dir" yaml:"upload_dir" validate:"required"`
	AudioDir       string `toml:"audio_dir" yaml:"audio_dir" validate:"required"`
	TempDir        string `toml:"temp_dir" yaml:"temp_dir"`
	MaxUploadBytes int64  `toml:"max_upload_bytes" yaml:"max_upload_bytes" validate:"gt=0"`
	PublicBaseURL  string `toml:"public_base_url" yaml:"public_base_url" validate:"required,url"`

	OpenAIAPIKey         string `toml:"-" yaml:"-"`
	OpenAIBaseURL        string `toml:"openai_base_url" yaml:"openai_base_url" validate:"omitempty,url"`
	OpenAITimeoutSeconds int    `toml:"openai_timeout_seconds" yaml:"openai_timeout_seconds" validate:"gte=0"`
	ChatModel            string `toml:"chat_model" yaml:"chat_model" validate:"required"`
	TTSModel             string `toml:"tts_model" yaml:"tts_model" validate:"required"`
	TTSVoice             string `toml:"tts_voice" yaml:"tts_voice" validate:"required"`
	STTModel             string `toml:"stt_model" yaml:"stt_model" validate:"required"`
	ContextMaxChars      int    `toml:"context_max_chars" yaml:"context_max_chars" validate:"gt=0"`

	DocumentStoreMaxEntries int           `toml:"document_store_max_entries" yaml:"document_store_max_entries" validate:"gte=0"`
	DocumentTTL             time.Duration `toml:"-" yaml:"-" validate:"gte=0"`

	ArchiveStore string `toml:"archive_store" yaml:"archive_store" validate:"oneof=none s3"`
	AWSRegion    string `toml:"aws_region" yaml:"aws_region"`
	S3Bucket     string `toml:"s3_bucket" yaml:"s3_bucket" validate:"required_if=ArchiveStore s3"`
	S3Prefix     string `toml:"s3_prefix" yaml:"s3_prefix"`
	SSEKMSKeyID  string `toml:"sse_kms_key_id" yaml:"sse_kms_key_id"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port:                 "5000",
		Env:                  "dev",
		CORSAllowOrigin:      []string{"*"},
		UploadDir:            "uploads",
		AudioDir:             "audio",
		MaxUploadBytes:       defaultMaxUploadBytes,
		PublicBaseURL:        "http://localhost:5000",
		OpenAITimeoutSeconds: 120,
		ChatModel:            "gpt-4o",
		TTSModel:             "tts-1",
		TTSVoice:             "alloy",
		STTModel:             "whisper-1",
		ContextMaxChars:      2000,
		ArchiveStore:         "none",
	}
}

// Load builds the configuration from defaults, an optional CONFIG_FILE,
// local env files and environment variables, in increasing priority.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.ArchiveStore = normalizeStoreType(cfg.ArchiveStore)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Env, "ENV")
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" {
		cfg.CORSAllowOrigin = splitAndTrim(raw)
	}
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.AudioDir, "AUDIO_DIR")
	setString(&cfg.TempDir, "TEMP_DIR")
	setString(&cfg.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.ChatModel, "CHAT_MODEL")
	setString(&cfg.TTSModel, "TTS_MODEL")
	setString(&cfg.TTSVoice, "TTS_VOICE")
	setString(&cfg.STTModel, "STT_MODEL")
	setString(&cfg.ArchiveStore, "ARCHIVE_STORE")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.S3Bucket, "S3_BUCKET")
	setString(&cfg.S3Prefix, "S3_PREFIX")
	setString(&cfg.SSEKMSKeyID, "SSE_KMS_KEY_ID")

	if err := setInt64(&cfg.MaxUploadBytes, "MAX_UPLOAD_BYTES"); err != nil {
		return err
	}
	if err := setInt(&cfg.OpenAITimeoutSeconds, "OPENAI_TIMEOUT_SECONDS"); err != nil {
		return err
	}
	if err := setInt(&cfg.ContextMaxChars, "CONTEXT_MAX_CHARS"); err != nil {
		return err
	}
	if err := setInt(&cfg.DocumentStoreMaxEntries, "DOCUMENT_STORE_MAX_ENTRIES"); err != nil {
		return err
	}
	if raw := strings.TrimSpace(os.Getenv("DOCUMENT_TTL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("DOCUMENT_TTL: %w", err)
		}
		cfg.DocumentTTL = d
	}
	return nil
}

func setString(dst *string, key string) {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

func setInt64(dst *int64, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "none"
	}
}

// IsDevLike reports whether missing credentials may fall back to placeholders.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}
