// Package config loads the process configuration once at startup.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mode selects what the analysis route does after token metadata resolves.
type Mode string

const (
	ModeMetadata      Mode = "metadata"
	ModeTransfers     Mode = "transfers"
	ModeConcentration Mode = "concentration"
	ModeNarrated      Mode = "narrated"
)

// Valid reports whether m is a known analysis mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeMetadata, ModeTransfers, ModeConcentration, ModeNarrated:
		return true
	}
	return false
}

// SSM parameter names, relative to PARAM_PREFIX.
const (
	OpenAITokenParam  = "open-ai-token"
	SolscanTokenParam = "solscan-token"
)

// Config is read-only after Load returns.
type Config struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	ChatMaxTokens   int
	ChatTemperature float32

	SolscanAPIKey  string
	SolscanBaseURL string

	Mode           Mode
	TransferCount  int
	HTTPTimeout    time.Duration
	MaxQueryLength int
	TokenName      string

	ListenAddr  string
	LogLevel    slog.Level
	ParamPrefix string
}

// ConfigurationError reports a missing or malformed setting. It is fatal.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config: %s is required", e.Key)
	}
	return fmt.Sprintf("config: %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Env looks up a variable; os.Getenv satisfies it.
type Env func(key string) string

// TokenGetter resolves provider tokens from a secret store.
type TokenGetter interface {
	GetToken(ctx context.Context, name string) (string, error)
}

// LoadDotEnv loads the given env files (default ".env") into the process
// environment. Variables already set are kept; missing files are ignored.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load env file: %w", err)
	}
	return nil
}

// Load builds a Config from env. API keys absent from env are resolved
// through secrets when it is non-nil.
func Load(ctx context.Context, env Env, secrets TokenGetter) (Config, error) {
	if env == nil {
		return Config{}, errors.New("config: env lookup must not be nil")
	}
	l := loader{env: env}

	cfg := Config{
		OpenAIBaseURL:   l.str("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:     l.str("OPENAI_MODEL", "gpt-4"),
		ChatMaxTokens:   l.positiveInt("CHAT_MAX_TOKENS", 300),
		ChatTemperature: l.temperature("CHAT_TEMPERATURE", 0.8),
		SolscanBaseURL:  l.str("SOLSCAN_BASE_URL", "https://pro-api.solscan.io/v2.0"),
		Mode:            l.mode("ANALYSIS_MODE", ModeConcentration),
		TransferCount:   l.positiveInt("TRANSFER_COUNT", 20),
		HTTPTimeout:     l.duration("HTTP_TIMEOUT", 10*time.Second),
		MaxQueryLength:  l.positiveInt("MAX_QUERY_LENGTH", 1000),
		TokenName:       l.str("TOKEN_NAME", "RAI"),
		ListenAddr:      l.str("LISTEN_ADDR", ":8080"),
		LogLevel:        l.level("LOG_LEVEL", slog.LevelInfo),
		ParamPrefix:     l.str("PARAM_PREFIX", ""),
	}
	if l.err != nil {
		return Config{}, l.err
	}

	var err error
	if cfg.OpenAIAPIKey, err = l.secret(ctx, secrets, "OPENAI_API_KEY", OpenAITokenParam); err != nil {
		return Config{}, err
	}
	if cfg.SolscanAPIKey, err = l.secret(ctx, secrets, "SOLSCAN_API_KEY", SolscanTokenParam); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loader records the first malformed value it meets.
type loader struct {
	env Env
	err error
}

func (l *loader) fail(key string, err error) {
	if l.err == nil {
		l.err = &ConfigurationError{Key: key, Err: err}
	}
}

func (l *loader) str(key, def string) string {
	if v := strings.TrimSpace(l.env(key)); v != "" {
		return v
	}
	return def
}

func (l *loader) positiveInt(key string, def int) int {
	v := strings.TrimSpace(l.env(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail(key, err)
		return def
	}
	if n <= 0 {
		l.fail(key, fmt.Errorf("must be positive, got %d", n))
		return def
	}
	return n
}

func (l *loader) temperature(key string, def float32) float32 {
	v := strings.TrimSpace(l.env(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		l.fail(key, err)
		return def
	}
	if f < 0 || f > 2 {
		l.fail(key, fmt.Errorf("must be within [0, 2], got %v", f))
		return def
	}
	return float32(f)
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(l.env(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(key, err)
		return def
	}
	if d <= 0 {
		l.fail(key, fmt.Errorf("must be positive, got %s", d))
		return def
	}
	return d
}

func (l *loader) mode(key string, def Mode) Mode {
	v := strings.ToLower(strings.TrimSpace(l.env(key)))
	if v == "" {
		return def
	}
	m := Mode(v)
	if !m.Valid() {
		l.fail(key, fmt.Errorf("unknown analysis mode %q", v))
		return def
	}
	return m
}

func (l *loader) level(key string, def slog.Level) slog.Level {
	v := strings.TrimSpace(l.env(key))
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		l.fail(key, err)
		return def
	}
	return lvl
}

func (l *loader) secret(ctx context.Context, secrets TokenGetter, key, param string) (string, error) {
	if v := strings.TrimSpace(l.env(key)); v != "" {
		return v, nil
	}
	if secrets == nil {
		return "", &ConfigurationError{Key: key}
	}
	v, err := secrets.GetToken(ctx, param)
	if err != nil {
		return "", &ConfigurationError{Key: key, Err: err}
	}
	return v, nil
}
