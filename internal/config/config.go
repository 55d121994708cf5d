// Package config loads Verbalist settings from YAML, .env and the
// environment, in that order of precedence from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Provider string         `yaml:"provider"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Audio    AudioConfig    `yaml:"audio"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	UI       UIConfig       `yaml:"ui"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	TranscriptionModel string `yaml:"transcription_model"`
	ChatModel          string `yaml:"chat_model"`
}

// AudioConfig describes microphone capture.
type AudioConfig struct {
	Command      string        `yaml:"command"` // arecord or ffmpeg; empty picks one
	Device       string        `yaml:"device"`
	SampleRate   int           `yaml:"sample_rate"`
	Channels     int           `yaml:"channels"`
	ChunkBytes   int           `yaml:"chunk_bytes"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	MaxDuration  time.Duration `yaml:"max_duration"`
}

type PipelineConfig struct {
	ExtractionTimeout time.Duration `yaml:"extraction_timeout"`
	TitleTimeout      time.Duration `yaml:"title_timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address        string        `yaml:"address"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      int           `yaml:"rate_limit"`
	RateWindow     time.Duration `yaml:"rate_window"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type UIConfig struct {
	Theme string `yaml:"theme"`
}

var (
	providers = []string{"gemini", "openai"}
	themes    = []string{"classic", "neon", "mono"}
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: "gemini",
		Gemini:   GeminiConfig{Model: "gemini-2.5-flash"},
		OpenAI: OpenAIConfig{
			TranscriptionModel: "whisper-1",
			ChatModel:          "gpt-4o-mini",
		},
		Audio: AudioConfig{
			SampleRate:   16000,
			Channels:     1,
			ChunkBytes:   3200,
			ProbeTimeout: time.Second,
			MaxDuration:  5 * time.Minute,
		},
		Pipeline: PipelineConfig{
			ExtractionTimeout: 2 * time.Minute,
			TitleTimeout:      30 * time.Second,
		},
		Server: ServerConfig{
			Address:        ":8080",
			AllowedOrigins: []string{"*"},
			RateLimit:      30,
			RateWindow:     time.Minute,
			MaxBodyBytes:   25 << 20,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		UI:      UIConfig{Theme: "classic"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/verbalist/config.yaml or its platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "verbalist", "config.yaml"), nil
}

// Load builds the configuration. An empty path means the default location,
// which may be absent; an explicit path must exist. A .env file in the
// working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	return load(path, explicit, os.Getenv)
}

func load(path string, explicit bool, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnv overrides settings from the environment. API keys are resolved
// separately by the credentials package.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.Provider, "VERBALIST_PROVIDER")
	set(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	set(&c.Logging.Level, "VERBALIST_LOG_LEVEL")
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		c.Server.Address = ":" + port
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if !slices.Contains(providers, c.Provider) {
		return fmt.Errorf("provider must be one of %v, got %q", providers, c.Provider)
	}
	if c.Provider == "gemini" {
		if err := c.Gemini.Validate(); err != nil {
			return fmt.Errorf("gemini config: %w", err)
		}
	} else if err := c.OpenAI.Validate(); err != nil {
		return fmt.Errorf("openai config: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui config: %w", err)
	}
	return nil
}

// Validate checks the Gemini section. The API key may come from the
// credentials file later, so it is not required here.
func (g *GeminiConfig) Validate() error {
	if g.Model == "" {
		return errors.New("model cannot be empty")
	}
	return nil
}

func (o *OpenAIConfig) Validate() error {
	if o.TranscriptionModel == "" {
		return errors.New("transcription_model cannot be empty")
	}
	if o.ChatModel == "" {
		return errors.New("chat_model cannot be empty")
	}
	if o.BaseURL != "" && !strings.HasPrefix(o.BaseURL, "http://") && !strings.HasPrefix(o.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", o.BaseURL)
	}
	return nil
}

func (a *AudioConfig) Validate() error {
	if a.Command != "" && a.Command != "arecord" && a.Command != "ffmpeg" {
		if _, err := os.Stat(a.Command); err != nil {
			return fmt.Errorf("command must be arecord, ffmpeg or an existing path, got %q", a.Command)
		}
	}
	if a.SampleRate < 8000 || a.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000 Hz, got %d", a.SampleRate)
	}
	if a.Channels != 1 && a.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", a.Channels)
	}
	if a.ChunkBytes < 2 {
		return fmt.Errorf("chunk_bytes must be at least 2, got %d", a.ChunkBytes)
	}
	if a.ProbeTimeout < 0 {
		return fmt.Errorf("probe_timeout cannot be negative, got %s", a.ProbeTimeout)
	}
	if a.MaxDuration < 0 {
		return fmt.Errorf("max_duration cannot be negative, got %s", a.MaxDuration)
	}
	return nil
}

func (p *PipelineConfig) Validate() error {
	if p.ExtractionTimeout < 0 || p.TitleTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Address == "" {
		return errors.New("address cannot be empty")
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative, got %d", s.RateLimit)
	}
	if s.RateLimit > 0 && s.RateWindow <= 0 {
		return fmt.Errorf("rate_window must be positive when rate_limit is set, got %s", s.RateWindow)
	}
	if s.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", s.MaxBodyBytes)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return err
	}
	if l.Format != "json" && l.Format != "console" {
		return fmt.Errorf("format must be json or console, got %q", l.Format)
	}
	return nil
}

func (u *UIConfig) Validate() error {
	if !slices.Contains(themes, u.Theme) {
		return fmt.Errorf("theme must be one of %v, got %q", themes, u.Theme)
	}
	return nil
}
