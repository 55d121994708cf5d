// Package cli wires configuration, credentials, the AI backend and the
// front ends into the verbalist command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/ai"
	"github.com/Makepad-fr/verbalist/internal/audio"
	"github.com/Makepad-fr/verbalist/internal/config"
	"github.com/Makepad-fr/verbalist/internal/credentials"
	"github.com/Makepad-fr/verbalist/internal/logging"
	"github.com/Makepad-fr/verbalist/internal/pipeline"
	"github.com/Makepad-fr/verbalist/internal/ui"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitUsage   = 2
)

// clientFactory builds the capability backend for cfg.
type clientFactory func(ctx context.Context, cfg *config.Config, log *zap.Logger) (ai.Client, error)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	creds  credentials.File
	now    func() time.Time

	// newClient replaces the provider backend; nil means resolve a key and
	// call ai.New.
	newClient clientFactory

	// persistent flags
	cfgFile  string
	provider string
	theme    string
	verbose  bool

	cfg *config.Config
}

func newApp() *app {
	return &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
		now:    time.Now,
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, newApp())
}

func run(ctx context.Context, args []string, a *app) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	a.printer().Fail(err.Error())
	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitRuntime
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// usageArgs marks positional argument errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usagef("%v (see %s --help)", err, cmd.CommandPath())
		}
		return nil
	}
}

// loadConfig reads the config file and applies the persistent flags on top.
func (a *app) loadConfig() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.provider != "" {
		cfg.Provider = strings.ToLower(a.provider)
	}
	if a.theme != "" {
		cfg.UI.Theme = strings.ToLower(a.theme)
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return usagef("%v", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) printer() *ui.Printer {
	theme := a.theme
	if a.cfg != nil {
		theme = a.cfg.UI.Theme
	}
	return ui.NewPrinter(a.stdout, a.stderr, theme)
}

func (a *app) logger(fallback string) (*zap.Logger, error) {
	log, err := logging.New(a.cfg.Logging, fallback)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

func (a *app) timeouts() pipeline.Timeouts {
	return pipeline.Timeouts{
		Extraction: a.cfg.Pipeline.ExtractionTimeout,
		Title:      a.cfg.Pipeline.TitleTimeout,
	}
}

// microphone builds the capture source from the audio section.
func (a *app) microphone(maxDuration time.Duration) *audio.CommandSource {
	ac := a.cfg.Audio
	return &audio.CommandSource{
		Command:      ac.Command,
		Device:       ac.Device,
		Format:       audio.Format{SampleRate: ac.SampleRate, Channels: ac.Channels},
		ProbeTimeout: ac.ProbeTimeout,
		MaxDuration:  maxDuration,
	}
}

// configuredKey is the API key written in the config file, if any.
func configuredKey(cfg *config.Config) string {
	if cfg.Provider == ai.ProviderOpenAI {
		return cfg.OpenAI.APIKey
	}
	return cfg.Gemini.APIKey
}

// aiClient resolves the provider key and builds the backend.
func (a *app) aiClient(ctx context.Context, log *zap.Logger) (ai.Client, error) {
	if a.newClient != nil {
		return a.newClient(ctx, a.cfg, log)
	}
	cfg := a.cfg
	ki, err := a.creds.Resolve(cfg.Provider, configuredKey(cfg), a.getenv)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if ki == nil {
		return nil, usagef("no %s API key found. Set %s or run `verbalist auth login`",
			cfg.Provider, strings.Join(credentials.EnvVars[cfg.Provider], " or "))
	}
	log.Debug("api key resolved", zap.String("provider", cfg.Provider), zap.String("source", ki.Source))

	return ai.New(ctx, ai.Options{
		Provider: cfg.Provider,
		Gemini: ai.GeminiOptions{
			APIKey: ki.Key,
			Model:  cfg.Gemini.Model,
			Logger: log,
		},
		OpenAI: ai.OpenAIOptions{
			APIKey:             ki.Key,
			BaseURL:            cfg.OpenAI.BaseURL,
			TranscriptionModel: cfg.OpenAI.TranscriptionModel,
			ChatModel:          cfg.OpenAI.ChatModel,
			Logger:             log,
		},
	})
}
