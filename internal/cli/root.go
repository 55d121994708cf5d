package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/logging"
	"github.com/Makepad-fr/verbalist/internal/pipeline"
	"github.com/Makepad-fr/verbalist/internal/store"
	"github.com/Makepad-fr/verbalist/internal/tui"
)

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "verbalist",
		Short: "Turn voice memos into to-do lists",
		Long: `Verbalist records a voice memo, asks a generative model for the list
items in it and a title, and keeps the resulting lists for editing.

Without a subcommand it opens the interactive list view.

Examples:
  # Save a Gemini API key, then start recording
  verbalist auth login
  verbalist

  # One memo from a file, printed as JSON
  verbalist transcribe memo.wav --json

  # HTTP API for a browser front end
  verbalist serve --addr :8080
`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usagef("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/verbalist/config.yaml)")
	pf.StringVarP(&a.provider, "provider", "p", "", "model provider: gemini or openai")
	pf.StringVar(&a.theme, "theme", "", "color theme: classic, neon or mono")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(a.transcribeCmd())
	root.AddCommand(a.serveCmd())
	root.AddCommand(a.authCmd())
	return root
}

// runTUI logs to a file since the alternate screen owns the terminal.
func (a *app) runTUI(cmd *cobra.Command) error {
	log, err := a.logger(logging.DefaultFile())
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	client, err := a.aiClient(ctx, log)
	if err != nil {
		return err
	}
	st := store.New(store.WithLogger(log))
	p := pipeline.New(pipeline.Deps{
		Source:    a.microphone(a.cfg.Audio.MaxDuration),
		Extractor: client,
		Titler:    client,
		Store:     st,
		Logger:    log,
		Timeouts:  a.timeouts(),
	})

	log.Info("interactive session started", zap.String("provider", a.cfg.Provider))
	defer func() { log.Info("interactive session ended", zap.Int("lists", st.Len())) }()
	return tui.Run(tui.Options{
		Pipeline: p,
		Store:    st,
		Theme:    a.cfg.UI.Theme,
		Logger:   log,
		Now:      a.now,
	}, tea.WithContext(ctx))
}
