package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/pipeline"
	"github.com/Makepad-fr/verbalist/internal/server"
	"github.com/Makepad-fr/verbalist/internal/store"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the capabilities and lists over HTTP",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Address = addr
			}
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	log, err := a.logger("stderr")
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := a.aiClient(ctx, log)
	if err != nil {
		return err
	}
	st := store.New(store.WithLogger(log))
	p := pipeline.New(pipeline.Deps{
		Extractor: client,
		Titler:    client,
		Store:     st,
		Logger:    log,
		Timeouts:  a.timeouts(),
	})
	srv := server.New(server.Options{
		Config:    a.cfg.Server,
		Timeouts:  a.timeouts(),
		Pipeline:  p,
		Extractor: client,
		Titler:    client,
		Store:     st,
		Logger:    log,
	})
	log.Info("http api starting", zap.String("provider", a.cfg.Provider))
	return srv.ListenAndServe(ctx)
}
