package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/verbalist/internal/credentials"
)

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Saves provider API keys in ~/.verbalist/credentials.json.
A key in the config file or the environment takes precedence over the file.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			return usagef("usage: verbalist auth <login|logout|status>")
		},
	}
	cmd.AddCommand(a.authLoginCmd(), a.authLogoutCmd(), a.authStatusCmd())
	return cmd
}

func (a *app) authLoginCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an API key for the current provider",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			provider := a.cfg.Provider
			if strings.TrimSpace(key) == "" {
				fmt.Fprintf(a.stdout, "Paste your %s API key: ", provider)
				line, err := bufio.NewReader(a.stdin).ReadString('\n')
				if err != nil && !(errors.Is(err, io.EOF) && line != "") {
					return fmt.Errorf("read key: %w", err)
				}
				key = line
			}
			if err := a.creds.Set(provider, key); err != nil {
				return fmt.Errorf("save key: %w", err)
			}
			a.printer().OK("logged in to " + provider)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "API key (default: read from stdin)")
	return cmd
}

func (a *app) authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the saved API key of the current provider",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			provider := a.cfg.Provider
			pr := a.printer()
			ki, _ := a.creds.Resolve(provider, configuredKey(a.cfg), a.getenv)
			if ki != nil && ki.Source != credentials.SourceFile {
				pr.OK(fmt.Sprintf("key is provided by %s (nothing to delete)", a.describeSource(provider, ki.Source)))
				return nil
			}
			if err := a.creds.Delete(provider); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			pr.OK("logged out of " + provider)
			return nil
		},
	}
}

func (a *app) authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the current provider's API key comes from",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			provider := a.cfg.Provider
			pr := a.printer()
			ki, err := a.creds.Resolve(provider, configuredKey(a.cfg), a.getenv)
			if err != nil {
				return fmt.Errorf("read credentials: %w", err)
			}
			if ki == nil {
				fmt.Fprintln(a.stdout, pr.C(pr.Theme.Muted, "not logged in to "+provider))
				fmt.Fprintln(a.stdout, "Run: verbalist auth login")
				return nil
			}
			lines := []string{
				pr.C(pr.Theme.Title, provider),
				"key:    " + ki.Masked(),
				"source: " + a.describeSource(provider, ki.Source),
			}
			if !ki.CreatedAt.IsZero() {
				lines = append(lines, "saved:  "+humanize.RelTime(ki.CreatedAt, a.now(), "ago", "from now"))
			}
			lines = append(lines, "env override: "+strings.Join(credentials.EnvVars[provider], ", "))
			pr.Panel(lines)
			return nil
		},
	}
}

func (a *app) describeSource(provider, source string) string {
	switch source {
	case credentials.SourceEnv:
		for _, name := range credentials.EnvVars[provider] {
			if strings.TrimSpace(a.getenv(name)) != "" {
				return name + " env var"
			}
		}
		return "environment"
	case credentials.SourceConfig:
		return "config file"
	}
	return "credentials file"
}
