package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/lifeos/internal/cli/formatter"
	"github.com/alexanderramin/lifeos/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration and store the API key",
	}
	cmd.AddCommand(newConfigShowCmd(app), newConfigSetKeyCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Config == nil {
				return errors.New("no configuration loaded")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", formatter.Dim("# data dir:"), app.Config.DataDir)

			view := *app.Config
			lc := app.Config.LLMConfig()
			enabled, retries := lc.Enabled, lc.MaxRetries
			view.LLM = config.LLMSection{
				Enabled:    &enabled,
				LogCalls:   lc.LogCalls,
				Provider:   string(lc.Provider),
				Endpoint:   lc.Endpoint,
				Model:      lc.Model,
				TimeoutMs:  lc.TimeoutMs,
				MaxRetries: &retries,
			}
			data, err := yaml.Marshal(view)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			if err != nil {
				return err
			}

			key := "not set"
			if lc.APIKey != "" {
				key = "from LIFEOS_API_KEY"
			} else if app.Settings != nil {
				stored, err := app.Settings.APIKey(cmd.Context())
				if err != nil {
					return err
				}
				if stored != "" {
					key = "stored"
				}
			}
			fmt.Fprintf(out, "%s %s\n", formatter.Dim("# api key:"), key)
			return nil
		},
	}
}

func newConfigSetKeyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key [KEY]",
		Short: "Store the plan-generation API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			switch {
			case len(args) == 1:
				key = args[0]
			case app.interactive():
				if err := apiKeyForm(&key).Run(); err != nil {
					return err
				}
			default:
				return errors.New("api key required")
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return errors.New("api key is empty")
			}
			if err := app.Settings.SetAPIKey(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
			return nil
		},
	}
}
