package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"econalert/internal/app"
	"econalert/internal/config"
)

func newConfigCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Config file helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the config, then print a redacted summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewManager(f.config).Load()
			if err != nil {
				return err
			}
			if _, _, err := app.ParseSchedule(cfg.Schedule); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			token := "unset"
			if cfg.Telegram.Token != "" {
				token = "set"
			}
			fmt.Fprintf(w, "telegram.token     %s\n", token)
			fmt.Fprintf(w, "telegram.chat_id   %s\n", cfg.Telegram.ChatID)
			fmt.Fprintf(w, "feed.url           %s\n", config.RedactURL(cfg.Feed.URL))
			fmt.Fprintf(w, "filter.impacts     %s\n", strings.Join(cfg.Filter.Impacts, ", "))
			fmt.Fprintf(w, "filter.countries   %s\n", strings.Join(cfg.Filter.Countries, ", "))
			fmt.Fprintf(w, "alert.window       %g..%g min\n", cfg.Alert.WindowMin, cfg.Alert.WindowMax)
			fmt.Fprintf(w, "alert.timezone     %s (%s)\n", cfg.Alert.TimezoneOffset, cfg.Alert.TimezoneLabel)
			fmt.Fprintf(w, "ledger.path        %s\n", cfg.Ledger.Path)
			fmt.Fprintf(w, "schedule           %s %s\n", cfg.Schedule.Spec, cfg.Schedule.Timezone)
			if cfg.Metrics.Listen != "" {
				fmt.Fprintf(w, "metrics.listen     %s\n", cfg.Metrics.Listen)
			}
			fmt.Fprintln(w, "ok")
			return nil
		},
	})
	return cmd
}
