package main

import (
	"github.com/spf13/cobra"

	"econalert/internal/app"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run passes on the configured schedule until interrupted",
		Long: `serve runs a pass at startup and then on every tick of schedule.spec
(cron syntax, seconds optional, or @every <duration>). A tick that arrives
while a pass is still running is skipped. Edits to the config file apply from
the next pass on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(f.config)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
}
