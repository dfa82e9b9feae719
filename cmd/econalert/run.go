package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"econalert/internal/app"
)

func newRunCmd(f *rootFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one pass: fetch, filter, notify, persist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(f.config)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.RunOnce(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: %d event(s) would be notified\n", rep.Notified)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the alerts instead of sending them; leave the ledger untouched")
	return cmd
}
