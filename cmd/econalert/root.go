package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	config string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "econalert",
		Short: "Telegram alerts for upcoming economic calendar events",
		Long: `econalert polls an economic calendar feed, picks the events that match the
configured impact levels and currencies, and posts an alert to a Telegram chat
shortly before each release. Every event is announced once; the identifiers of
announced events are kept in a small JSON ledger file.

Credentials may come from the config file or the environment
(BOT_TOKEN, CHAT_ID, FEED_URL, ECONALERT_LEDGER).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&f.config, "config", "c", "", "path to config file (.json, .yaml)")

	cmd.AddCommand(
		newRunCmd(f),
		newServeCmd(f),
		newLedgerCmd(f),
		newConfigCmd(f),
	)
	return cmd
}
