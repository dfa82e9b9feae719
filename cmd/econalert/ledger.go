package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"econalert/internal/config"
	"econalert/internal/ledger"
	logx "econalert/pkg/logx"
)

func newLedgerCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or reset the ledger of announced events",
	}
	cmd.AddCommand(newLedgerListCmd(f), newLedgerResetCmd(f))
	return cmd
}

// ledgerPath reads only the ledger location; credentials are not required.
func ledgerPath(f *rootFlags) (string, error) {
	cfg, err := config.NewManager(f.config).Parse()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	if cfg.Ledger.Path == "" {
		return "", fmt.Errorf("%w: ledger.path", config.ErrMissing)
	}
	return cfg.Ledger.Path, nil
}

func newLedgerListCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the identifiers of announced events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ledgerPath(f)
			if err != nil {
				return err
			}
			ids, err := ledger.Load(path)
			if err != nil {
				return err
			}
			out := make([]string, 0, len(ids))
			for id := range ids {
				out = append(out, id)
			}
			sort.Strings(out)

			w := cmd.OutOrStdout()
			for _, id := range out {
				fmt.Fprintln(w, id)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d id(s) in %s\n", len(out), path)
			return nil
		},
	}
}

func newLedgerResetCmd(f *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget every announced event (they may be announced again)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ledgerPath(f)
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Forget every event recorded in %s? [y/N] ", path)) {
				return errors.New("refusing to reset without --yes")
			}
			led, err := ledger.Open(path, logx.NewConsole("warn"))
			if err != nil {
				return err
			}
			n := led.Len()
			if err := led.Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ledger %s reset (%d id(s) dropped)\n", path, n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

// confirm asks on an interactive stdin. Anything but y/yes, or a
// non-terminal stdin, is a no.
func confirm(cmd *cobra.Command, prompt string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
