package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/regpulse-io/regpulse/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "regpulse",
		Short: "Admin service for the regpulse regulatory-alerts platform",
		Long: `Regpulse keeps compliance teams ahead of government rulemaking.
This binary serves the admin API: agency statistics, alert deduplication,
source health, search index maintenance, and manual sync/backfill triggers.
Heavy lifting runs as stored procedures on the hosted data platform; this
layer validates, authorizes, and audits.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewServeCmd(),
		commands.NewStatusCmd(),
		commands.NewSweepCmd(),
		commands.NewMigrateCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
