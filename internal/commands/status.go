package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, source health, and recent sync jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	st, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	bc, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	// Probe both dependencies in parallel.
	var storeErr, backendErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		storeErr = st.Ping(gctx)
		return nil
	})
	g.Go(func() error {
		backendErr = bc.Ping(gctx)
		return nil
	})
	_ = g.Wait()

	bold := color.New(color.Bold)
	_, _ = bold.Println("Connectivity:")
	printProbe("store", storeErr)
	printProbe("backend", backendErr)
	fmt.Println()

	if backendErr == nil {
		report, err := bc.GetHealthStatus(ctx)
		if err != nil {
			color.Red("  failed to read source health: %v", err)
		} else {
			_, _ = bold.Println("Sources:")
			for _, s := range report.Sources {
				printSource(s)
			}
			fmt.Printf("\n  Overall: %s\n\n", colorHealth(types.OverallHealth(report.Sources)))
		}
	}

	logs, err := st.RecentSyncLogs(ctx, 5)
	if err != nil {
		return fmt.Errorf("listing sync logs: %w", err)
	}
	if len(logs) > 0 {
		_, _ = bold.Println("Recent Sync Jobs:")
		for _, l := range logs {
			statusStr := string(l.Status)
			switch l.Status {
			case types.SyncCompleted:
				statusStr = color.GreenString(statusStr)
			case types.SyncFailed:
				statusStr = color.RedString(statusStr)
			case types.SyncRunning:
				statusStr = color.CyanString(statusStr)
			}
			fmt.Printf("  %-28s %-20s %-10s %s\n",
				l.ID, statusStr, l.TriggerType, l.CreatedAt.Format(time.RFC3339))
		}
		fmt.Println()
	}
	return nil
}

func printProbe(name string, err error) {
	if err != nil {
		color.Red("  ✗ %s: %v", name, err)
		return
	}
	color.Green("  ✓ %s: ok", name)
}

func printSource(s types.SourceHealth) {
	switch s.Status {
	case types.HealthHealthy:
		color.Green("  ✓ %s (%d alerts)", s.Source, s.AlertCount)
	case types.HealthDegraded:
		color.Yellow("  ○ %s (%d alerts) %s", s.Source, s.AlertCount, s.Message)
	default:
		color.Red("  ✗ %s %s", s.Source, s.Message)
	}
}

func colorHealth(level types.HealthLevel) string {
	switch level {
	case types.HealthHealthy:
		return color.GreenString(string(level))
	case types.HealthDegraded:
		return color.YellowString(string(level))
	default:
		return color.RedString(string(level))
	}
}
