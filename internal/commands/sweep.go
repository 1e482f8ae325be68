package commands

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/regpulse-io/regpulse/internal/searchcache"
)

// NewSweepCmd creates the sweep command. Deployments run it periodically
// (cron or a scheduler) to clear expired search cache rows in bulk; the
// server itself only expires entries lazily on read.
func NewSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired search cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep()
		},
	}
}

func runSweep() error {
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

	cache := searchcache.New(st, searchcache.WithTTL(cfg.CacheTTL()))
	removed := cache.Sweep(ctx)
	color.Green("Removed %d expired cache entries", removed)
	return nil
}
