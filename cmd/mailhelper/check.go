package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailhelper/pkg/db"
	"github.com/dmitrymomot/mailhelper/pkg/health"
	"github.com/dmitrymomot/mailhelper/pkg/redis"
)

func (c *cli) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check Postgres and Redis connectivity",
		Long:  "Connect to the configured backends and report their health. Exits non-zero when any check fails.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := &deps{}
			defer d.Close()

			checks := health.Checks{}
			if err := c.connectDB(ctx, d); err != nil {
				checks["postgres"] = func(context.Context) error { return err }
			} else {
				checks["postgres"] = db.Healthcheck(d.pool)
			}
			if c.cfg.Redis.Enabled() {
				if err := c.connectOptional(ctx, d); err != nil {
					checks["redis"] = func(context.Context) error { return err }
				} else {
					checks["redis"] = redis.Healthcheck(d.redis)
				}
			}

			resp, err := health.Run(ctx, checks, health.WithLogger(c.log))
			for _, name := range slices.Sorted(maps.Keys(resp.Checks)) {
				chk := resp.Checks[name]
				if chk.Error != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", name, chk.Status, chk.Error)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, chk.Status)
				}
			}
			return err
		},
	}
}
