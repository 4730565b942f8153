package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailhelper/pkg/deliverylog"
)

func (c *cli) newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <address>",
		Short: "List recorded deliveries to an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := &deps{}
			defer d.Close()
			if err := c.connectDB(ctx, d); err != nil {
				return err
			}

			entries, err := deliverylog.New(d.pool, c.log).ListByRecipient(ctx, args[0], limit)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of entries")
	return cmd
}

func printEntries(w io.Writer, entries []deliverylog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no deliveries recorded")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SENT AT\tSTATUS\tSUBJECT\tTAGS\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.SentAt.UTC().Format(time.RFC3339), e.Status, e.Subject, strings.Join(e.Tags, ","), e.Error)
	}
	_ = tw.Flush()
}
