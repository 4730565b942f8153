package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) newSendTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-test <address>",
		Short: "Send the built-in test email",
		Long:  "Send the built-in test email to address through the configured transport. The address is also the sender.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := &deps{}
			defer d.Close()

			m, err := c.newMailer(ctx, d, nil)
			if err != nil {
				return err
			}
			results, err := m.SendTest(ctx, args[0])
			printResults(cmd.OutOrStdout(), results)
			return err
		},
	}
}
