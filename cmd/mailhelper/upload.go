package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

func (c *cli) newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an attachment to object storage",
		Long:  "Upload a file to the S3 bucket and print the s3:// path to pass as an attachment.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.storageEnabled() {
				return errors.New("object storage is not configured: set S3_BUCKET")
			}

			ctx := cmd.Context()
			d := &deps{}
			defer d.Close()
			if err := c.connectOptional(ctx, d); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := d.store.Put(ctx, f.Name(), f)
			if err != nil {
				return err
			}
			c.log.InfoContext(ctx, "attachment uploaded",
				"key", info.Key,
				"content_type", info.ContentType,
				"size", info.Size,
			)
			fmt.Fprintln(cmd.OutOrStdout(), mailer.ObjectScheme+info.Key)
			return nil
		},
	}
}
