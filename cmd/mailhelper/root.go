package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailhelper/pkg/logger"
	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

const flushTimeout = 2 * time.Second

// cli carries state shared by subcommands once the root pre-run has loaded it.
type cli struct {
	cfg  config
	log  *slog.Logger
	load func() (config, error)
}

func newRootCmd() *cobra.Command {
	return newCLI(loadConfig).rootCmd()
}

func newCLI(load func() (config, error)) *cli {
	return &cli{load: load}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mailhelper",
		Short:         "Templated email notifications",
		Long:          "Send templated notifications through SMTP, SES or Resend and run the background delivery worker.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.load()
			if err != nil {
				return err
			}
			log, err := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log,
				mailer.MessageIDExtractor(),
				mailer.RecipientExtractor(),
			)
			if err != nil {
				return err
			}
			c.cfg, c.log = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Flush(flushTimeout)
		},
	}

	root.AddCommand(
		c.newSendCmd(),
		c.newSendTestCmd(),
		c.newWorkerCmd(),
		c.newUploadCmd(),
		c.newHistoryCmd(),
		c.newMigrateCmd(),
		c.newCheckCmd(),
	)
	return root
}
