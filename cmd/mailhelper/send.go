package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mailhelper/pkg/db"
	"github.com/dmitrymomot/mailhelper/pkg/deliverylog"
	"github.com/dmitrymomot/mailhelper/pkg/job"
	"github.com/dmitrymomot/mailhelper/pkg/mailer"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/tasks"
)

type sendFlags struct {
	to, cc, bcc  []string
	from         string
	subject      string
	message      string
	messageType  string
	layout       string
	headers      []string
	attachments  []string
	vars         map[string]string
	subjectVars  map[string]string
	tags         []string
	dataFile     string
	queue        bool
	queueName    string
	withPostgres bool
}

func (c *cli) newSendCmd() *cobra.Command {
	f := &sendFlags{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a notification",
		Long: `Send a notification directly or, with --queue, hand it to the worker.

Messages are literal content, a template path or a post id (--type post).
Post messages and --queue need DATABASE_CONN_URL. Queued sends are also
recorded in the delivery log, so run "mailhelper migrate" first.`,
		Example: `  mailhelper send --to alice@example.com --subject "Hi {{NAME}}" --subject-var NAME=Alice --message "Hello"
  mailhelper send --to bob@example.com --type template --message emails/welcome.md --data data.yaml
  mailhelper send --to ops@example.com --type post --message 42 --attach s3://attachments/9f.../report.pdf --queue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := f.params()
			if err != nil {
				return err
			}
			if !f.knownType() {
				c.log.Warn("unknown message type, sending as content", slog.String("type", f.messageType))
			}

			ctx := cmd.Context()
			d := &deps{}
			defer d.Close()

			if f.queue || p.MessageType == mailer.MessagePost || f.withPostgres {
				if err := c.connectDB(ctx, d); err != nil {
					return err
				}
			}

			if f.queue {
				payload, err := tasks.NewSendPayload(p)
				if err != nil {
					return err
				}
				enq, err := job.NewEnqueuer(d.pool, job.WithEnqueuerLogger(c.log))
				if err != nil {
					return err
				}
				var opts []job.EnqueueOption
				if f.queueName != "" {
					opts = append(opts, job.InQueue(f.queueName))
				}
				n, err := queueSend(ctx, d.pool, enq, payload, c.log, opts...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queued %d job(s)\n", n)
				return nil
			}

			if err := c.connectOptional(ctx, d); err != nil {
				return err
			}
			m, err := c.newMailer(ctx, d, nil)
			if err != nil {
				return err
			}
			results, err := m.Send(ctx, p)
			printResults(cmd.OutOrStdout(), results)
			return err
		},
	}

	fs := cmd.Flags()
	fs.StringSliceVar(&f.to, "to", nil, "recipient address (repeatable)")
	fs.StringSliceVar(&f.cc, "cc", nil, "carbon copy address")
	fs.StringSliceVar(&f.bcc, "bcc", nil, "blind carbon copy address")
	fs.StringVar(&f.from, "from", "", "sender, e.g. \"Team <team@example.com>\"")
	fs.StringVarP(&f.subject, "subject", "s", "", "subject; templates may set it in frontmatter")
	fs.StringVarP(&f.message, "message", "m", "", "body, template path or post id")
	fs.StringVarP(&f.messageType, "type", "t", string(mailer.MessageContent), "message type: content, template or post; anything else is sent as content")
	fs.StringVar(&f.layout, "layout", "", "layout for template messages")
	fs.StringArrayVar(&f.headers, "header", nil, "raw \"Name: value\" header line")
	fs.StringArrayVar(&f.attachments, "attach", nil, "attachment path or s3:// key")
	fs.StringToStringVar(&f.vars, "var", nil, "{{KEY}} value for the body")
	fs.StringToStringVar(&f.subjectVars, "subject-var", nil, "{{KEY}} value for the subject")
	fs.StringSliceVar(&f.tags, "tag", nil, "provider tag, name or name=value")
	fs.StringVar(&f.dataFile, "data", "", "YAML or JSON file with template data")
	fs.BoolVar(&f.queue, "queue", false, "enqueue for the worker instead of sending")
	fs.StringVar(&f.queueName, "queue-name", "", "queue for --queue jobs")
	fs.BoolVar(&f.withPostgres, "postgres", false, "connect to Postgres for post content even for other types")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

// queueSend enqueues one send job per recipient and records them as queued in
// the delivery log. Jobs and rows commit together or not at all.
func queueSend(ctx context.Context, starter db.TxStarter, enq tasks.TxEnqueuer, payload tasks.SendPayload, log *slog.Logger, opts ...job.EnqueueOption) (int, error) {
	to := compact(payload.To)
	tags := slices.Sorted(maps.Keys(payload.Tags))

	err := db.WithTx(ctx, starter, func(tx pgx.Tx) error {
		if err := tasks.EnqueueSendTx(ctx, enq, tx, payload, opts...); err != nil {
			return err
		}
		return deliverylog.New(tx, log).RecordQueued(ctx, payload.Subject, tags, to...)
	})
	if err != nil {
		return 0, err
	}
	return len(to), nil
}

// knownType reports whether --type names a message type. Unknown types are
// sent as content.
func (f *sendFlags) knownType() bool {
	switch mailer.MessageType(strings.ToLower(strings.TrimSpace(f.messageType))) {
	case mailer.MessageContent, mailer.MessageTemplate, mailer.MessagePost:
		return true
	}
	return false
}

func (f *sendFlags) params() (mailer.SendParams, error) {
	typ := mailer.ParseMessageType(f.messageType)

	p := mailer.SendParams{
		From:        f.from,
		Subject:     f.subject,
		Message:     f.message,
		MessageType: typ,
		Layout:      f.layout,
		To:          compact(f.to),
		CC:          compact(f.cc),
		BCC:         compact(f.bcc),
		Headers:     f.headers,
		Attachments: f.attachments,
		ContentVars: mailer.Vars(f.vars),
		SubjectVars: mailer.Vars(f.subjectVars),
		Tags:        parseTags(f.tags),
	}

	if f.dataFile != "" {
		data, err := readData(f.dataFile)
		if err != nil {
			return mailer.SendParams{}, err
		}
		p.Data = data
	}
	return p, nil
}

// readData decodes a YAML document; JSON files parse as YAML too.
func readData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	return data, nil
}

func parseTags(raw []string) mailer.Tags {
	if len(raw) == 0 {
		return nil
	}
	tags := make(mailer.Tags, len(raw))
	for _, t := range raw {
		name, value, ok := strings.Cut(strings.TrimSpace(t), "=")
		if name == "" {
			continue
		}
		if ok && value != "" {
			tags[name] = value
		} else {
			tags[name] = struct{}{}
		}
	}
	return tags
}

func compact(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func printResults(w io.Writer, results []mailer.Result) {
	if len(results) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tRECIPIENT\tMESSAGE ID\tERROR")
	for _, r := range results {
		var errText string
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Status, r.Recipient, r.MessageID, errText)
	}
	_ = tw.Flush()
}
