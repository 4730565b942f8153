// Package ses implements mailer.Sender on top of the AWS SES v2 API.
package ses

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/mailhelper/pkg/mailer"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/smtp"
)

const charset = "UTF-8"

var (
	// ErrNoSender is returned when neither the email nor the config names a sender.
	ErrNoSender = errors.New("ses: no sender address")
	// ErrRejected wraps errors returned by the SES API.
	ErrRejected = errors.New("ses: message rejected")
)

// SendEmailAPI is the SES v2 operation the sender depends on.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender implements mailer.Sender using AWS SES v2.
// Emails with attachments are sent as raw MIME messages.
type Sender struct {
	client SendEmailAPI
	config Config
}

// New loads the AWS configuration and creates an SES client.
// Static credentials are used when both keys are set; otherwise the default chain applies.
func New(ctx context.Context, cfg Config) (*Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses: failed to load aws config: %w", err)
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Sender around an existing client.
func NewWithClient(client SendEmailAPI, cfg Config) *Sender {
	return &Sender{client: client, config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	input, err := s.input(email)
	if err != nil {
		return err
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%w: %s: %s", ErrRejected, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return fmt.Errorf("ses: failed to send email: %w", err)
	}

	return nil
}

func (s *Sender) input(email *mailer.Email) (*sesv2.SendEmailInput, error) {
	h := email.Header()

	from := email.Sender()
	if from == "" && s.config.SenderEmail != "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}
	if from == "" {
		return nil, ErrNoSender
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses:  email.To,
			CcAddresses:  h.CC,
			BccAddresses: h.BCC,
		},
		EmailTags: convertTags(email.Tags),
	}
	if h.ReplyTo != "" {
		input.ReplyToAddresses = []string{h.ReplyTo}
	}
	if s.config.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(s.config.ConfigurationSet)
	}

	if len(email.Attachments) > 0 {
		msg, err := smtp.Message(email, from)
		if err != nil {
			return nil, err
		}
		input.Content = &types.EmailContent{
			Raw: &types.RawMessage{Data: []byte(msg.GetMessage())},
		}
		return input, nil
	}

	body := &types.Body{}
	if email.HTML != "" {
		body.Html = &types.Content{Data: aws.String(email.HTML), Charset: aws.String(charset)}
	}
	if email.Text != "" {
		body.Text = &types.Content{Data: aws.String(email.Text), Charset: aws.String(charset)}
	}

	msg := &types.Message{
		Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String(charset)},
		Body:    body,
	}
	for name, value := range h.Extra {
		msg.Headers = append(msg.Headers, types.MessageHeader{Name: aws.String(name), Value: aws.String(value)})
	}

	input.Content = &types.EmailContent{Simple: msg}
	return input, nil
}

// convertTags maps tags onto SES message tags. Presence-only tags get the value "true".
func convertTags(tags mailer.Tags) []types.MessageTag {
	if len(tags) == 0 {
		return nil
	}

	out := make([]types.MessageTag, 0, len(tags))
	for name, v := range tags {
		var value string
		switch val := v.(type) {
		case nil, struct{}:
			value = "true"
		case string:
			value = val
		case bool:
			value = strconv.FormatBool(val)
		case int:
			value = strconv.Itoa(val)
		default:
			value = fmt.Sprint(val)
		}
		out = append(out, types.MessageTag{Name: aws.String(name), Value: aws.String(value)})
	}
	return out
}
