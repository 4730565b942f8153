package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/mailhelper/pkg/mailer"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/logsender"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/resend"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/ses"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/smtp"
)

const (
	transportLog    = "log"
	transportSMTP   = "smtp"
	transportSES    = "ses"
	transportResend = "resend"
)

var errUnknownTransport = errors.New("unknown transport")

func newSender(ctx context.Context, cfg config, log *slog.Logger) (mailer.Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", transportLog:
		return logsender.New(log), nil
	case transportSMTP:
		return smtp.New(cfg.SMTP), nil
	case transportSES:
		s, err := ses.New(ctx, cfg.SES)
		if err != nil {
			return nil, err
		}
		return s, nil
	case transportResend:
		if cfg.Resend.APIKey == "" {
			return nil, errors.New("resend: RESEND_API_KEY is required")
		}
		s, err := resend.New(cfg.Resend)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w %q: want log, smtp, ses or resend", errUnknownTransport, cfg.Transport)
	}
}
