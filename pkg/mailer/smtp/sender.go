package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"slices"

	mail "github.com/xhit/go-simple-mail/v2"

	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

// ErrNoSender is returned when neither the email nor the config names a sender.
var ErrNoSender = errors.New("smtp: no sender address")

// Sender implements mailer.Sender over an SMTP relay.
// A connection is opened per email.
type Sender struct {
	connect func() (*mail.SMTPClient, error)
	config  Config
}

// New creates an SMTP sender.
func New(cfg Config) *Sender {
	s := &Sender{config: cfg}
	s.connect = s.server().Connect
	return s
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := Message(email, s.fallbackFrom())
	if err != nil {
		return err
	}

	client, err := s.connect()
	if err != nil {
		return fmt.Errorf("smtp: failed to connect to %s:%d: %w", s.config.Host, s.config.Port, err)
	}
	defer client.Close()

	if err := msg.Send(client); err != nil {
		return fmt.Errorf("smtp: failed to send email: %w", err)
	}

	return nil
}

// Message converts an Email into a MIME message.
// fallbackFrom is used when the email names no sender; an empty value fails with ErrNoSender.
// The ses transport reuses it for raw messages.
func Message(email *mailer.Email, fallbackFrom string) (*mail.Email, error) {
	h := email.Header()

	from := email.Sender()
	if from == "" {
		from = fallbackFrom
	}
	if from == "" {
		return nil, ErrNoSender
	}

	// The library rejects an address listed twice across To, Cc and Bcc.
	to := unique(email.To)
	cc := without(unique(h.CC), to)
	bcc := without(without(unique(h.BCC), to), cc)

	msg := mail.NewMSG()
	msg.SetFrom(from).
		AddTo(to...).
		SetSubject(email.Subject)

	if len(cc) > 0 {
		msg.AddCc(cc...)
	}
	if len(bcc) > 0 {
		msg.AddBcc(bcc...)
	}
	if h.ReplyTo != "" {
		msg.SetReplyTo(h.ReplyTo)
	}
	if h.ReturnPath != "" {
		msg.SetReturnPath(h.ReturnPath)
	}

	switch {
	case email.HTML != "" && email.Text != "":
		msg.SetBody(mail.TextPlain, email.Text)
		msg.AddAlternative(mail.TextHTML, email.HTML)
	case email.HTML != "":
		msg.SetBody(mail.TextHTML, email.HTML)
	default:
		msg.SetBody(mail.TextPlain, email.Text)
	}

	for _, name := range sortedKeys(h.Extra) {
		msg.AddHeader(name, h.Extra[name])
	}

	for _, a := range email.Attachments {
		msg.Attach(&mail.File{
			Name:     a.Filename,
			MimeType: a.ContentType,
			Data:     a.Content,
			Inline:   a.ContentID != "",
		})
	}

	if msg.Error != nil {
		return nil, fmt.Errorf("smtp: invalid message: %w", msg.Error)
	}

	return msg, nil
}

func (s *Sender) fallbackFrom() string {
	if s.config.SenderEmail == "" {
		return ""
	}
	return mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
}

func (s *Sender) server() *mail.SMTPServer {
	srv := mail.NewSMTPClient()

	srv.Host = s.config.Host
	srv.Port = s.config.Port
	srv.Username = s.config.Username
	srv.Password = s.config.Password
	if s.config.Timeout > 0 {
		srv.ConnectTimeout = s.config.Timeout
		srv.SendTimeout = s.config.Timeout
	}

	switch s.config.Encryption {
	case EncryptionTLS:
		srv.Encryption = mail.EncryptionSSLTLS
	case EncryptionStartTLS:
		srv.Encryption = mail.EncryptionSTARTTLS
	default:
		srv.Encryption = mail.EncryptionNone
	}
	srv.TLSConfig = &tls.Config{ServerName: srv.Host, InsecureSkipVerify: !s.config.CertValidation} //nolint:gosec // opt-in for relays with self-signed certs

	switch s.config.AuthType {
	case AuthLogin:
		srv.Authentication = mail.AuthLogin
	case AuthCramMD5:
		srv.Authentication = mail.AuthCRAMMD5
	case AuthNone:
		srv.Authentication = mail.AuthNone
	default:
		srv.Authentication = mail.AuthPlain
	}

	return srv
}

func unique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// without drops every value contained in remove.
func without(values, remove []string) []string {
	return slices.DeleteFunc(values, func(v string) bool {
		return slices.Contains(remove, v)
	})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
