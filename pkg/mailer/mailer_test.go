package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailhelper/pkg/content"
)

// MockSender is a mock implementation of Sender interface.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// recordingSender keeps every email it is given.
type recordingSender struct {
	fail   map[string]error
	emails []*Email
	mu     sync.Mutex
}

func (s *recordingSender) Send(_ context.Context, email *Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, email)
	if s.fail != nil {
		return s.fail[email.To[0]]
	}
	return nil
}

func (s *recordingSender) sent() []*Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Email(nil), s.emails...)
}

func sequentialIDs() Option {
	var (
		mu sync.Mutex
		n  int
	)
	return WithMessageIDs(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("msg-%d", n)
	})
}

func TestMailer_Send_PerRecipient(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := New(sender, Config{}, sequentialIDs())

	results, err := m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com", "", "bob@example.com"},
		From:        "Team <team@example.com>",
		Subject:     "Hi {{NAME}}",
		Message:     "Hello {{NAME}}",
		ContentVars: Vars{"NAME": "friend"},
		SubjectVars: Vars{"NAME": "there"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	emails := sender.sent()
	require.Len(t, emails, 2)

	for i, to := range []string{"alice@example.com", "bob@example.com"} {
		email := emails[i]
		require.Equal(t, []string{to}, email.To)
		require.Equal(t, fmt.Sprintf("msg-%d", i+1), email.ID)
		require.Equal(t, "Hi there", email.Subject)
		require.Equal(t, "<p>Hello friend</p>", email.HTML)
		require.Equal(t, "Hello friend", email.Text)
		require.Equal(t, "Team <team@example.com>", email.From)

		require.Equal(t, to, results[i].Recipient)
		require.Equal(t, email.ID, results[i].MessageID)
		require.Equal(t, "Hi there", results[i].Subject)
		require.True(t, results[i].OK())
		require.False(t, results[i].SentAt.IsZero())
	}
}

func TestMailer_Send_Headers(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := New(sender, Config{})

	_, err := m.Send(context.Background(), SendParams{
		To:      []string{"alice@example.com"},
		From:    "team@example.com",
		CC:      []string{"c1@example.com", "c2@example.com"},
		BCC:     []string{"b@example.com"},
		Subject: "Subject",
		Message: "Body",
	})
	require.NoError(t, err)

	require.Equal(t, []string{
		"MIME-Version: 1.0",
		"Content-Type: text/html;charset=utf-8",
		"From: team@example.com",
		"Reply-To: team@example.com",
		"Return-Path: team@example.com",
		"CC: c1@example.com,c2@example.com",
		"BCC: b@example.com",
	}, sender.sent()[0].Headers)
}

func TestMailer_Send_CustomHeadersComeFirst(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := New(sender, Config{})

	_, err := m.Send(context.Background(), SendParams{
		To:      []string{"alice@example.com"},
		From:    "team@example.com",
		Subject: "Subject",
		Message: "Plain body",
		Headers: []string{"Content-Type: text/plain;charset=utf-8", "X-Campaign: spring"},
	})
	require.NoError(t, err)

	email := sender.sent()[0]
	require.Equal(t, []string{
		"Content-Type: text/plain;charset=utf-8",
		"X-Campaign: spring",
		"From: team@example.com",
		"Reply-To: team@example.com",
		"Return-Path: team@example.com",
	}, email.Headers)
	require.Empty(t, email.HTML)
	require.Equal(t, "<p>Plain body</p>", email.Text)
}

func TestMailer_Send_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params SendParams
		err    error
	}{
		{
			name:   "no recipient",
			params: SendParams{Subject: "S", Message: "M"},
			err:    ErrNoRecipient,
		},
		{
			name:   "blank recipients",
			params: SendParams{To: []string{"", "  "}, Subject: "S", Message: "M"},
			err:    ErrNoRecipient,
		},
		{
			name:   "no subject",
			params: SendParams{To: []string{"a@example.com"}, Message: "M"},
			err:    ErrNoSubject,
		},
		{
			name:   "no content",
			params: SendParams{To: []string{"a@example.com"}, Subject: "S"},
			err:    ErrNoContent,
		},
		{
			name:   "recipient is checked first",
			params: SendParams{},
			err:    ErrNoRecipient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockSender := &MockSender{}
			m := New(mockSender, Config{})

			results, err := m.Send(context.Background(), tt.params)
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, results)
			mockSender.AssertNumberOfCalls(t, "Send", 0)
		})
	}
}

func TestMailer_Send_Template(t *testing.T) {
	t.Parallel()

	fs := fstest.MapFS{
		"emails/welcome.md": &fstest.MapFile{
			Data: []byte("---\nSubject: Welcome {{NAME}}\n---\nHello **{{.Data.Name}}**, code {{.Vars.CODE}}.\n"),
		},
	}

	sender := &recordingSender{}
	m := New(sender, Config{}, WithTemplates(fs))

	_, err := m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com"},
		Message:     "emails/welcome.md",
		MessageType: MessageTemplate,
		Data:        map[string]string{"Name": "Alice"},
		ContentVars: Vars{"CODE": "42"},
		SubjectVars: Vars{"NAME": "Alice"},
	})
	require.NoError(t, err)

	email := sender.sent()[0]
	require.Equal(t, "Welcome Alice", email.Subject)
	require.Equal(t, "<p>Hello <strong>Alice</strong>, code 42.</p>", email.HTML)
	require.Equal(t, "Hello **Alice**, code 42.\n", email.Text)
}

func TestMailer_Send_TemplateShortcodeKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		vars Vars
		want string
	}{
		{"hyphenated key", "Hello {{FIRST-NAME}}", Vars{"FIRST-NAME": "Ann"}, "Hello Ann"},
		{"dotted key", "Mail {{user.name}}", Vars{"user.name": "ann@example.com"}, "Mail ann@example.com"},
		{"bound keyword", "{{PRICE}} {{end}}", Vars{"PRICE": "5", "end": "."}, "5 ."},
		{"unbound keyword stays an action", "{{if .Data}}yes{{end}} {{PRICE}}", Vars{"PRICE": "5"}, "yes 5"},
		{"unknown key kept", "Hi {{MISSING-KEY}}", Vars{"PRICE": "5"}, "Hi {{MISSING-KEY}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender := &recordingSender{}
			m := New(sender, Config{}, WithTemplates(fstest.MapFS{
				"t.html": &fstest.MapFile{Data: []byte(tt.body)},
			}))

			_, err := m.Send(context.Background(), SendParams{
				To:          []string{"ann@example.com"},
				Subject:     "S",
				Message:     "t.html",
				MessageType: MessageTemplate,
				Data:        map[string]string{"Plan": "pro"},
				ContentVars: tt.vars,
			})
			require.NoError(t, err)
			require.Equal(t, tt.want, sender.sent()[0].HTML)
		})
	}
}

func TestMailer_Send_TemplateSubjectOverride(t *testing.T) {
	t.Parallel()

	fs := fstest.MapFS{
		"note.html": &fstest.MapFile{Data: []byte("---\nSubject: From file\n---\n<p>Note</p>")},
	}

	sender := &recordingSender{}
	m := New(sender, Config{})

	_, err := m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com"},
		Subject:     "Given",
		Message:     "note.html",
		MessageType: MessageTemplate,
		TemplateFS:  fs,
	})
	require.NoError(t, err)
	require.Equal(t, "Given", sender.sent()[0].Subject)
}

func TestMailer_Send_TemplateWithLayout(t *testing.T) {
	t.Parallel()

	fs := fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{Data: []byte(`<div class="mail">{{.Content}}</div>`)},
		"hello.md":          &fstest.MapFile{Data: []byte("---\nSubject: Hello\n---\nHi")},
	}

	sender := &recordingSender{}
	m := New(sender, Config{DefaultLayout: "base.html"}, WithTemplates(fs))

	_, err := m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com"},
		Message:     "hello.md",
		MessageType: MessageTemplate,
	})
	require.NoError(t, err)
	require.Equal(t, "<div class=\"mail\">\n<p>Hi</p>\n</div>", sender.sent()[0].HTML)

	_, err = m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com"},
		Message:     "hello.md",
		MessageType: MessageTemplate,
		Layout:      "frame.html",
	})
	require.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestMailer_Send_InvalidTemplatePath(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, Config{}, WithTemplates(fstest.MapFS{}))

	_, err := m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com"},
		Subject:     "S",
		Message:     "missing.html",
		MessageType: MessageTemplate,
	})
	require.ErrorIs(t, err, ErrInvalidTemplatePath)
	mockSender.AssertNumberOfCalls(t, "Send", 0)
}

func TestMailer_Send_Post(t *testing.T) {
	t.Parallel()

	src := content.MapSource{
		7: `Hi "there"`,
		8: `<p onclick="x()">Unsafe</p>`,
	}

	tests := []struct {
		name     string
		ref      string
		sanitize bool
		html     string
		err      error
	}{
		{name: "found", ref: "7", html: "<p>Hi “there”</p>"},
		{name: "sanitized", ref: "8", sanitize: true, html: "<p>Unsafe</p>"},
		{name: "missing", ref: "9", err: ErrNoContent},
		{name: "not a number", ref: "seven", err: ErrNoContent},
		{name: "not positive", ref: "0", err: ErrNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender := &recordingSender{}
			m := New(sender, Config{SanitizePosts: tt.sanitize}, WithContentSource(src))

			_, err := m.Send(context.Background(), SendParams{
				To:          []string{"alice@example.com"},
				Subject:     "Post",
				Message:     tt.ref,
				MessageType: MessagePost,
			})
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.Empty(t, sender.sent())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.html, sender.sent()[0].HTML)
		})
	}
}

type failingSource struct{}

func (failingSource) Content(context.Context, int64) (string, error) {
	return "", errors.New("database is down")
}

func TestMailer_Send_PostSourceError(t *testing.T) {
	t.Parallel()

	m := New(&recordingSender{}, Config{}, WithContentSource(failingSource{}))

	_, err := m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com"},
		Subject:     "Post",
		Message:     "1",
		MessageType: MessagePost,
	})
	require.ErrorContains(t, err, "database is down")
}

func TestMailer_Send_Component(t *testing.T) {
	t.Parallel()

	component := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>Component {{NAME}}</p>")
		return err
	})

	sender := &recordingSender{}
	m := New(sender, Config{})

	_, err := m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com"},
		Subject:     "Component",
		Component:   component,
		ContentVars: Vars{"NAME": "Alice"},
	})
	require.NoError(t, err)
	require.Equal(t, "<p>Component Alice</p>", sender.sent()[0].HTML)
}

func TestMailer_Send_ComponentError(t *testing.T) {
	t.Parallel()

	component := templ.ComponentFunc(func(context.Context, io.Writer) error {
		return errors.New("boom")
	})

	m := New(&recordingSender{}, Config{})

	_, err := m.Send(context.Background(), SendParams{
		To:        []string{"alice@example.com"},
		Subject:   "Component",
		Component: component,
	})
	require.ErrorIs(t, err, ErrRenderFailed)
}

func TestMailer_Send_FailureDoesNotStopLoop(t *testing.T) {
	t.Parallel()

	transportErr := errors.New("mailbox unavailable")
	mockSender := &MockSender{}
	mockSender.On("Send", mock.Anything, mock.MatchedBy(func(e *Email) bool {
		return e.To[0] == "bad@example.com"
	})).Return(transportErr)
	mockSender.On("Send", mock.Anything, mock.Anything).Return(nil)

	m := New(mockSender, Config{})

	results, err := m.Send(context.Background(), SendParams{
		To:      []string{"a@example.com", "bad@example.com", "c@example.com"},
		Subject: "S",
		Message: "M",
	})

	require.ErrorIs(t, err, ErrSendFailed)
	require.ErrorIs(t, err, transportErr)
	require.ErrorContains(t, err, "bad@example.com")
	require.Len(t, results, 3)

	require.True(t, results[0].OK())
	require.Equal(t, StatusFailed, results[1].Status)
	require.ErrorIs(t, results[1].Err, transportErr)
	require.True(t, results[2].OK())

	mockSender.AssertNumberOfCalls(t, "Send", 3)
}

func TestMailer_Send_CanceledContext(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := m.Send(ctx, SendParams{
		To:      []string{"a@example.com"},
		Subject: "S",
		Message: "M",
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
	mockSender.AssertNumberOfCalls(t, "Send", 0)
}

func TestMailer_Send_Hooks(t *testing.T) {
	t.Parallel()

	var (
		after []Result
		ids   []string
	)

	hooks := NewHooks().
		OnSubject(func(_ context.Context, s string) string { return s + " [1]" }).
		OnSubject(func(_ context.Context, s string) string { return s + " [2]" }).
		OnContent(func(_ context.Context, s string) string { return strings.ToUpper(s) }).
		OnFrom(func(context.Context, string) string { return "noreply@example.com" }).
		OnHeaders(func(_ context.Context, h []string) []string { return append(h, "X-Hooked: yes") }).
		BeforeSend(func(ctx context.Context, e *Email) {
			ids = append(ids, MessageIDFromContext(ctx))
			e.Tags = SimpleTags("hooked")
		}).
		AfterSend(func(_ context.Context, r Result, e *Email) {
			after = append(after, r)
		})

	sender := &recordingSender{}
	m := New(sender, Config{}, WithHooks(hooks), sequentialIDs())

	_, err := m.Send(context.Background(), SendParams{
		To:          []string{"alice@example.com"},
		From:        "team@example.com",
		Subject:     "Hi {{NAME}}",
		Message:     "hello",
		SubjectVars: Vars{"NAME": "Alice"},
	})
	require.NoError(t, err)

	email := sender.sent()[0]
	require.Equal(t, "Hi Alice [1] [2]", email.Subject)
	require.Equal(t, "<P>HELLO</P>", email.HTML)
	require.Equal(t, "noreply@example.com", email.From)
	require.Contains(t, email.Headers, "X-Hooked: yes")
	require.Contains(t, email.Tags, "hooked")

	require.Equal(t, []string{"msg-1"}, ids)
	require.Len(t, after, 1)
	require.Equal(t, "alice@example.com", after[0].Recipient)
	require.Same(t, m.Hooks(), hooks)
}

func TestMailer_Send_Attachments(t *testing.T) {
	t.Parallel()

	loader := attachmentLoaderFunc(func(_ context.Context, p string) (Attachment, error) {
		if p == "missing.pdf" {
			return Attachment{}, ErrAttachmentFailed
		}
		return Attachment{Path: p, Filename: p, Content: []byte("data")}, nil
	})

	sender := &recordingSender{}
	m := New(sender, Config{}, WithAttachmentLoader(loader))

	_, err := m.Send(context.Background(), SendParams{
		To:          []string{"a@example.com", "b@example.com"},
		Subject:     "Files",
		Message:     "See attached",
		Attachments: []string{"report.pdf", "missing.pdf"},
	})
	require.NoError(t, err)

	for _, e := range sender.sent() {
		require.Len(t, e.Attachments, 1)
		require.Equal(t, "report.pdf", e.Attachments[0].Filename)
	}
}

type attachmentLoaderFunc func(ctx context.Context, path string) (Attachment, error)

func (f attachmentLoaderFunc) Load(ctx context.Context, path string) (Attachment, error) {
	return f(ctx, path)
}

func TestMailer_SendTest(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := New(sender, Config{DefaultLayout: "base.html"}, WithTemplates(fstest.MapFS{}))

	results, err := m.SendTest(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.Len(t, results, 1)

	email := sender.sent()[0]
	require.Equal(t, []string{"admin@example.com"}, email.To)
	require.Equal(t, "admin@example.com", email.From)
	require.Equal(t, "Test email for admin@example.com", email.Subject)
	require.Contains(t, email.HTML, "This is a test email sent to admin@example.com.")
	require.Contains(t, email.HTML, "<!DOCTYPE html>")
	require.Contains(t, email.Text, "It works")
	require.NotContains(t, email.Text, "font-family")
	require.Contains(t, email.Headers, "From: admin@example.com")
	require.Contains(t, email.Headers, "Content-Type: text/html;charset=utf-8")
}

func TestMailer_Dispatch(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := New(sender, Config{})
	ctx := context.Background()

	n := m.NewNotification().
		SetTo("a@example.com").
		SetSubject("Prebuilt")
	require.NoError(t, n.SetContent(ctx, "Body", MessageContent))
	n.SetHeaders()

	results, err := m.Dispatch(ctx, n)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Prebuilt", sender.sent()[0].Subject)
}

func TestMailer_SendRaw(t *testing.T) {
	t.Parallel()

	t.Run("sends", func(t *testing.T) {
		t.Parallel()

		mockSender := &MockSender{}
		mockSender.On("Send", mock.Anything, mock.MatchedBy(func(e *Email) bool {
			return e.ID != "" && e.Subject == "Raw"
		})).Return(nil)

		m := New(mockSender, Config{})
		err := m.SendRaw(context.Background(), &Email{
			To:      []string{"a@example.com"},
			Subject: "Raw",
			Text:    "text only",
		})
		require.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("validates", func(t *testing.T) {
		t.Parallel()

		m := New(&MockSender{}, Config{})
		ctx := context.Background()

		require.ErrorIs(t, m.SendRaw(ctx, &Email{Subject: "S", HTML: "h"}), ErrNoRecipient)
		require.ErrorIs(t, m.SendRaw(ctx, &Email{To: []string{"a@example.com"}, HTML: "h"}), ErrNoSubject)
		require.ErrorIs(t, m.SendRaw(ctx, &Email{To: []string{"a@example.com"}, Subject: "S"}), ErrNoContent)
	})

	t.Run("wraps transport errors", func(t *testing.T) {
		t.Parallel()

		transportErr := errors.New("rejected")
		mockSender := &MockSender{}
		mockSender.On("Send", mock.Anything, mock.Anything).Return(transportErr)

		m := New(mockSender, Config{})
		err := m.SendRaw(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "S", HTML: "h"})
		require.ErrorIs(t, err, ErrSendFailed)
		require.ErrorIs(t, err, transportErr)
	})
}
