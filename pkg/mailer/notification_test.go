package mailer

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestNotification_Setters(t *testing.T) {
	t.Parallel()

	m := New(&recordingSender{}, Config{DefaultLayout: "base.html"})

	n := m.NewNotification().
		SetTo(" a@example.com ", "", "b@example.com").
		SetFrom("team@example.com").
		SetCc("c@example.com").
		SetBcc().
		SetSubject("Hello").
		SetAttachments("", "report.pdf")

	require.Equal(t, []string{"a@example.com", "b@example.com"}, n.To())
	require.Equal(t, "team@example.com", n.From())
	require.Equal(t, "Hello", n.Subject())
	require.Equal(t, []string{"report.pdf"}, n.Attachments())
	require.Equal(t, "base.html", n.layout)

	n.SetLayout("")
	require.Equal(t, "base.html", n.layout)
	n.SetLayout("alt.html")
	require.Equal(t, "alt.html", n.layout)

	n.SetHeaders("X-One: 1", "  ")
	require.Equal(t, []string{
		"X-One: 1",
		"From: team@example.com",
		"Reply-To: team@example.com",
		"Return-Path: team@example.com",
		"CC: c@example.com",
	}, n.Headers())
}

func TestNotification_SetFromEmpty(t *testing.T) {
	t.Parallel()

	n := New(&recordingSender{}, Config{}).NewNotification().SetFrom("  ")
	require.Empty(t, n.From())
	require.Empty(t, n.Headers())
}

func TestNotification_SetVarsKeepsPreviousOnEmpty(t *testing.T) {
	t.Parallel()

	n := New(&recordingSender{}, Config{}).NewNotification()

	contentVars := Vars{"A": "1"}
	n.SetVars(contentVars, Vars{"B": "2"})
	n.SetVars(nil, Vars{})
	contentVars["A"] = "changed"

	require.Equal(t, Vars{"A": "1"}, n.contentVars)
	require.Equal(t, Vars{"B": "2"}, n.subjectVars)
}

func TestNotification_Validate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := New(&recordingSender{}, Config{}).NewNotification()
	require.ErrorIs(t, n.Validate(), ErrNoRecipient)

	n.SetTo("a@example.com")
	require.ErrorIs(t, n.Validate(), ErrNoSubject)

	n.SetSubject("  ")
	require.ErrorIs(t, n.Validate(), ErrNoSubject)

	n.SetSubject("S")
	require.ErrorIs(t, n.Validate(), ErrNoContent)

	require.NoError(t, n.SetContent(ctx, "Body", MessageContent))
	require.NoError(t, n.Validate())
}

func TestNotification_SetContentReplacesBody(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fs := fstest.MapFS{"t.md": &fstest.MapFile{Data: []byte("Hi")}}
	n := New(&recordingSender{}, Config{}, WithTemplates(fs)).NewNotification()

	require.NoError(t, n.SetContent(ctx, "t.md", MessageTemplate))
	require.Equal(t, "<p>Hi</p>", n.Content())
	require.Equal(t, "Hi", n.text)

	require.NoError(t, n.SetContent(ctx, "Plain body", MessageContent))
	require.Equal(t, "<p>Plain body</p>", n.Content())
	require.Empty(t, n.text)
}

func TestParseMessageType(t *testing.T) {
	t.Parallel()

	tests := map[string]MessageType{
		"template":  MessageTemplate,
		" Post ":    MessagePost,
		"content":   MessageContent,
		"":          MessageContent,
		"something": MessageContent,
	}

	for in, want := range tests {
		require.Equal(t, want, ParseMessageType(in), in)
	}
}

func TestDeliveryContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Empty(t, MessageIDFromContext(ctx))
	require.Empty(t, RecipientFromContext(ctx))

	_, ok := MessageIDExtractor()(ctx)
	require.False(t, ok)

	ctx = withDelivery(ctx, "msg-1", "a@example.com")
	require.Equal(t, "msg-1", MessageIDFromContext(ctx))
	require.Equal(t, "a@example.com", RecipientFromContext(ctx))

	attr, ok := MessageIDExtractor()(ctx)
	require.True(t, ok)
	require.Equal(t, "message_id", attr.Key)
	require.Equal(t, "msg-1", attr.Value.String())

	attr, ok = RecipientExtractor()(ctx)
	require.True(t, ok)
	require.Equal(t, "recipient", attr.Key)
	require.Equal(t, "a@example.com", attr.Value.String())
}
