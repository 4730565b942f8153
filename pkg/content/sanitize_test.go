package content_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailhelper/pkg/content"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	out := content.Sanitize(`<p onclick="steal()">Hi <script>alert(1)</script><strong>there</strong> [button url="https://x"]</p>`)

	require.NotContains(t, out, "onclick")
	require.NotContains(t, out, "<script>")
	require.NotContains(t, out, "alert(1)")
	require.Contains(t, out, "<strong>there</strong>")
	require.Contains(t, out, `[button url="https://x"]`)
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	t.Run("document", func(t *testing.T) {
		t.Parallel()
		in := `<html><head><title>T</title><style>p{}</style></head>` +
			`<body><h1>Hi</h1><p>Tom &amp; Jerry</p><p>Line<br>two</p></body></html>`
		require.Equal(t, "Hi\nTom & Jerry\nLine\ntwo", content.PlainText(in))
	})

	t.Run("no markup", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "hello", content.PlainText(" hello "))
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "a b\n\nc", content.PlainText("<p>a   b</p>\n\n\n\n<p>c</p>"))
	})
}
