package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		subject string
		body    string
	}{
		{
			name:    "frontmatter",
			input:   "---\nSubject: Welcome {{NAME}}\nAuthor: System\n---\n<p>Hello</p>\n",
			subject: "Welcome {{NAME}}",
			body:    "<p>Hello</p>\n",
		},
		{
			name:  "no frontmatter",
			input: "<p>Just a body</p>",
			body:  "<p>Just a body</p>",
		},
		{
			name:  "empty frontmatter",
			input: "---\n---\nBody content here.",
			body:  "Body content here.",
		},
		{
			name:  "whitespace frontmatter",
			input: "---\n\n---\nBody content.",
			body:  "Body content.",
		},
		{
			name:    "windows line endings",
			input:   "---\r\nSubject: Test\r\n---\r\nBody",
			subject: "Test",
			body:    "Body",
		},
		{
			name:    "only one line break is consumed",
			input:   "---\nSubject: Test\n---\n\nBody",
			subject: "Test",
			body:    "\nBody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := ParseTemplate([]byte(tt.input))
			require.NoError(t, err)
			require.Equal(t, tt.subject, tmpl.Subject())
			require.Equal(t, tt.body, tmpl.Body)
			require.NotNil(t, tmpl.Metadata)
		})
	}
}

func TestParseTemplate_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing closing delimiter": "---\nSubject: Test\nBody without closing delimiter",
		"nothing after opening":     "---",
		"invalid yaml":              "---\nSubject: Test\nInvalidYAML: [unclosed\n---\nBody",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := ParseTemplate([]byte(input))
			require.ErrorIs(t, err, ErrInvalidFrontmatter)
			require.Nil(t, tmpl)
		})
	}
}

func TestParseTemplate_NestedMetadata(t *testing.T) {
	t.Parallel()

	tmpl, err := ParseTemplate([]byte("---\nSubject: Digest\nTags:\n  - weekly\n  - digest\n---\nBody"))
	require.NoError(t, err)
	require.Equal(t, "Digest", tmpl.Subject())
	require.Equal(t, []any{"weekly", "digest"}, tmpl.Metadata["Tags"])
}

func TestTemplate_SubjectNotString(t *testing.T) {
	t.Parallel()

	tmpl := &Template{Metadata: map[string]any{"Subject": 42}}
	require.Empty(t, tmpl.Subject())
}
