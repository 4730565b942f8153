package mailer

import (
	"strings"
)

// Header names the mailer writes itself.
const (
	HeaderFrom        = "From"
	HeaderReplyTo     = "Reply-To"
	HeaderReturnPath  = "Return-Path"
	HeaderCC          = "CC"
	HeaderBCC         = "BCC"
	HeaderContentType = "Content-Type"
	HeaderMIMEVersion = "MIME-Version"
)

// ContentTypeHTML is the default body content type.
const ContentTypeHTML = "text/html;charset=utf-8"

// defaultHeaders is used when a send carries no explicit headers.
func defaultHeaders() []string {
	return []string{
		headerLine(HeaderMIMEVersion, "1.0"),
		headerLine(HeaderContentType, ContentTypeHTML),
	}
}

func headerLine(name, value string) string {
	return name + ": " + value
}

// Header is the structured view of raw header lines.
// Address headers are split on commas; the last occurrence of a single-valued header wins.
type Header struct {
	Extra       map[string]string // Headers without a dedicated field, keyed by canonical name
	From        string
	ReplyTo     string
	ReturnPath  string
	ContentType string
	CC          []string
	BCC         []string
}

// IsHTML reports whether the body should be sent as HTML.
// A missing Content-Type counts as HTML, matching the default headers.
func (h Header) IsHTML() bool {
	if h.ContentType == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(h.ContentType)), "text/html")
}

// ParseHeaders converts "Name: value" lines into a Header.
// Lines without a colon are ignored. Names are matched case-insensitively.
func ParseHeaders(lines []string) Header {
	h := Header{Extra: make(map[string]string)}
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" {
			continue
		}

		switch strings.ToLower(name) {
		case "from":
			h.From = value
		case "reply-to":
			h.ReplyTo = value
		case "return-path":
			h.ReturnPath = value
		case "content-type":
			h.ContentType = value
		case "cc":
			h.CC = append(h.CC, splitAddresses(value)...)
		case "bcc":
			h.BCC = append(h.BCC, splitAddresses(value)...)
		case "mime-version":
			// Transports always write their own.
		default:
			h.Extra[canonicalName(name)] = value
		}
	}
	return h
}

func splitAddresses(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// canonicalName title-cases each dash-separated part, e.g. "x-mailer" -> "X-Mailer".
func canonicalName(name string) string {
	parts := strings.Split(strings.ToLower(name), "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}
