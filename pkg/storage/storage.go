package storage

import (
	"mime"
	"net/http"
	"path"
)

// Config holds S3-compatible storage configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Bucket holds attachment objects (required).
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `env:"S3_ENDPOINT"`
	Region   string `env:"S3_REGION" envDefault:"us-east-1"`

	// Prefix is prepended to keys written by Put.
	Prefix string `env:"S3_PREFIX" envDefault:"attachments"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"S3_PATH_STYLE" envDefault:"false"`
}

// FileInfo contains object metadata.
type FileInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

// MIMEOctetStream is reported for content that cannot be identified.
const MIMEOctetStream = "application/octet-stream"

// sniffLen is how much content http.DetectContentType looks at.
const sniffLen = 512

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// DetectContentType returns the MIME type for a file name and its leading bytes.
// The extension wins; content sniffing is the fallback.
func DetectContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	if len(data) == 0 {
		return MIMEOctetStream
	}
	return http.DetectContentType(data[:min(len(data), sniffLen)])
}
