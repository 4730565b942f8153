package smtp

import "time"

// Encryption selects how the connection to the server is secured.
type Encryption string

const (
	EncryptionNone     Encryption = "none"
	EncryptionTLS      Encryption = "tls"
	EncryptionStartTLS Encryption = "starttls"
)

// AuthType selects the SMTP authentication mechanism.
type AuthType string

const (
	AuthNone    AuthType = "none"
	AuthPlain   AuthType = "plain"
	AuthLogin   AuthType = "login"
	AuthCramMD5 AuthType = "crammd5"
)

// Config holds SMTP relay configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host           string        `env:"SMTP_HOST" envDefault:"localhost"`
	Port           int           `env:"SMTP_PORT" envDefault:"587"`
	Username       string        `env:"SMTP_USERNAME"`
	Password       string        `env:"SMTP_PASSWORD"`
	Encryption     Encryption    `env:"SMTP_ENCRYPTION" envDefault:"starttls"`
	AuthType       AuthType      `env:"SMTP_AUTH_TYPE" envDefault:"plain"`
	CertValidation bool          `env:"SMTP_CERT_VALIDATION" envDefault:"true"`
	Timeout        time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	// SenderEmail is used when an email carries neither a From field nor a From header.
	SenderEmail string `env:"SMTP_FROM_EMAIL"`
	SenderName  string `env:"SMTP_FROM_NAME"`
}
