package ses

// Config holds AWS SES v2 configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Region          string `env:"SES_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"SES_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SES_SECRET_ACCESS_KEY"`
	// Endpoint overrides the API endpoint, e.g. for LocalStack.
	Endpoint         string `env:"SES_ENDPOINT"`
	ConfigurationSet string `env:"SES_CONFIGURATION_SET"`
	SenderEmail      string `env:"SES_FROM_EMAIL"`
	SenderName       string `env:"SES_FROM_NAME"`
	MaxAttempts      int    `env:"SES_MAX_ATTEMPTS" envDefault:"3"`
}
