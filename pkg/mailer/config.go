package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// DefaultLayout wraps template messages when set (file name inside LayoutDir).
	DefaultLayout string `env:"MAILER_DEFAULT_LAYOUT" envDefault:""`
	LayoutDir     string `env:"MAILER_LAYOUT_DIR" envDefault:"layouts"`
	// TemplateDir, when set, roots template paths in this directory instead of the working directory.
	TemplateDir string `env:"MAILER_TEMPLATE_DIR" envDefault:""`
	// SanitizePosts runs post content through an HTML sanitizer before formatting.
	SanitizePosts bool `env:"MAILER_SANITIZE_POSTS" envDefault:"false"`
}
