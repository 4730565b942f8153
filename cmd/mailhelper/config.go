package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v7"

	"github.com/dmitrymomot/mailhelper/pkg/db"
	"github.com/dmitrymomot/mailhelper/pkg/logger"
	"github.com/dmitrymomot/mailhelper/pkg/mailer"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/resend"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/ses"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/smtp"
	"github.com/dmitrymomot/mailhelper/pkg/redis"
	"github.com/dmitrymomot/mailhelper/pkg/storage"
)

type config struct {
	// Transport is log, smtp, ses or resend.
	Transport string `env:"MAILHELPER_TRANSPORT" envDefault:"log"`

	HTTPAddr        string        `env:"MAILHELPER_HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"MAILHELPER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	Workers         int           `env:"MAILHELPER_WORKERS" envDefault:"10"`
	BulkWorkers     int           `env:"MAILHELPER_BULK_WORKERS" envDefault:"2"`
	TaskTimeout     time.Duration `env:"MAILHELPER_TASK_TIMEOUT" envDefault:"2m"`

	// TestAddress enables the scheduled self test.
	TestAddress  string `env:"MAILHELPER_TEST_ADDRESS"`
	TestSchedule string `env:"MAILHELPER_TEST_SCHEDULE" envDefault:"@daily"`

	DeliveryRetention time.Duration `env:"MAILHELPER_DELIVERY_RETENTION" envDefault:"720h"`
	PurgeSchedule     string        `env:"MAILHELPER_PURGE_SCHEDULE" envDefault:"0 3 * * *"`

	MaxAttachmentSize int64 `env:"MAILHELPER_MAX_ATTACHMENT_SIZE" envDefault:"10485760"`

	ContentTable     string        `env:"MAILHELPER_CONTENT_TABLE" envDefault:"posts"`
	ContentIDColumn  string        `env:"MAILHELPER_CONTENT_ID_COLUMN" envDefault:"id"`
	ContentColumn    string        `env:"MAILHELPER_CONTENT_COLUMN" envDefault:"body"`
	ContentCondition string        `env:"MAILHELPER_CONTENT_CONDITION"`
	ContentCacheSize int           `env:"MAILHELPER_CONTENT_CACHE_SIZE" envDefault:"1000"`
	ContentTTL       time.Duration `env:"MAILHELPER_CONTENT_TTL" envDefault:"15m"`

	Log     logger.Config
	Mailer  mailer.Config
	Redis   redis.Config
	Storage storage.Config
	SMTP    smtp.Config
	SES     ses.Config
	Resend  resend.Config
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// loadDBConfig is separate because DATABASE_CONN_URL is only required by
// commands that touch Postgres.
func loadDBConfig() (db.Config, error) {
	var cfg db.Config
	if err := env.Parse(&cfg); err != nil {
		return db.Config{}, fmt.Errorf("failed to load database configuration: %w", err)
	}
	return cfg, nil
}

func (c config) storageEnabled() bool {
	return c.Storage.Bucket != ""
}
