package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailhelper/pkg/content"
	"github.com/dmitrymomot/mailhelper/pkg/db"
	"github.com/dmitrymomot/mailhelper/pkg/mailer"
	"github.com/dmitrymomot/mailhelper/pkg/redis"
	"github.com/dmitrymomot/mailhelper/pkg/storage"
)

// deps are the connections a command opened. Close releases them.
type deps struct {
	pool            *pgxpool.Pool
	migrationsTable string
	redis           goredis.UniversalClient
	store           *storage.S3Storage
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// connectDB opens Postgres. DATABASE_CONN_URL must be set.
func (c *cli) connectDB(ctx context.Context, d *deps) error {
	dbCfg, err := loadDBConfig()
	if err != nil {
		return err
	}
	pool, err := db.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	d.pool, d.migrationsTable = pool, dbCfg.MigrationsTable
	return nil
}

// connectOptional opens Redis and object storage when they are configured.
func (c *cli) connectOptional(ctx context.Context, d *deps) error {
	if c.cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, c.cfg.Redis)
		if err != nil {
			return err
		}
		d.redis = client
	}
	if c.cfg.storageEnabled() {
		store, err := storage.New(c.cfg.Storage)
		if err != nil {
			return err
		}
		d.store = store
	}
	return nil
}

// contentSource reads posts from Postgres through a cache: Redis when
// configured, otherwise an in-process LRU.
func (c *cli) contentSource(d *deps) mailer.ContentSource {
	if d.pool == nil {
		return nil
	}

	src := content.NewPostgresSource(d.pool,
		content.WithTable(c.cfg.ContentTable),
		content.WithColumns(c.cfg.ContentIDColumn, c.cfg.ContentColumn),
		content.WithCondition(c.cfg.ContentCondition),
	)

	var store content.Store
	if d.redis != nil {
		store = content.NewRedisStore(d.redis, c.cfg.Redis.Prefix)
	} else {
		store = content.NewMemoryStore(c.cfg.ContentCacheSize)
	}
	return content.NewCachedSource(src, store, c.cfg.ContentTTL)
}

func (c *cli) newMailer(ctx context.Context, d *deps, hooks *mailer.Hooks) (*mailer.Mailer, error) {
	sender, err := newSender(ctx, c.cfg, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s transport: %w", c.cfg.Transport, err)
	}

	loader := mailer.FileLoader{MaxSize: c.cfg.MaxAttachmentSize}
	if d.store != nil {
		loader.Objects = d.store
	}

	opts := []mailer.Option{
		mailer.WithLogger(c.log),
		mailer.WithAttachmentLoader(loader),
	}
	if hooks != nil {
		opts = append(opts, mailer.WithHooks(hooks))
	}
	if src := c.contentSource(d); src != nil {
		opts = append(opts, mailer.WithContentSource(src))
	}

	return mailer.New(sender, c.cfg.Mailer, opts...), nil
}
