// Package db provides the PostgreSQL pool shared by the job queue, the post
// content source and the delivery log.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with environment based
// configuration, startup retries and goose migrations.
//
// # Configuration
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//	DATABASE_MIGRATIONS_TABLE   - Goose version table (default: mailhelper_migrations)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, deliverylog.Migrations, "migrations", cfg.MigrationsTable, logger); err != nil {
//		return err
//	}
//
// [WithTx] runs a function in a transaction and rolls back on error or panic.
// The send command uses it to queue jobs and their delivery log rows together.
// [Healthcheck] returns a closure for readiness probes.
//
// # Errors
//
//   - [ErrFailedToParseDBConfig] - invalid connection string
//   - [ErrFailedToOpenDBConnection] - connection failed after all retries
//   - [ErrHealthcheckFailed] - ping failed
//   - [ErrSetDialect] - goose dialect configuration error
//   - [ErrApplyMigrations] - migration execution failed
//   - [ErrBeginTx], [ErrCommitTx] - transaction could not start or commit
package db
