// Package redis connects to Redis for the shared content cache.
//
// Workers that render the same post for many recipients share rendered
// bodies through Redis instead of each hitting Postgres.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := content.NewRedisStore(client, cfg.Prefix)
//
// [Healthcheck] returns a closure for readiness probes and [Shutdown] a close hook.
//
// Errors:
//
//   - [ErrEmptyConnectionURL] - REDIS_URL is empty
//   - [ErrFailedToParseURL] - unsupported scheme or malformed URL
//   - [ErrConnectionFailed] - ping failed after all retries
//   - [ErrHealthcheckFailed] - ping failed during a health check
package redis
