// Package health serves liveness and readiness probes for the mailhelper worker.
//
// A readiness probe runs named checks concurrently under a shared timeout:
//
//	checks := health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//		"jobs":     job.Healthcheck(manager),
//	}
//	r := chi.NewRouter()
//	r.Mount("/health", health.Router(checks, health.WithLogger(log)))
//
// GET /health/live always answers 200. GET /health/ready answers 200 or 503.
// Responses are plain text unless the client sends Accept: application/json
// or ?format=json:
//
//	{"checks":{"postgres":{"status":"healthy"},"redis":{"status":"unhealthy","error":"redis: connection failed"}},"status":"unhealthy"}
//
// [Run] executes the same checks outside HTTP, for example from the CLI.
package health
