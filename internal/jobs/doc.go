// Package jobs implements background job processing for the sharing engine.
//
// The jobs package contains scheduled tasks that run independently of the
// engine's request-driven operations.
//
// # Job Types
//
// Available background jobs:
//
//   - Sweeper: periodic removal of empty shared groups past their grace
//     period, the safety net behind the synchronous post-delete cleanup
//
// # Lifecycle
//
// All jobs follow the same lifecycle pattern:
//
//	sweeper := jobs.NewSweeper(jobs.SweeperConfig{
//	    Owners:   groupRepo,
//	    Cleanup:  cleanupService,
//	    Interval: time.Minute,
//	})
//	sweeper.Start()
//	defer sweeper.Stop()
//
// Start and Stop are idempotent; RunOnce triggers a single pass for tests
// and manual operation.
//
// # Error Handling
//
// Jobs log errors but don't crash the application. Each pass also updates
// Prometheus counters so operators can watch sweep throughput and failures.
package jobs
