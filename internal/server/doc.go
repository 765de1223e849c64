// Package server exposes the synchronizer over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//   - POST /api/jira/sync-tasks runs one synchronization ([SyncHandler])
//   - GET /health reports liveness as JSON ([HealthHandler])
//
// The sync endpoint takes its inputs from the query string: sourceProjectKey, targetProjectKey,
// maxIssuesToMove and a repeatable issueTypeNames. The run happens on the request goroutine,
// so the response is only written once every batch has been submitted or one has failed.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Lifecycle
//
// [Server.Start] blocks until its context is cancelled, then shuts the listener down gracefully.
package server
