// Package services defines the [Tracker] interface and implements it for Jira Cloud.
//
// # Tracker Interface
//
// The synchronizer talks to the tracker through two operations: a JQL search and a bulk move.
// Each is a single HTTP request with no retry.
//
// # Jira Implementation
//
// [JiraService] calls GET /rest/api/3/search and POST /rest/api/3/bulk/issues/move.
// Authentication, pooling, timeouts and rate limiting live in the [http.Client] built by [NewHTTPClient]
// and injected into the service:
//   - Basic auth from username + API token
//   - Bearer auth through [oauth2.Transport] when an access token is configured
//   - [rate.Limiter] throttling when requests_per_second is set
//
// # Error Handling
//
// Every non-2xx status becomes a [ClientError] whose Kind reflects the status:
//   - 400 : [KindInvalidQuery] ([shared.ErrInvalidQuery])
//   - 401, 403 : [KindAuthFailure] ([shared.ErrAuthFailed])
//   - 404 : [KindNotFound] ([shared.ErrNotFound])
//   - anything else : [KindUnexpectedResponse] ([shared.ErrUnexpectedResponse])
//
// Transport failures become a [CommunicationError] ([shared.ErrCommunication]).
//
// # Raw API Access
//
// [APIService] issues arbitrary requests through the same client for connection debugging.
package services
