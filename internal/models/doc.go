// Package models defines persistent entities and repository interfaces for jsync run history.
//
//   - [SyncRun] : One synchronization run with its inputs, progress counters, and outcome
//
// Persistent entities implement the Model interface providing ID, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
