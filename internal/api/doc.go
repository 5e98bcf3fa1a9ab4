// Package api implements the HTTP transport for the stock-monitor backend.
//
// The transport:
//   - Attaches the stored bearer credential to every request
//   - Classifies non-2xx responses and network failures into an error
//     taxonomy (see Kind)
//   - Clears the credential and triggers at most one login redirect when
//     the backend reports the credential expired, no matter how many
//     requests fail with 401 concurrently
//   - Surfaces a single transient user notification per failed call
package api
