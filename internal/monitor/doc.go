// Package monitor implements the realtime monitor synchronization engine.
//
// The engine:
//   - Owns the authoritative in-memory list of the user's monitors
//   - Refreshes it through the realtime bulk endpoint, falling back to the
//     plain list endpoint when the realtime path is unavailable
//   - Adapts its polling cadence to the backend's trading-hours flag
//   - Reconciles create/update/delete mutations against server state
//
// Exactly one polling loop is live at a time: starting a new loop always
// cancels the previous one first.
package monitor
