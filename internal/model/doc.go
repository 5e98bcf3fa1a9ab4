// Package model defines shared data types exchanged with the stock-monitor
// backend.
//
// All JSON tags mirror the backend's response shapes; the transport and the
// sync engine never rename fields on the wire.
//
// Conventions:
//   - Prices and change values: decimal.Decimal (optional alert thresholds
//     are pointers, nil meaning "not configured")
//   - Percentages: decimal, 5 means 5%
//   - IDs: int64, assigned by the server (zero before first create)
package model
