// Package stream implements the websocket quote push channel.
//
// The backend pushes stock updates to subscribed clients:
//   - client → server: {"action": "subscribe", "stock_id": N}
//   - client → server: {"action": "unsubscribe", "stock_id": N}
//   - client → server: {"action": "ping"}
//   - server → client: {"type": "stock_update", "stock_id": N, "data": {...}}
//   - server → client: {"type": "pong"}
//
// The stream is an optional complement to the polling engine; a client that
// cannot hold a websocket open falls back to polling alone.
package stream
