// Package stream implements the price stream connection manager.
//
// The manager:
//   - Owns a single persistent WebSocket connection to the gateway
//   - Classifies inbound frames (snapshot, heartbeat, delta, unknown)
//     and dispatches price data into the price store
//   - Recovers from any disconnect with a fixed-delay reconnect loop;
//     the close signal is the sole recovery trigger
//   - Drops outbound messages silently while the connection is not open
//
// Reconnection is unconditional and unbounded with no backoff or jitter.
// That is fine for a single dashboard client; reusing this package in a
// fleet or server context would need backoff and a retry ceiling.
package stream
