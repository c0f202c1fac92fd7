// Package audit records security-relevant anomalies of the session core in an
// append-only log.
//
// # Components
//
//   - [Record]: one anomaly: type, identity, request IP, user agent, time.
//   - [Sink]: destination for records (JSON lines, channel, no-op; Firestore lives in docstore).
//   - [Dispatcher]: buffered async relay so a slow or failing sink never blocks or
//     fails the request that produced the record.
//
// # Architecture boundaries
//
// This package owns buffering and delivery. It does NOT decide which events to record;
// that belongs to the Engine. Records are never mutated or deleted once written.
package audit
