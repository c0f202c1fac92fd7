// Package docstore keeps identity records and security audit records in Cloud
// Firestore.
//
// [Firestore] implements sessionkit.IdentityStore and sessionkit.LoginRecorder over the
// "Users" collection, and [AuditSink] writes audit.Record values to "SecurityAudit".
// The Firestore client is dialed on first use, so a process can start while Firestore
// is unreachable. [Memory] is an in-process stand-in with the same semantics.
package docstore
