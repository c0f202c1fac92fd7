// Package password implements password hashing and verification with Argon2id defaults
// and bcrypt for digests written by the earlier service.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// bcrypt digests ($2a$/$2b$/$2y$) are verified by [Bcrypt]. A [Chain] picks the scheme
// by digest prefix. Argon2 digests verify with the parameters stored in them, so raising
// the cost affects only new digests.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Registration rules are enforced by
// the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other sessionkit package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
