// Package jwt issues and verifies the signed, expiring tokens that carry a session's
// identity claims. One Codec exists per token kind (access, refresh); the kinds differ
// only in signing secret and lifetime.
package jwt
