// Package hash provides keyed digests for short-lived secrets.
//
// Verification codes and session tokens are never stored in plaintext: stores
// keep the digest and callers compare candidates with Verify, which runs in
// constant time.
package hash
