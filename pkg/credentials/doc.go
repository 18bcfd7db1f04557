// Package credentials holds the single access credential the ArborVest API
// authenticates with. The credential is an opaque bearer token: nothing in
// this package inspects, parses or validates its content.
//
// The Store interface abstracts persistence. FileStore is the durable
// implementation used by real clients — one fixed slot on disk, written
// atomically, optionally sealed with an AEAD so the token is not stored in
// plaintext. MemoryStore backs tests and embedders that manage persistence
// themselves.
//
// Absence of a credential is reported as ErrNoCredential, never as an empty
// string: callers branch on presence, not on content.
package credentials
