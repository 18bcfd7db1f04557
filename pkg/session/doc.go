// Package session owns the client-side answer to "is the user signed in,
// and as whom". A Manager drives the authentication lifecycle as an
// explicit state machine (unresolved → anonymous → authenticating →
// authenticated / failed) and keeps it in lockstep with the credentials
// store: the state is Authenticated exactly when the store holds a
// credential, and every code path that clears one side moves the other in
// the same locked step.
//
// All network traffic goes through an apiclient.Doer. The manager
// subscribes to the gateway's invalidation hub, so a server-side credential
// rejection tears the session down even when no operation is in flight.
//
// Operations never return Go errors for server or transport failures —
// each settles into a Result with a human-readable message, and the state
// records the failure. Presentation code subscribes to state changes via
// Subscribe and re-renders from Current.
//
// # Overlapping operations
//
// Operations are not serialized: two calls issued back to back race on the
// network, and their completions can arrive in either order. The manager
// resolves this with sequence numbers taken at dispatch — a completion
// older than the newest applied one is discarded (last write wins by
// issuance order, not completion order).
package session
