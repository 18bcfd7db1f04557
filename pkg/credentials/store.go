package credentials

import "context"

// Store is the single slot holding the current access credential.
//
// Set and Clear take effect synchronously: a Get issued after either call
// returns the new content, including Gets made by requests already in
// flight that have not yet read the credential.
type Store interface {
	// Get returns the current credential, or ErrNoCredential when absent.
	Get(ctx context.Context) (string, error)

	// Set replaces the credential.
	Set(ctx context.Context, token string) error

	// Clear removes the credential. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
