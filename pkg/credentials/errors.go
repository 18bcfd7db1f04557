package credentials

import "errors"

var (
	// ErrNoCredential indicates the store holds no credential.
	ErrNoCredential = errors.New("credentials.not_found")

	// ErrEmptyCredential indicates Set was called with an empty token.
	ErrEmptyCredential = errors.New("credentials.empty")

	// ErrStorage indicates the underlying storage failed to read or write.
	ErrStorage = errors.New("credentials.storage_failed")

	// ErrSealing indicates the credential could not be sealed or unsealed.
	ErrSealing = errors.New("credentials.sealing_failed")
)
