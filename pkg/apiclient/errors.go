package apiclient

import "errors"

var (
	// ErrInvalidBaseURL indicates the client was constructed with an
	// unusable base URL.
	ErrInvalidBaseURL = errors.New("apiclient.invalid_base_url")

	// ErrInvalidRequest indicates the request envelope could not be turned
	// into an HTTP request (bad method, path or body). This is the only
	// class of failure Do reports as a Go error.
	ErrInvalidRequest = errors.New("apiclient.invalid_request")

	// ErrNoCredentialStore indicates the client was constructed without a
	// credential store.
	ErrNoCredentialStore = errors.New("apiclient.no_credential_store")
)

// ErrorKind classifies a failed gateway call. The set is closed: nothing
// outside this package produces kinds, and callers can switch on them
// exhaustively.
type ErrorKind string

const (
	// KindNone marks a successful response.
	KindNone ErrorKind = ""

	// KindUnauthorized means the server rejected the credential. The
	// credential store has already been cleared and an Invalidation
	// published by the time the caller sees this kind.
	KindUnauthorized ErrorKind = "unauthorized"

	// KindRateLimited means the server is throttling the client.
	KindRateLimited ErrorKind = "rate_limited"

	// KindServerError means the server failed internally.
	KindServerError ErrorKind = "server_error"

	// KindRequestRejected means the server refused the request for
	// validation or business reasons; Message carries the server's own
	// wording for display.
	KindRequestRejected ErrorKind = "request_rejected"

	// KindNetworkError means the request never produced a server response
	// (timeout, unreachable host, DNS failure).
	KindNetworkError ErrorKind = "network_error"
)

// fallbackMessage returns the generic user-facing message for a kind, used
// when the server supplied none.
func fallbackMessage(kind ErrorKind) string {
	switch kind {
	case KindUnauthorized:
		return "Your session has expired. Please sign in again."
	case KindRateLimited:
		return "Too many requests. Please try again in a moment."
	case KindServerError:
		return "Something went wrong on our side. Please try again."
	case KindNetworkError:
		return "Unable to reach ArborVest. Check your connection and try again."
	default:
		return "The request could not be completed."
	}
}
