// Package apiclient is the single chokepoint for every call the SDK makes
// to the ArborVest API. It injects the bearer credential from the
// credentials store, unwraps the server's {success, data, message} envelope,
// and classifies every outcome into a closed set of error kinds. Callers
// never see transport status codes and never set headers themselves.
//
// A response classified Unauthorized carries a mandatory side effect: the
// credential store is cleared and an Invalidation is published on the
// client's hub before Do returns. The session manager subscribes to that
// hub so a rejected credential tears the session down even when no session
// operation is in flight.
//
// Do never fails for transport or server reasons — those settle into the
// Response envelope. Its error return is reserved for malformed requests
// (unmarshalable body, invalid method), which indicate a caller bug.
//
// The client performs no retries. Retry is a policy layered on top via
// Retrier, which re-issues calls that settled as NetworkError or
// ServerError and leaves every other kind alone.
package apiclient
