package apiclient

import (
	"encoding/json"
	"net/url"
)

// Request is the normalized form of an outbound call. Callers provide the
// method, API-relative path and an optional body; headers and credentials
// are the client's concern.
type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
}

// Response is the settled outcome of a gateway call: either OK with the
// unwrapped payload, or a classified failure with a display message.
type Response struct {
	OK      bool
	Data    json.RawMessage
	Kind    ErrorKind
	Message string
}

// DecodeData unmarshals the success payload into v. Calling it on a failed
// response or an empty payload is a no-op.
func (r Response) DecodeData(v any) error {
	if !r.OK || len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// failure builds a failed Response, falling back to the generic message for
// the kind when the server supplied none.
func failure(kind ErrorKind, message string) Response {
	if message == "" {
		message = fallbackMessage(kind)
	}
	return Response{Kind: kind, Message: message}
}

// wireEnvelope is the shape every ArborVest API response arrives in.
type wireEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}
