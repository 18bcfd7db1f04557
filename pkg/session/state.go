package session

import "github.com/arborvest/arborvest-go/pkg/apiclient"

// Status names the authentication lifecycle variant.
type Status string

const (
	// StatusUnresolved is the initial state, before Bootstrap has decided
	// whether a stored credential is still good.
	StatusUnresolved Status = "unresolved"

	// StatusAnonymous means no valid credential; User is absent.
	StatusAnonymous Status = "anonymous"

	// StatusAuthenticating means a login, signup or profile fetch is in
	// flight. User is retained when the attempt started from an
	// authenticated state.
	StatusAuthenticating Status = "authenticating"

	// StatusAuthenticated means a valid credential and a loaded profile.
	StatusAuthenticated Status = "authenticated"

	// StatusFailed records the error of the last attempt. User is whatever
	// it was before the attempt.
	StatusFailed Status = "failed"
)

// Failure describes why the last attempt failed.
type Failure struct {
	Kind      apiclient.ErrorKind
	Message   string
	Retryable bool
}

// State is the session snapshot handed to presentation code. Value
// semantics: mutations happen only inside the Manager, snapshots never
// change under the caller.
type State struct {
	Status    Status
	User      *User
	LastError *Failure
	// Loading reports an in-flight password operation (change / reset),
	// which runs outside the authentication variants.
	Loading bool
}

// IsAuthenticated reports whether the session holds a signed-in user.
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// validTransitions is the closed transition table. Moves not listed here
// are programming errors; the manager refuses them instead of producing an
// impossible state.
var validTransitions = map[Status][]Status{
	StatusUnresolved: {StatusAnonymous, StatusAuthenticating},
	// An invalidation or an older operation's failure can move the machine
	// while a newer operation is still in flight, so Anonymous and Failed
	// accept that operation's completion directly. Resurrection by a truly
	// stale completion is prevented by sequence numbers, not by this table.
	StatusAnonymous:      {StatusAnonymous, StatusAuthenticating, StatusAuthenticated, StatusFailed},
	StatusFailed:         {StatusAuthenticating, StatusAuthenticated, StatusAnonymous},
	StatusAuthenticating: {StatusAuthenticating, StatusAuthenticated, StatusAnonymous, StatusFailed},
	StatusAuthenticated:  {StatusAuthenticating, StatusAnonymous, StatusFailed},
}

// ValidTransition reports whether the lifecycle permits moving from one
// status to another.
func ValidTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// consistent reports whether a state combination is representable at all:
// Authenticated carries a user and no error, Anonymous and Unresolved carry
// neither, Failed carries an error.
func (s State) consistent() bool {
	switch s.Status {
	case StatusAuthenticated:
		return s.User != nil && s.LastError == nil
	case StatusAnonymous, StatusUnresolved:
		return s.User == nil && s.LastError == nil
	case StatusFailed:
		return s.LastError != nil
	case StatusAuthenticating:
		return s.LastError == nil
	default:
		return false
	}
}

// failureFrom maps a settled gateway response to a Failure.
func failureFrom(resp apiclient.Response) *Failure {
	retryable := false
	switch resp.Kind {
	case apiclient.KindNetworkError, apiclient.KindServerError, apiclient.KindRateLimited:
		retryable = true
	}
	return &Failure{
		Kind:      resp.Kind,
		Message:   resp.Message,
		Retryable: retryable,
	}
}

// Result is the settled outcome of a manager operation, for the caller
// that invoked it. Failures carry a message ready for display.
type Result struct {
	OK      bool
	Message string
}
