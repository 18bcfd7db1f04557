package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/arborvest/arborvest-go/pkg/apiclient"
	"github.com/arborvest/arborvest-go/pkg/broadcast"
	"github.com/arborvest/arborvest-go/pkg/credentials"
)

// Manager owns the session state machine. Create instances with New; one
// manager per application root, passed by reference to all consumers.
// Safe for concurrent use.
type Manager struct {
	gateway       apiclient.Doer
	creds         credentials.Store
	log           *slog.Logger
	changes       *broadcast.Hub[State]
	invalidations *broadcast.Hub[apiclient.Invalidation]
	logoutTimeout time.Duration

	mu           sync.Mutex
	state        State
	seq          uint64
	lastApplied  uint64
	loading      int
	bootstrapped bool

	watchCancel context.CancelFunc
	closeOnce   sync.Once
}

// New creates a session manager over the given gateway and credential
// store. Both are required; passing nil is a programming error and panics.
// When gateway exposes an invalidation hub (as *apiclient.Client does) the
// manager subscribes to it so a server-side credential rejection forces the
// session back to anonymous even with no operation in flight.
func New(gateway apiclient.Doer, creds credentials.Store, opts ...Option) *Manager {
	if gateway == nil {
		panic("session: gateway is required")
	}
	if creds == nil {
		panic("session: credential store is required")
	}

	m := &Manager{
		gateway:       gateway,
		creds:         creds,
		log:           slog.Default(),
		changes:       broadcast.NewHub[State](16),
		logoutTimeout: 3 * time.Second,
		state:         State{Status: StatusUnresolved},
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.invalidations == nil {
		if src, ok := gateway.(interface {
			Invalidations() *broadcast.Hub[apiclient.Invalidation]
		}); ok {
			m.invalidations = src.Invalidations()
		}
	}
	if m.invalidations != nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.watchCancel = cancel
		events := m.invalidations.Subscribe(ctx)
		go func() {
			for ev := range events {
				m.handleInvalidation(context.Background(), ev)
			}
		}()
	}

	return m
}

// Close stops the invalidation watcher and closes the state-change hub.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		if m.watchCancel != nil {
			m.watchCancel()
		}
		m.changes.Close()
	})
}

// Current returns a snapshot of the session state.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel of state snapshots, one per transition.
// Presentation code re-renders from these. The channel closes when ctx is
// cancelled or the manager is closed.
func (m *Manager) Subscribe(ctx context.Context) <-chan State {
	return m.changes.Subscribe(ctx)
}

// Bootstrap resolves the initial Unresolved state exactly once. With an
// empty credential store it settles to Anonymous without any network call.
// With a stored credential it fetches the profile; any failure — including
// an unreachable API — resolves to Anonymous rather than blocking startup.
// Subsequent calls return the current state.
func (m *Manager) Bootstrap(ctx context.Context) State {
	m.mu.Lock()
	if m.bootstrapped {
		defer m.mu.Unlock()
		return m.snapshotLocked()
	}
	m.bootstrapped = true

	if _, err := m.creds.Get(ctx); err != nil {
		if !errors.Is(err, credentials.ErrNoCredential) {
			m.log.WarnContext(ctx, "credential store unreadable at startup", slog.Any("error", err))
		}
		m.setStateLocked(State{Status: StatusAnonymous})
		defer m.mu.Unlock()
		return m.snapshotLocked()
	}

	seq := m.nextSeqLocked()
	m.setStateLocked(State{Status: StatusAuthenticating})
	m.mu.Unlock()

	resp, err := m.gateway.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/auth/profile",
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	var user User
	switch {
	case err == nil && resp.OK && resp.DecodeData(&user) == nil:
		m.completeLocked(ctx, seq, State{Status: StatusAuthenticated, User: &user})
	default:
		// A dead credential arrives here as Unauthorized with the store
		// already cleared. Every other failure keeps the credential for a
		// later attempt but still resolves to Anonymous: a degraded network
		// must not lock the user out of the anonymous UI.
		m.completeLocked(ctx, seq, State{Status: StatusAnonymous})
	}
	return m.snapshotLocked()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	User   User `json:"user"`
	Tokens struct {
		AccessToken string `json:"accessToken"`
	} `json:"tokens"`
}

// Login exchanges credentials for a session. On success the access token is
// persisted and the state becomes Authenticated in the same locked step; on
// failure the state records the error and the credential store is untouched.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	seq := m.beginAttempt()

	resp, err := m.gateway.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   loginRequest{Email: email, Password: password},
	})
	resp = m.settle(ctx, resp, err)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !resp.OK {
		m.completeLocked(ctx, seq, State{
			Status:    StatusFailed,
			User:      m.state.User,
			LastError: failureFrom(resp),
		})
		return Result{Message: resp.Message}
	}

	var payload loginPayload
	if decodeErr := resp.DecodeData(&payload); decodeErr != nil || payload.Tokens.AccessToken == "" {
		m.log.ErrorContext(ctx, "login payload missing access token", slog.Any("error", decodeErr))
		m.completeLocked(ctx, seq, State{
			Status:    StatusFailed,
			User:      m.state.User,
			LastError: &Failure{Kind: apiclient.KindServerError, Message: "Something went wrong on our side. Please try again.", Retryable: true},
		})
		return Result{Message: "Something went wrong on our side. Please try again."}
	}

	if seq < m.lastApplied {
		// A newer operation already settled; drop the token instead of
		// resurrecting a session the user has since moved past.
		m.log.DebugContext(ctx, "discarding stale login completion")
		return Result{OK: true, Message: resp.Message}
	}

	if setErr := m.creds.Set(ctx, payload.Tokens.AccessToken); setErr != nil {
		m.log.ErrorContext(ctx, "failed to persist credential", slog.Any("error", setErr))
		m.completeLocked(ctx, seq, State{
			Status:    StatusFailed,
			User:      m.state.User,
			LastError: &Failure{Message: "Could not save your session. Please try again.", Retryable: true},
		})
		return Result{Message: "Could not save your session. Please try again."}
	}

	m.completeLocked(ctx, seq, State{Status: StatusAuthenticated, User: &payload.User})
	return Result{OK: true, Message: resp.Message}
}

// Signup registers a new account. Registration never authenticates: the
// account awaits verification, so success settles back to Anonymous and the
// caller routes the user to login.
func (m *Manager) Signup(ctx context.Context, params SignupParams) Result {
	seq := m.beginAttempt()

	resp, err := m.gateway.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   params,
	})
	resp = m.settle(ctx, resp, err)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !resp.OK {
		m.completeLocked(ctx, seq, State{
			Status:    StatusFailed,
			User:      m.state.User,
			LastError: failureFrom(resp),
		})
		return Result{Message: resp.Message}
	}

	m.completeLocked(ctx, seq, State{Status: StatusAnonymous})
	return Result{OK: true, Message: resp.Message}
}

// Logout tears the session down locally no matter what: the credential is
// cleared and the state set to Anonymous before this method returns. The
// server is notified best-effort on a detached, bounded context; that
// request races the local clear and may go out unauthenticated, which the
// server treats as a no-op.
func (m *Manager) Logout(ctx context.Context) Result {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.logoutTimeout)
	go func() {
		defer cancel()
		if _, err := m.gateway.Do(notifyCtx, apiclient.Request{
			Method: http.MethodPost,
			Path:   "/auth/logout",
		}); err != nil {
			m.log.DebugContext(notifyCtx, "logout notification failed", slog.Any("error", err))
		}
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	seq := m.nextSeqLocked()
	if err := m.creds.Clear(ctx); err != nil {
		m.log.ErrorContext(ctx, "failed to clear credential on logout", slog.Any("error", err))
	}
	m.completeLocked(ctx, seq, State{Status: StatusAnonymous})
	return Result{OK: true}
}

// UpdateProfile applies a partial profile mutation. Only valid while
// authenticated. Failure records the error but never signs the user out;
// success merges exactly the fields the server confirmed.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) Result {
	m.mu.Lock()
	if m.state.Status != StatusAuthenticated {
		m.mu.Unlock()
		return Result{Message: "You must be signed in to update your profile."}
	}
	seq := m.nextSeqLocked()
	prev := m.state.User
	m.setStateLocked(State{Status: StatusAuthenticating, User: prev})
	m.mu.Unlock()

	resp, err := m.gateway.Do(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   "/auth/profile",
		Body:   update,
	})
	resp = m.settle(ctx, resp, err)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !resp.OK {
		m.completeLocked(ctx, seq, State{
			Status:    StatusFailed,
			User:      prev,
			LastError: failureFrom(resp),
		})
		return Result{Message: resp.Message}
	}

	// The server echoes the fields it accepted; prefer those over the
	// request so server-side normalization wins.
	applied := update
	var echoed ProfileUpdate
	if len(resp.Data) > 0 && resp.DecodeData(&echoed) == nil {
		applied = echoed
	}
	merged := prev.Merge(applied)
	m.completeLocked(ctx, seq, State{Status: StatusAuthenticated, User: &merged})
	return Result{OK: true, Message: resp.Message}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the password of the signed-in user. It toggles
// the Loading flag only; the authentication variant is never touched.
func (m *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword string) Result {
	m.beginLoading()
	defer m.endLoading()

	resp, err := m.gateway.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/change-password",
		Body:   changePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword},
	})
	resp = m.settle(ctx, resp, err)
	return Result{OK: resp.OK, Message: resp.Message}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword requests a password-reset email. Like ChangePassword it
// only toggles Loading.
func (m *Manager) ForgotPassword(ctx context.Context, email string) Result {
	m.beginLoading()
	defer m.endLoading()

	resp, err := m.gateway.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/forgot-password",
		Body:   forgotPasswordRequest{Email: email},
	})
	resp = m.settle(ctx, resp, err)
	return Result{OK: resp.OK, Message: resp.Message}
}

// handleInvalidation reacts to a server-side credential rejection. It is
// the one transition no caller invokes.
func (m *Manager) handleInvalidation(ctx context.Context, ev apiclient.Invalidation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The gateway cleared the store before publishing, so any credential
	// present now was written by a newer, successful operation — the
	// rejection is stale and loses.
	if _, err := m.creds.Get(ctx); err == nil {
		return
	}

	// Nothing to tear down when there is no session to speak of.
	if m.state.Status == StatusAnonymous || (m.state.Status == StatusFailed && m.state.User == nil) {
		return
	}

	if m.setStateLocked(State{Status: StatusAnonymous}) {
		m.log.WarnContext(ctx, "session invalidated by server", slog.String("path", ev.Path))
	}
}

// beginAttempt transitions to Authenticating (retaining any current user)
// and hands out the operation's sequence number.
func (m *Manager) beginAttempt() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq := m.nextSeqLocked()
	m.setStateLocked(State{Status: StatusAuthenticating, User: m.state.User})
	return seq
}

// settle converts a gateway construction error into a settled failure so
// operations always resolve, never propagate.
func (m *Manager) settle(ctx context.Context, resp apiclient.Response, err error) apiclient.Response {
	if err == nil {
		return resp
	}
	m.log.ErrorContext(ctx, "gateway rejected request envelope", slog.Any("error", err))
	return apiclient.Response{
		Kind:    apiclient.KindRequestRejected,
		Message: "The request could not be completed.",
	}
}

func (m *Manager) nextSeqLocked() uint64 {
	m.seq++
	return m.seq
}

// completeLocked applies an operation's final state if no newer operation
// has settled since it was dispatched. An Authenticated completion is
// additionally checked against the credential store: an invalidation that
// landed while the operation was in flight has already emptied the store,
// and it is authoritative — the session stays down.
func (m *Manager) completeLocked(ctx context.Context, seq uint64, next State) bool {
	if seq < m.lastApplied {
		m.log.Debug("discarding stale completion",
			slog.Uint64("seq", seq),
			slog.Uint64("last_applied", m.lastApplied),
		)
		return false
	}
	if next.Status == StatusAuthenticated {
		if _, err := m.creds.Get(ctx); err != nil {
			m.log.WarnContext(ctx, "credential gone before completion, settling anonymous",
				slog.Any("error", err),
			)
			next = State{Status: StatusAnonymous}
		}
	}
	if !m.setStateLocked(next) {
		return false
	}
	m.lastApplied = seq
	return true
}

// setStateLocked validates and applies a transition, then notifies
// subscribers. Refusing an invalid move keeps the machine in a
// representable state even under racing completions.
func (m *Manager) setStateLocked(next State) bool {
	if !ValidTransition(m.state.Status, next.Status) || !next.consistent() {
		m.log.Debug("refused session transition",
			slog.String("from", string(m.state.Status)),
			slog.String("to", string(next.Status)),
		)
		return false
	}
	m.state = next
	m.changes.Publish(m.snapshotLocked())
	return true
}

func (m *Manager) beginLoading() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading++
	m.changes.Publish(m.snapshotLocked())
}

func (m *Manager) endLoading() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading--
	m.changes.Publish(m.snapshotLocked())
}

// snapshotLocked copies the state so callers can never mutate the
// manager's view.
func (m *Manager) snapshotLocked() State {
	s := m.state
	s.Loading = m.loading > 0
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.LastError != nil {
		e := *s.LastError
		s.LastError = &e
	}
	return s
}
