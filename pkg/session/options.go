package session

import (
	"log/slog"
	"time"

	"github.com/arborvest/arborvest-go/pkg/apiclient"
	"github.com/arborvest/arborvest-go/pkg/broadcast"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithInvalidations subscribes the manager to a credential-rejection hub.
// When the gateway is an *apiclient.Client this wiring happens
// automatically; the option exists for decorated gateways (e.g. a Retrier)
// that hide the underlying client.
func WithInvalidations(hub *broadcast.Hub[apiclient.Invalidation]) Option {
	return func(m *Manager) {
		if hub != nil {
			m.invalidations = hub
		}
	}
}

// WithLogoutTimeout bounds the best-effort server notification issued by
// Logout. Default is 3 seconds.
func WithLogoutTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.logoutTimeout = d
		}
	}
}
