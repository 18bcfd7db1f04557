// Package arborvest is the client-side core of the ArborVest investment
// app: credential storage, a typed API gateway, and the session state
// machine that keeps the two in lockstep.
//
// The packages compose bottom-up:
//
//   - pkg/credentials — durable single-slot storage for the opaque access
//     token (in-memory, or an encrypted file on disk)
//   - pkg/apiclient — the one HTTP gateway to the ArborVest API: auth
//     header injection, envelope unwrapping, error classification, and
//     credential-invalidation broadcasting; plus an opt-in retry decorator
//   - pkg/session — the authentication lifecycle (bootstrap, login,
//     signup, logout, profile) as an explicit state machine with
//     last-write-wins resolution for overlapping operations
//   - pkg/broadcast — the generic pub/sub hub both layers publish on
//   - pkg/config, pkg/logger — environment/YAML configuration and slog
//     setup
//   - pkg/projection — pure compound-growth arithmetic for the
//     simulation screen
//
// Typical wiring:
//
//	cfg := config.MustLoad()
//	log := logger.New(logger.WithLevelString(cfg.LogLevel))
//
//	store, err := credentials.NewFileStore(cfg.CredentialsPath)
//	if err != nil {
//		log.Error("credential store unavailable", "error", err)
//		os.Exit(1)
//	}
//
//	gateway, err := apiclient.New(cfg.APIBaseURL, store,
//		apiclient.WithTimeout(cfg.RequestTimeout),
//		apiclient.WithLogger(log),
//	)
//	if err != nil {
//		log.Error("bad API base URL", "error", err)
//		os.Exit(1)
//	}
//
//	sess := session.New(gateway, store, session.WithLogger(log))
//	state := sess.Bootstrap(ctx)
//
// Presentation code renders from session.State snapshots and re-renders on
// every value received from sess.Subscribe(ctx).
package arborvest
