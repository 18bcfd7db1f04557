// Package logger builds the structured slog logger the SDK components share.
// JSON output suits log shipping from production builds; text output is for
// development. Level and format accept the string forms the config package
// carries, so wiring is one call:
//
//	log := logger.New(
//	    logger.WithLevelString(cfg.LogLevel),
//	    logger.WithFormatString(cfg.LogFormat),
//	)
package logger
