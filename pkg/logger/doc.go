// Package logger builds the structured slog.Logger used across noticeboard.
//
// New assembles a text or JSON handler from functional options and wraps it in a
// decorator that pulls request-scoped values (request id, client ip) out of
// context.Context on every record. Attribute helpers in attr.go keep key names
// consistent between packages:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "noticeboard"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "user logged in",
//		logger.UserID(user.ID),
//		logger.Provider(string(user.Provider)),
//	)
//
// Error and UserID return an empty attribute for nil input, so call sites never
// need a nil check before logging.
package logger
