// Package logger provides structured JSON logging for the docsearch services.
//
// It wraps Uber's Zap logger behind a small API that takes a message, an
// optional error, and optional field maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info"})
//	log.Info("document ingested", nil, map[string]interface{}{
//		"doc_uid":   docUID,
//		"group_uid": groupUID,
//	})
//
// The package also exposes an fx module that provides the logger and flushes
// buffered entries on shutdown:
//
//	app := fx.New(
//		logger.FXModule,
//		// ... other modules
//	)
//
// The log level is configured via ZAP_LOGGER_LEVEL (debug, info, warning,
// error). All methods are safe for concurrent use.
package logger
