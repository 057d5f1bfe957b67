// Package logging provides structured logging for the rx CLI using slog.
//
// Text output goes through [Handler], a compact one-line format with
// optional colors; JSON output uses the standard library handler. Levels
// at or below [LevelTrace] are named TRACE in both formats.
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(2),
//		Format: logging.FormatText,
//		Color:  logging.ColorAuto,
//		File:   logFile, // optional JSON copy
//	})
//
// # Colors
//
// [ColorMode] follows the --color flag. ColorAuto colors terminals only and
// honors NO_COLOR and TERM=dumb.
//
// # Context
//
// The CLI stores the configured logger on the command context:
//
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Debug("compiled schema", "path", path)
//
// # Testing
//
// [ForTest] routes output through t.Log; [NewDiscard] drops everything.
package logging
