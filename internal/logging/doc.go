// Package logging provides structured logging for gantry.
//
// It wraps Go's log/slog with a JSON handler and adds persistent context
// attributes so that every entry emitted while computing a schedule can be
// traced back to its project and operation.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithProject("tower-b").WithOperation("auto_schedule")
//	log.Info("schedule computed", "changes", 4, "conflicts", 1)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"schedule computed","project_id":"tower-b","operation":"auto_schedule","changes":4,"conflicts":1}
//
// # Log Rotation
//
// [NewLoggerWithRotation] rotates gantry.log to gantry.log.1, gantry.log.2, ...
// once it exceeds RotationConfig.MaxSizeMB.
//
// # Testing
//
// Use [NopLogger] to discard all output, or [NewWriterLogger] with a
// bytes.Buffer to assert on emitted entries.
package logging
