package logger

import (
	"time"
)

// OperationLogger logs the stages of a single pipeline run with timing
type OperationLogger struct {
	logger    Logger
	operation string
	fields    Fields
	startTime time.Time
	stepStart time.Time
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(operation string, logger Logger) *OperationLogger {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	now := time.Now()
	ol := &OperationLogger{
		logger:    logger,
		operation: operation,
		fields:    make(Fields),
		startTime: now,
		stepStart: now,
	}

	ol.logger.WithField("operation", operation).Debug("Starting operation")
	return ol
}

// WithField adds a field to every subsequent entry
func (ol *OperationLogger) WithField(key string, value interface{}) *OperationLogger {
	ol.fields[key] = value
	return ol
}

func (ol *OperationLogger) entry(extra Fields) Logger {
	fields := Fields{"operation": ol.operation}
	for k, v := range ol.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	return ol.logger.WithFields(fields)
}

// Step logs completion of a named step and the rows it handled
func (ol *OperationLogger) Step(step string, rows int) {
	now := time.Now()
	ol.entry(Fields{
		"step":     step,
		"rows":     rows,
		"duration": now.Sub(ol.stepStart).String(),
	}).Info("Operation step")
	ol.stepStart = now
}

// Warning logs a recoverable data issue
func (ol *OperationLogger) Warning(message string, extra Fields) {
	ol.entry(extra).Warn(message)
}

// Success completes the operation successfully
func (ol *OperationLogger) Success(message string) {
	ol.entry(Fields{
		"duration": time.Since(ol.startTime).String(),
		"status":   "success",
	}).Info(message)
}

// Error completes the operation with an error
func (ol *OperationLogger) Error(err error, message string) {
	ol.entry(Fields{
		"duration": time.Since(ol.startTime).String(),
		"status":   "error",
	}).WithError(err).Error(message)
}

// TimedOperation executes a function and logs timing information
func TimedOperation(operation string, logger Logger, fn func() error) error {
	ol := NewOperationLogger(operation, logger)

	err := fn()

	if err != nil {
		ol.Error(err, "Operation failed")
	} else {
		ol.Success("Operation completed successfully")
	}

	return err
}
