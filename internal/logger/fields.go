package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldJobID is the structured log field key for a job identifier.
	FieldJobID = "job_id"
	// FieldSource is the structured log field key for the job source provider.
	FieldSource = "job_source"
	// FieldTitle is the structured log field key for the job title.
	FieldTitle = "job_title"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// JobFields returns the standard fields describing a job.
// Empty source and title are dropped to keep entries compact.
func JobFields(id int64, source, title string) []zap.Field {
	fields := []zap.Field{zap.Int64(FieldJobID, id)}
	return append(fields, StringFields(
		StringField{Key: FieldSource, Value: source},
		StringField{Key: FieldTitle, Value: title},
	)...)
}

// WithJob attaches the job fields to the provided logger.
func WithJob(logger *zap.Logger, id int64, source, title string) *zap.Logger {
	return WithFields(logger, JobFields(id, source, title)...)
}
