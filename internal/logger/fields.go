package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSession is the structured log field key for the session identifier.
	FieldSession = "session_id"
	// FieldMessage is the structured log field key for the message identifier.
	FieldMessage = "message_id"
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

// CommonFields builds the session/message field pair shared by conversation
// logs. Blank values are omitted.
func CommonFields(sessionID, messageID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSession, Value: sessionID},
		StringField{Key: FieldMessage, Value: messageID},
	)
}

// WithFields returns a logger enriched with the provided fields, falling back
// to a no-op logger when nil is given.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithCommonFields returns a logger enriched with the session/message pair.
func WithCommonFields(logger *zap.Logger, sessionID, messageID string) *zap.Logger {
	return WithFields(logger, CommonFields(sessionID, messageID)...)
}
