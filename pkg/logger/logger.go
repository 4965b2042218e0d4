package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger = zap.NewNop()

// Init configures the process-wide structured logger. JSON output in
// production, console output when LOG_FORMAT=console.
func Init() {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if os.Getenv("LOG_FORMAT") == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	level := zapcore.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		_ = level.Set(raw)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	log = zap.New(core)
}

func fieldsOf(details map[string]interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(details))
	for key, value := range details {
		fields = append(fields, zap.Any(key, value))
	}
	return fields
}

func Info(event string, details map[string]interface{}) {
	log.Info(event, fieldsOf(details)...)
}

func InfoWithUser(userID string, event string, details map[string]interface{}) {
	fields := append(fieldsOf(details), zap.String("user_id", userID))
	log.Info(event, fields...)
}

func Warn(event string, details map[string]interface{}) {
	log.Warn(event, fieldsOf(details)...)
}

func Error(event string, err error, details map[string]interface{}) {
	fields := append(fieldsOf(details), zap.Error(err))
	log.Error(event, fields...)
}
