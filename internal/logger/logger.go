package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey struct{}

var requestIDKey ctxKey

// New returns a JSON logger writing to stdout. An unknown level falls back to info.
func New(level string) *logrus.Logger {
	return newWithOutput(level, os.Stdout)
}

func newWithOutput(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = out
	return log
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns an entry tagged with the request id and the active
// trace and span ids, when present.
func FromContext(ctx context.Context, log logrus.FieldLogger) *logrus.Entry {
	fields := logrus.Fields{}
	if id := RequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	return log.WithFields(fields)
}
