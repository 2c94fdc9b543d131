package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestNew_ParsesLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug").Level)
	assert.Equal(t, logrus.InfoLevel, New("nonsense").Level)
}

func TestFromContext_RequestAndTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput("info", &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithRequestID(ctx, "req-1")

	FromContext(ctx, log).Info("hello")

	line := decodeLine(t, &buf)
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "info", line["severity"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", line["span_id"])
}

func TestFromContext_Empty(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput("info", &buf)

	FromContext(context.Background(), log).Warn("plain")

	line := decodeLine(t, &buf)
	assert.NotContains(t, line, "request_id")
	assert.NotContains(t, line, "trace_id")
}
