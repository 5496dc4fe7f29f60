package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("malformed log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("order", "production", "info", &buf)

	log.Info(context.Background(), "order received", Field{Key: "order_id", Value: "abc123"})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	for _, key := range []string{"timestamp", "level", "service", "env", "msg"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("entry missing required field %q", key)
		}
	}
	if entry["service"] != "order" || entry["env"] != "production" {
		t.Errorf("wrong identity fields: service=%v env=%v", entry["service"], entry["env"])
	}
	if entry["level"] != "info" || entry["msg"] != "order received" {
		t.Errorf("wrong level/msg: %v %v", entry["level"], entry["msg"])
	}
	if entry["order_id"] != "abc123" {
		t.Errorf("expected order_id field, got %v", entry["order_id"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("test", "test", "warn", &buf)

	ctx := context.Background()
	log.Debug(ctx, "dropped debug")
	log.Info(ctx, "dropped info")
	log.Warn(ctx, "kept warn")
	log.Error(ctx, "kept error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["msg"] != "kept warn" || entries[1]["msg"] != "kept error" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestLogger_WithRequest(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("test", "test", "info", &buf)

	reqLog := log.WithRequest(RequestMeta{
		CorrelationID: "a1b2c3d4",
		Method:        "POST",
		Path:          "/orders",
	})
	ctx := context.Background()
	reqLog.Info(ctx, "first")
	reqLog.Info(ctx, "second")
	log.Info(ctx, "unscoped")

	entries := decodeLines(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for _, entry := range entries[:2] {
		if entry["correlation_id"] != "a1b2c3d4" {
			t.Errorf("%v: expected correlation_id on every scoped line", entry["msg"])
		}
		if entry["method"] != "POST" || entry["path"] != "/orders" {
			t.Errorf("%v: missing request identity", entry["msg"])
		}
	}
	if _, ok := entries[2]["correlation_id"]; ok {
		t.Error("parent logger must not inherit the request scope")
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("payment", "test", "info", &buf)

	log.Info(context.Background(), "charging card",
		Field{Key: "card_number", Value: "4111111111111111"},
		Field{Key: "cvv", Value: "123"},
		Field{Key: "amount", Value: 42.5},
	)

	out := buf.String()
	if strings.Contains(out, "4111111111111111") || strings.Contains(out, `"cvv":"123"`) {
		t.Fatalf("sensitive values leaked: %s", out)
	}

	entries := decodeLines(t, &buf)
	if entries[0]["card_number"] != "[REDACTED]" || entries[0]["cvv"] != "[REDACTED]" {
		t.Errorf("expected redaction markers, got %v", entries[0])
	}
	if entries[0]["amount"] != 42.5 {
		t.Errorf("non-sensitive field mangled: %v", entries[0]["amount"])
	}
}

func TestLogger_InjectsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("test", "test", "info", &buf)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.Info(ctx, "inside span")
	span.End()
	log.Info(context.Background(), "outside span")

	entries := decodeLines(t, &buf)
	if entries[0]["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("expected trace_id %s, got %v", span.SpanContext().TraceID(), entries[0]["trace_id"])
	}
	if entries[0]["span_id"] != span.SpanContext().SpanID().String() {
		t.Errorf("expected span_id %s, got %v", span.SpanContext().SpanID(), entries[0]["span_id"])
	}
	if _, ok := entries[1]["trace_id"]; ok {
		t.Error("expected no trace_id without an active span")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   LogLevel
	}{
		{200, LevelInfo},
		{204, LevelInfo},
		{302, LevelInfo},
		{400, LevelWarn},
		{404, LevelWarn},
		{499, LevelWarn},
		{500, LevelError},
		{502, LevelError},
	}
	for _, tt := range tests {
		if got := LevelForStatus(tt.status); got != tt.want {
			t.Errorf("LevelForStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	// Must not panic and must swallow output.
	log := LoggerFromContext(context.Background())
	log.Info(context.Background(), "into the void")
}
