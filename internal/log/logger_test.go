package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"footprint/internal/trace"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf, Component: ComponentStorage})
	l.WithComponent(ComponentActivity).Info("Activity created",
		NewFields().WithActivity(7, "Transport", "Bus", 10, 1.05).WithError(errors.New("none")).ToSlice()...)

	out := buf.String()
	for _, want := range []string{"component=activity", "activity_id=7", "category=Transport", "error=none"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: "json", Output: &buf}).Warn("degraded")
	if !strings.Contains(buf.String(), `"component":"app"`) {
		t.Fatalf("unexpected json output: %s", buf.String())
	}
}

func TestContextCarriesOperationID(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Component: ComponentDashboard})

	l.InfoContext(context.Background(), "untraced")
	if strings.Contains(buf.String(), FieldOperationID) {
		t.Fatalf("unexpected operation id in %q", buf.String())
	}

	buf.Reset()
	l.InfoContext(trace.WithOperationID(context.Background(), "op_1234"), "traced")
	if !strings.Contains(buf.String(), "operation_id=op_1234") {
		t.Fatalf("expected operation id in %q", buf.String())
	}
}
