package framemsg

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := SlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.InfoPrintf("connected to %s", "frame")
	l.DebugPrintf("len=%d", 3)
	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, `msg="framemsg: connected to frame"`) {
		t.Errorf("info line missing: %s", out)
	}
	if !strings.Contains(out, "level=DEBUG") {
		t.Errorf("debug line missing: %s", out)
	}

	base := io.EOF
	err := l.Errorf("read: %w", base)
	if !errors.Is(err, base) {
		t.Errorf("Errorf does not wrap: %v", err)
	}
	if err.Error() != "framemsg: read: EOF" {
		t.Errorf("Errorf = %q", err)
	}
}

func TestDefaultLoggerFollowsSlogDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	DefaultLogger().WarnPrintf("low battery")
	if !strings.Contains(buf.String(), "framemsg: low battery") {
		t.Errorf("output = %q", buf.String())
	}
}
