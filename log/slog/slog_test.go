package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/orchid"
)

func TestLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})
	l := Logger{L: stdslog.New(h)}

	l.Debug("hidden", nil)
	l.Info("shown", orchid.Fields{"elapsed": "0:00:01"})
	l.Error("failed", nil)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level:\n%s", out)
	}
	if !strings.Contains(out, "level=INFO msg=shown elapsed=0:00:01") {
		t.Fatalf("info line missing:\n%s", out)
	}
	if !strings.Contains(out, "level=ERROR msg=failed") {
		t.Fatalf("error line missing:\n%s", out)
	}
}
