package apex

import (
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"

	"github.com/unkn0wn-root/orchid"
)

func TestLevelsAndFields(t *testing.T) {
	h := memory.New()
	l := Logger{L: &log.Logger{Handler: h, Level: log.DebugLevel}}

	l.Debug("d", nil)
	l.Info("i", orchid.Fields{"func": "work"})
	l.Warn("w", nil)
	l.Error("e", nil)

	if len(h.Entries) != 4 {
		t.Fatalf("entries=%d, want 4", len(h.Entries))
	}
	want := []log.Level{log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel}
	for i, e := range h.Entries {
		if e.Level != want[i] {
			t.Fatalf("entry %d level=%v, want %v", i, e.Level, want[i])
		}
	}
	if h.Entries[1].Fields["func"] != "work" {
		t.Fatalf("fields=%v", h.Entries[1].Fields)
	}
}
