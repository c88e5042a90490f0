package logging

import "testing"

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		if err != nil {
			t.Fatalf("New(%q): unexpected error: %v", level, err)
		}
		if logger == nil {
			t.Fatalf("New(%q): expected logger instance", level)
		}
		_ = logger.Sync()
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
