package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// capture redirects output to a buffer for the duration of the test.
func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Fatal("expected verbose to be off")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Fatal("expected verbose to be on")
	}
}

func TestLevels_Verbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("embedding %d chunks", 12) }, "[DEBUG] embedding 12 chunks\n"},
		{"info", func() { Info("index ready") }, "[INFO] index ready\n"},
		{"warn", func() { Warn("skipping %s", "broken.pdf") }, "[WARN] skipping broken.pdf\n"},
		{"error", func() { Error("agent failed") }, "[ERROR] agent failed\n"},
		{"section", func() { Section("Audit") }, "\n=== Audit ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevels_Quiet(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Section("hidden")
	L().Info("hidden", zap.Int("n", 1))
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	Warn("guide %s could not be read", "legal.pdf")
	Error("boom")
	want := "[WARN] guide legal.pdf could not be read\n[ERROR] boom\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestL_StructuredFields(t *testing.T) {
	buf := capture(t, true)

	L().Info("guide changed", zap.String("path", "voice.md"))

	out := buf.String()
	if !strings.HasPrefix(out, "[INFO] guide changed") || !strings.Contains(out, "voice.md") {
		t.Errorf("unexpected structured output: %q", out)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Debug("concurrent %d", i)
			_ = IsVerbose()
		}()
	}
	wg.Wait()
}
