package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestHooks(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func TestSampling(t *testing.T) {
	h, buf := newTestHooks(Options{ErrorEvery: 3})
	for i := 0; i < 6; i++ {
		h.DriverError("get", errors.New("down"))
	}
	if n := strings.Count(buf.String(), "omnicache.driver_error"); n != 2 {
		t.Fatalf("expected 2 sampled lines, got %d:\n%s", n, buf.String())
	}
}

func TestRedactsKeys(t *testing.T) {
	h, buf := newTestHooks(Options{})
	h.DriverSetRejected("app:user:secret", false)
	if strings.Contains(buf.String(), "secret") {
		t.Fatalf("physical key leaked: %s", buf.String())
	}

	h2, buf2 := newTestHooks(Options{Redact: func(s string) string { return "R" }})
	h2.SelfHeal("app:user:secret", "value_decode")
	if !strings.Contains(buf2.String(), "key=R") {
		t.Fatalf("custom redactor not used: %s", buf2.String())
	}
}

func TestMultiRejectionLogsPrefix(t *testing.T) {
	h, buf := newTestHooks(Options{Redact: func(s string) string { return "R" }})
	h.DriverSetRejected("app:user:", true)
	out := buf.String()
	if !strings.Contains(out, "prefix=app:user:") || strings.Contains(out, "key=R") {
		t.Fatalf("multi rejection should log the prefix unredacted: %s", out)
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	h := New(nil, Options{})
	h.DriverResolved("memory", "memory:0")
	h.DriverFallback("", "memcached")
	h.PartialMulti("p:", 2, 1)
	h.SelfHeal("p:k", "value_decode")
	h.DriverSetRejected("p:", true)
	h.DriverError("set", errors.New("x"))
}
