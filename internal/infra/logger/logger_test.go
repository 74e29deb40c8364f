package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAttachesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := context.WithValue(context.Background(), RequestIDKey{}, "req-123")
	WithContext(ctx, base).Info("handled")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-123" {
		t.Fatalf("expected request_id req-123, got %v", got)
	}
}

func TestWithContextWithoutRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	WithContext(context.Background(), base).Info("handled")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["request_id"]; ok {
		t.Fatal("expected no request_id field without one on the context")
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "joh***@example.com",
		"ab@example.com":       "ab***@example.com",
		"not-an-email":         "***",
		"":                     "",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskIP(t *testing.T) {
	cases := map[string]string{
		"192.168.1.100":        "192.168.*.*",
		"2001:db8:1:2:3:4:5:6": "2001:db8:1:2:*:*:*:*",
		"garbage":              "***",
		"":                     "",
	}
	for in, want := range cases {
		if got := MaskIP(in); got != want {
			t.Errorf("MaskIP(%q) = %q, want %q", in, got, want)
		}
	}
}
