package types

import (
	"context"
	"log/slog"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_abc")
	if got := GetRequestID(ctx); got != "req_abc" {
		t.Errorf("GetRequestID = %q, want req_abc", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on empty context = %q, want empty", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	stored := slog.New(slog.DiscardHandler)
	fallback := slog.New(slog.DiscardHandler)

	if got := LoggerFromContext(WithLogger(context.Background(), stored), fallback); got != stored {
		t.Error("expected the stored logger")
	}
	if got := LoggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("expected the fallback logger")
	}
	if got := LoggerFromContext(context.Background(), nil); got == nil {
		t.Error("expected slog.Default when no fallback is given")
	}
}
