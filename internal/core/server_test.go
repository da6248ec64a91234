package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"mindfuel/internal/config"
)

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordedRequest struct {
	method, endpoint, status string
}

type mockMetricsCollector struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *mockMetricsCollector) RecordRequest(method, endpoint, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method, endpoint, status})
}

func (m *mockMetricsCollector) recorded() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.requests...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(&config.Config{Environment: "local"}, discardLogger())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t)
	if srv.Validator == nil {
		t.Error("Validator should be initialized")
	}
	if srv.Router() == nil || srv.Handler() == nil {
		t.Error("router should be initialized")
	}
}

func TestNewServer_NilArguments(t *testing.T) {
	if _, err := NewServer(nil, discardLogger()); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewServer(&config.Config{}, nil); err == nil {
		t.Error("expected error for nil logger")
	}
}

func TestServer_ShutdownClosesInReverseOrder(t *testing.T) {
	srv := newTestServer(t)

	var order []string
	srv.Closers = append(srv.Closers,
		closerFunc(func() error { order = append(order, "store"); return nil }),
		closerFunc(func() error { order = append(order, "pool"); return nil }),
	)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if len(order) != 2 || order[0] != "pool" || order[1] != "store" {
		t.Errorf("close order = %v, want [pool store]", order)
	}
}

func TestServer_ShutdownJoinsErrors(t *testing.T) {
	srv := newTestServer(t)

	errA := errors.New("a failed")
	called := false
	srv.Closers = []io.Closer{
		closerFunc(func() error { called = true; return nil }),
		closerFunc(func() error { return errA }),
	}

	err := srv.Shutdown(context.Background())
	if !errors.Is(err, errA) {
		t.Errorf("expected wrapped closer error, got %v", err)
	}
	if !called {
		t.Error("remaining closers must still run after a failure")
	}
}
