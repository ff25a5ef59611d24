package store

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"homesage_client/api"
	"homesage_client/backendtest"
	"homesage_client/domain"
)

func newBackend(t *testing.T, role domain.UserRole) *backendtest.Backend {
	t.Helper()
	backend := backendtest.New(role)
	t.Cleanup(backend.Close)
	return backend
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("")
}

func testClient(backend *backendtest.Backend) *api.Client {
	return api.NewClient(backend.URL(), 5*time.Second, testLogger(), testTracer())
}

// captureNotifier records every notification for assertions.
type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *captureNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *captureNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	messages := make([]string, len(n.messages))
	copy(messages, n.messages)
	return messages
}

func loggedInAuthStore(backend *backendtest.Backend, notifier Notifier) *AuthStore {
	auth := NewAuthStore(testClient(backend), testLogger(), testTracer(), notifier)
	auth.applyToken("Bearer stub-token")
	return auth
}
