//go:build integration

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sternrassler/catalog-selector/internal/server"
	"github.com/Sternrassler/catalog-selector/internal/testutil"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestRedis starts a Redis container and returns its address.
func setupTestRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	t.Cleanup(func() { redisC.Terminate(ctx) })

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return host + ":" + port.Port()
}

func TestReadyEndpoint(t *testing.T) {
	mock := testutil.NewMockCatalog(testutil.SequentialIDs(24), 12)
	defer mock.Close()

	cfg := testConfig(t, mock.URL())
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = setupTestRedis(t)

	sess, err := newSession(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}
	defer sess.Close()

	handler := server.New(sess.coord, sess.store, sess.selector, server.Options{Redis: sess.redis}).Handler()

	t.Run("ready", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))

		body, _ := io.ReadAll(w.Result().Body)
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if string(body) != "READY" {
			t.Errorf("Expected body 'READY', got %s", string(body))
		}
	})

	t.Run("metrics", func(t *testing.T) {
		if err := sess.coord.GoToPage(context.Background(), 1); err != nil {
			t.Fatalf("GoToPage failed: %v", err)
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

		bodyStr := w.Body.String()
		if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
			t.Error("Expected Prometheus format metrics output")
		}
		if !strings.Contains(bodyStr, "catalog_rate_limit_remaining") {
			t.Error("Expected metrics output to contain catalog_rate_limit_remaining")
		}
	})

	t.Run("not_ready_redis_down", func(t *testing.T) {
		// Close Redis to simulate failure
		sess.redis.Close()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}
