//go:build integration

package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestTracker_Integration_SharedBudget(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx := context.Background()
	logger := zerolog.New(os.Stderr)

	writer := NewTracker(redisClient, DefaultThresholds(), logger)
	reader := NewTracker(redisClient, DefaultThresholds(), logger)

	if err := writer.UpdateFromHeaders(ctx, budget("2", "20")); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	allowed, err := reader.Allow(ctx)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if allowed {
		t.Error("second tracker should observe the critical budget")
	}
}

func TestTracker_Integration_StateExpiresWithWindow(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx := context.Background()
	tracker := NewTracker(redisClient, DefaultThresholds(), zerolog.New(os.Stderr))

	if err := tracker.UpdateFromHeaders(ctx, budget("1", "1")); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	time.Sleep(2 * time.Second)

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state != nil {
		t.Errorf("state should expire with the window, got %+v", state)
	}
}
