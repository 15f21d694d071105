package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/agendamoz/barber-platform/internal/config"
	"github.com/agendamoz/barber-platform/internal/notify"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: ""}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), false); client != nil {
		t.Fatalf("expected nil client for empty addr")
	}
}

func TestBuildRedisClientVerify(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestBuildRedisClientVerifyUnreachable(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildDatabasePoolRequiresURL(t *testing.T) {
	if _, err := BuildDatabasePool(context.Background(), &appconfig.Config{}); err == nil {
		t.Fatalf("expected error for missing database url")
	}
}

func TestBuildReceiptQueueMemory(t *testing.T) {
	cfg := &appconfig.Config{UseMemoryQueue: true}

	queue, err := BuildReceiptQueue(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := queue.(*notify.MemoryQueue); !ok {
		t.Fatalf("expected memory queue, got %T", queue)
	}
}

func TestBuildReceiptQueueRequiresURL(t *testing.T) {
	cfg := &appconfig.Config{UseMemoryQueue: false, ReceiptQueueURL: ""}
	if _, err := BuildReceiptQueue(context.Background(), cfg, logging.New("error")); err == nil {
		t.Fatalf("expected error without queue url")
	}
}
