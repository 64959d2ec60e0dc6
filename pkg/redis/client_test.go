package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kaojob/jobboard-service/internal/config"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := NewClient(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client != nil {
		t.Error("NewClient() should return nil client when REDIS_ADDR is empty")
	}
}

func TestNewClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), &config.Config{RedisAddr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Errorf("miniredis value = %q, want %q", got, "v")
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewClient(context.Background(), &config.Config{RedisAddr: addr})
	if err == nil {
		t.Fatal("NewClient() should fail when the server is unreachable")
	}
	if client != nil {
		t.Error("NewClient() should return nil client on error")
	}
}
