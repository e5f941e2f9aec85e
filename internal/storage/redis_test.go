package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ifrs17-reporting/internal/config"
)

func TestNewRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	cfg := &config.RedisConfig{
		Host:           mr.Host(),
		Port:           mr.Port(),
		MaxConnections: 4,
	}

	store, err := NewRedisStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	ctx := testContext(t)
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if store.Client() == nil {
		t.Error("Client() returned nil")
	}
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err = NewRedisStore(context.Background(), &config.RedisConfig{Host: host, Port: port})
	if err == nil {
		t.Error("NewRedisStore() expected error for closed server")
	}
}
