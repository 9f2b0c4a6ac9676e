package durable

import (
	"context"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, _ := m.Get(ctx, KeyAccessToken); ok {
		t.Fatal("fresh storage should be empty")
	}
	if err := m.Set(ctx, KeyAccessToken, "tok"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := m.Get(ctx, KeyAccessToken); !ok || v != "tok" {
		t.Fatalf("got %q %v", v, ok)
	}
	if err := m.Remove(ctx, KeyAccessToken); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.Get(ctx, KeyAccessToken); ok {
		t.Fatal("key survived Remove")
	}
}

func TestMemoryFactoryIsolatesBrowsers(t *testing.T) {
	ctx := context.Background()
	f := NewMemoryFactory()
	_ = f.For("a").Set(ctx, KeySession, "blob-a")

	if _, ok, _ := f.For("b").Get(ctx, KeySession); ok {
		t.Fatal("browser b sees browser a's data")
	}
	if v, _, _ := f.For("a").Get(ctx, KeySession); v != "blob-a" {
		t.Fatalf("browser a lost its data: %q", v)
	}
}

func TestRedisKeyNamespace(t *testing.T) {
	r := RedisFactory{}.For("b1").(*Redis)
	if got := r.key(KeyRefreshToken); got != "storefront:b1:refreshToken" {
		t.Fatalf("key = %q", got)
	}
	if r.ttl <= 0 {
		t.Fatal("default ttl not applied")
	}
}
