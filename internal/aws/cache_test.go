package aws

import (
	"testing"
	"time"
)

func TestTTLCache_SetGet(t *testing.T) {
	cache := newTTLCache(time.Minute)
	cache.set("quota:vpc:L-0EA8095F", 120)

	got, ok := cache.get("quota:vpc:L-0EA8095F")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != 120 {
		t.Errorf("got %d, want 120", got)
	}
}

func TestTTLCache_Miss(t *testing.T) {
	cache := newTTLCache(time.Minute)
	if _, ok := cache.get("missing"); ok {
		t.Error("expected cache miss")
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	cache := newTTLCache(time.Millisecond)
	cache.set("plcap:pl-abc", 60)

	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.get("plcap:pl-abc"); ok {
		t.Error("expected entry to expire")
	}
}

func TestTTLCache_DefaultTTL(t *testing.T) {
	cache := newTTLCache(0)
	if cache.ttl != 5*time.Minute {
		t.Errorf("default ttl = %s, want 5m", cache.ttl)
	}
}
