package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDenylist_Key(t *testing.T) {
	if got := key("abc"); got != "revoked:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestDenylist_RevokeExpiredIsNoop(t *testing.T) {
	d := NewDenylist(unreachableClient(t))

	if err := d.Revoke(context.Background(), "jti", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("expected no round trip for an expired token, got %v", err)
	}
}

func TestDenylist_BackendErrorsSurface(t *testing.T) {
	d := NewDenylist(unreachableClient(t))
	ctx := context.Background()

	if err := d.Revoke(ctx, "jti", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected revoke to fail against an unreachable server")
	}
	revoked, err := d.IsRevoked(ctx, "jti")
	if err == nil {
		t.Fatalf("expected revocation check to fail")
	}
	if revoked {
		t.Fatalf("must not report revoked on error")
	}
}

func TestOpen_UnreachableServer(t *testing.T) {
	d, err := Open(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil {
		_ = d.Close()
		t.Fatal("expected a ping error")
	}
	if d != nil {
		t.Fatal("expected no denylist on failure")
	}
}
