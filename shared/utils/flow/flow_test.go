package flow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewLimiter(rdb), mr
}

func TestLimitOnceCheck(t *testing.T) {
	limiter, mr := setupLimiter(t)
	ctx := context.Background()

	acquired, err := limiter.LimitOnceCheck(ctx, "ip:1.2.3.4", 60*time.Second)
	if err != nil {
		t.Fatalf("LimitOnceCheck failed: %v", err)
	}
	if !acquired {
		t.Fatal("first call inside a fresh window should acquire")
	}

	acquired, err = limiter.LimitOnceCheck(ctx, "ip:1.2.3.4", 60*time.Second)
	if err != nil {
		t.Fatalf("LimitOnceCheck failed: %v", err)
	}
	if acquired {
		t.Fatal("second call inside the window should be rejected")
	}

	mr.FastForward(61 * time.Second)

	acquired, err = limiter.LimitOnceCheck(ctx, "ip:1.2.3.4", 60*time.Second)
	if err != nil {
		t.Fatalf("LimitOnceCheck failed: %v", err)
	}
	if !acquired {
		t.Fatal("call after the window elapsed should acquire again")
	}
}

func TestLimitOnceCheckIsPerKey(t *testing.T) {
	limiter, _ := setupLimiter(t)
	ctx := context.Background()

	if ok, _ := limiter.LimitOnceCheck(ctx, "ip:1.1.1.1", time.Minute); !ok {
		t.Fatal("first key should acquire")
	}
	if ok, _ := limiter.LimitOnceCheck(ctx, "ip:2.2.2.2", time.Minute); !ok {
		t.Fatal("a different key should acquire independently")
	}
}
