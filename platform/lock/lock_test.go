package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := NewRedis(client, "acq:", time.Minute)
	l.poll = 5 * time.Millisecond
	return l, mr
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	l, _ := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "sub-1"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired while held, got %v", err)
	}

	unlock()
	unlock2, err := l.Lock(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlock2()
}

func TestRedisLockerKeysAreIndependent(t *testing.T) {
	l, _ := newRedisLocker(t)

	unlockA, err := l.Lock(context.Background(), "sub-a")
	if err != nil {
		t.Fatalf("lock a: %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	unlockB, err := l.Lock(ctx, "sub-b")
	if err != nil {
		t.Fatalf("lock b should not wait on a: %v", err)
	}
	unlockB()
}

func TestRedisLockerReleaseDoesNotDropForeignToken(t *testing.T) {
	l, mr := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	// Simulate expiry followed by another replica taking the key.
	mr.FastForward(2 * time.Minute)
	if err := mr.Set("acq:sub-1", "someone-else"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	unlock()
	got, err := mr.Get("acq:sub-1")
	if err != nil || got != "someone-else" {
		t.Fatalf("expected foreign token to survive release, got %q (%v)", got, err)
	}
}

func TestLocalLockerSerializesAndHonoursContext(t *testing.T) {
	l := NewLocal()

	unlock, err := l.Lock(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "sub-1"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}

	unlock()
	unlock() // idempotent
	again, err := l.Lock(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	again()
}

func TestRedisLockerKeepsKeyAliveWhileHeld(t *testing.T) {
	l, mr := newRedisLocker(t)
	l.refresh = 5 * time.Millisecond

	unlock, err := l.Lock(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	// Ten minutes of server time pass while the holder is still working.
	for i := 0; i < 30; i++ {
		mr.FastForward(20 * time.Second)
		time.Sleep(25 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "sub-1"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("second holder acquired the lock while the first still holds it: %v", err)
	}

	unlock()
	if mr.Exists("acq:sub-1") {
		t.Fatal("expected key removed on release")
	}
	mr.FastForward(2 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	if mr.Exists("acq:sub-1") {
		t.Fatal("refresh must stop after release")
	}
}

func TestRedisLockerStopsRefreshingForeignKey(t *testing.T) {
	l, mr := newRedisLocker(t)
	l.refresh = 5 * time.Millisecond

	unlock, err := l.Lock(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	if err := mr.Set("acq:sub-1", "someone-else"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	mr.SetTTL("acq:sub-1", 30*time.Second)
	time.Sleep(30 * time.Millisecond)

	if ttl := mr.TTL("acq:sub-1"); ttl != 30*time.Second {
		t.Fatalf("foreign key ttl changed to %v", ttl)
	}
}

func TestLocalLockerDropsIdleSlots(t *testing.T) {
	l := NewLocal()

	unlock, err := l.Lock(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "sub-1"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
	if n := len(l.locks); n != 1 {
		t.Fatalf("expected the held slot to stay, got %d", n)
	}

	unlock()
	if n := len(l.locks); n != 0 {
		t.Fatalf("expected no slots after release, got %d", n)
	}
}
