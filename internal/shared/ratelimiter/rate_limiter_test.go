package ratelimiter

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestRateLimiter_AllowsUpToLimit は上限までの呼び出しが待機なしで通過することを検証します。
func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("expected no waiting, took %v", elapsed)
	}
}

// TestRateLimiter_ContextCanceled は期限内に枠が空かない場合にエラーが返されることを検証します。
func TestRateLimiter_ContextCanceled(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("expected error while waiting past the deadline")
	}

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	if err := rl.Wait(cancelled); err == nil {
		t.Error("expected error for cancelled context")
	}
}

// TestRateLimiter_RefillsOverInterval はinterval内でlimit回分が均等に補充されることを検証します。
func TestRateLimiter_RefillsOverInterval(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if !rl.limiter.AllowN(start, 1) || !rl.limiter.AllowN(start, 1) {
		t.Fatal("burst of limit calls should pass")
	}
	if rl.limiter.AllowN(start.Add(20*time.Second), 1) {
		t.Error("third call within 30s should be limited")
	}
	if !rl.limiter.AllowN(start.Add(30*time.Second), 1) {
		t.Error("one slot should be refilled after interval/limit")
	}
}

// TestRateLimiter_Unlimited はlimitが0以下の場合に制限しないことを検証します。
func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0, time.Hour)
	for i := 0; i < 100; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

// TestRateLimiter_Concurrent は並行呼び出しで上限を超えて通過しないことを検証します。
func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(10, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		passed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rl.Wait(ctx); err == nil {
				mu.Lock()
				passed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if passed != 10 {
		t.Errorf("expected 10 calls to pass, got %d", passed)
	}
}
