package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBucket_BurstThenBlocks(t *testing.T) {
	b := NewBucket(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !b.TryAcquire() {
			t.Fatalf("expected token %d to be available", i)
		}
	}
	if b.TryAcquire() {
		t.Error("expected bucket to be exhausted after burst")
	}
}

func TestBucket_WaitHonorsCancellation(t *testing.T) {
	b := NewBucket(1, time.Hour)
	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("first wait should succeed immediately: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.Wait(ctx); err == nil {
		t.Error("expected cancelled wait to return an error")
	}
}

func TestBucket_RefillsOverTime(t *testing.T) {
	b := NewBucket(50, time.Second)
	for b.TryAcquire() {
	}
	time.Sleep(60 * time.Millisecond)
	if !b.TryAcquire() {
		t.Error("expected a token after refill window")
	}
}
