package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, 200*time.Millisecond)

	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	time.Sleep(250 * time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after waiting")
	}

	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 100*time.Millisecond)
	tb.Allow()

	start := time.Now()
	if err := tb.Wait(context.Background()); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected Wait to block until refill, returned after %v", elapsed)
	}
}

func TestTokenBucketWaitCancelled(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	tb.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := tb.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, 200*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !sw.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if sw.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	time.Sleep(250 * time.Millisecond)
	if !sw.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}

	sw.Reset()
	if len(sw.requests) != 0 {
		t.Error("Expected requests to be cleared after reset")
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(StrategyTokenBucket, 0).(Unlimited); !ok {
		t.Error("Expected zero requests per minute to disable limiting")
	}
	if _, ok := New(StrategySlidingWindow, 0).(Unlimited); !ok {
		t.Error("Expected zero requests per minute to disable limiting for sliding window")
	}
	if _, ok := New(StrategyTokenBucket, 30).(*TokenBucket); !ok {
		t.Error("Expected a token bucket for a positive limit")
	}
	if _, ok := New(StrategySlidingWindow, 30).(*SlidingWindow); !ok {
		t.Error("Expected a sliding window when requested")
	}

	u := Unlimited{}
	for i := 0; i < 1000; i++ {
		if !u.Allow() {
			t.Fatal("Unlimited limiter denied a request")
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyTokenBucket, false},
		{"token_bucket", StrategyTokenBucket, false},
		{" Sliding_Window ", StrategySlidingWindow, false},
		{"leaky", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
