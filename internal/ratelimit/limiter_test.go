package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func TestAllow_BurstThenRefill(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	if !l.Allow("ip:1.2.3.4", now) || !l.Allow("ip:1.2.3.4", now) {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow("ip:1.2.3.4", now) {
		t.Error("expected third request to be limited")
	}
	if !l.Allow("ip:5.6.7.8", now) {
		t.Error("expected other key to have its own bucket")
	}
	if !l.Allow("ip:1.2.3.4", now.Add(time.Second)) {
		t.Error("expected token to refill after one second")
	}
}

func TestNew_DisabledAllowsEverything(t *testing.T) {
	tests := []struct {
		rps   float64
		burst int
	}{
		{0, 10},
		{5, 0},
		{-1, -1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("rps=%v burst=%d", tt.rps, tt.burst), func(t *testing.T) {
			l := New(tt.rps, tt.burst, 0)
			if l != nil {
				t.Fatal("expected nil limiter")
			}
			for i := 0; i < 100; i++ {
				if !l.Allow("k", time.Now()) {
					t.Fatal("nil limiter must allow")
				}
			}
		})
	}
}

func TestAllow_BlankKeyBypasses(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()
	for i := 0; i < 5; i++ {
		if !l.Allow("  ", now) {
			t.Fatal("blank key must not be limited")
		}
	}
	if l.Len() != 0 {
		t.Errorf("expected no tracked keys, got %d", l.Len())
	}
}

func TestAllow_EvictsIdleKeys(t *testing.T) {
	l := New(100, 100, time.Minute)
	start := time.Unix(1_700_000_000, 0)
	l.Allow("stale", start)

	later := start.Add(2 * time.Minute)
	for i := 0; i < evictEvery; i++ {
		l.Allow("fresh", later)
	}
	if l.Len() != 1 {
		t.Errorf("expected stale key to be evicted, tracking %d keys", l.Len())
	}
}
