package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	bucket := newTokenBucket(3, 1.0, start)

	for i := 0; i < 3; i++ {
		allowed, _, _ := bucket.take(start)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}
	allowed, remaining, reset := bucket.take(start)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, start.Add(3*time.Second), reset)

	allowed, _, _ = bucket.take(start.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refills per second")
}

func TestLimiter_Allow(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Minute})

	ok, info := l.Allow("10.0.0.1", "/parse", "POST")
	assert.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, _ = l.Allow("10.0.0.1", "/parse", "POST")
	assert.True(t, ok)

	ok, info = l.Allow("10.0.0.1", "/parse", "POST")
	assert.False(t, ok)
	assert.InDelta(t, 30, info.RetryAfter.Seconds(), 0.01)

	ok, _ = l.Allow("10.0.0.2", "/parse", "POST")
	assert.True(t, ok, "clients have separate buckets")

	clock.Advance(31 * time.Second)
	ok, _ = l.Allow("10.0.0.1", "/parse", "POST")
	assert.True(t, ok)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	cfg := FromSettings(config.RateLimitConfig{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     []string{" 127.0.0.1 "},
		Blacklist:     []string{"10.6.6.6"},
	})
	l, _ := newTestLimiter(t, cfg)

	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("127.0.0.1", "/parse", "POST")
		assert.True(t, ok)
	}
	ok, _ := l.Allow("10.6.6.6", "/health", "GET")
	assert.False(t, ok)

	disabled, _ := newTestLimiter(t, FromSettings(config.RateLimitConfig{Enabled: false}))
	for i := 0; i < 5; i++ {
		ok, _ := disabled.Allow("10.0.0.1", "/tailor", "POST")
		assert.True(t, ok)
	}
}

func TestLimiter_ModelEndpoints(t *testing.T) {
	cfg := FromSettings(config.RateLimitConfig{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		TailorLimit:   10,
		TailorWindow:  time.Hour,
		Burst:         2,
	})
	l, _ := newTestLimiter(t, cfg)

	for _, path := range []string{"/tailor", "/tailor/stream", "/analyze"} {
		t.Run(path, func(t *testing.T) {
			ok, info := l.Allow("10.0.0.1", path, "POST")
			require.True(t, ok)
			assert.Equal(t, 10, info.Limit)
			ok, _ = l.Allow("10.0.0.1", path, "POST")
			assert.True(t, ok)
			ok, info = l.Allow("10.0.0.1", path, "POST")
			assert.False(t, ok, "burst of 2 is exhausted")
			assert.InDelta(t, 360, info.RetryAfter.Seconds(), 0.01)
		})
	}

	ok, info := l.Allow("10.0.0.1", "/outcomes", "GET")
	assert.True(t, ok)
	assert.Equal(t, 100, info.Limit)

	ok, info = l.Allow("10.0.0.1", "/health", "GET")
	assert.True(t, ok)
	assert.Zero(t, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := ModelEndpoints(5, time.Minute, 1)

	tests := []struct {
		path, method string
		wantPath     string
	}{
		{path: "/tailor", method: "POST", wantPath: "/tailor"},
		{path: "/tailor/quick", method: "POST", wantPath: "/tailor/"},
		{path: "/match", method: "POST", wantPath: "/match"},
		{path: "/match", method: "GET"},
		{path: "/outcomes", method: "GET"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantPath == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("10.0.0.1", "/parse", "POST"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute})

	for i := 0; i < 3; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/parse", "POST")
	}
	require.Equal(t, 3, l.Len())

	clock.Advance(30 * time.Minute)
	l.Allow("10.0.0.0", "/parse", "POST")
	clock.Advance(45 * time.Minute)
	l.cleanupBuckets()
	assert.Equal(t, 1, l.Len(), "only the recently used bucket survives")
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}
