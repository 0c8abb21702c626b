package dedup

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestDedup(window time.Duration) (*Deduplicator, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return New(window, WithClock(clock.Now)), clock
}

func TestSuppressWithinWindow(t *testing.T) {
	d, clock := newTestDedup(5 * time.Minute)

	if d.ShouldSuppress("ctx") {
		t.Fatalf("first occurrence must pass")
	}
	clock.Advance(4 * time.Minute)
	if !d.ShouldSuppress("ctx") {
		t.Fatalf("repeat within window must be suppressed")
	}
	if d.ShouldSuppress("other ctx") {
		t.Fatalf("different content must pass")
	}
}

func TestWindowMeasuredFromFirstOccurrence(t *testing.T) {
	d, clock := newTestDedup(5 * time.Minute)

	d.ShouldSuppress("ctx")
	clock.Advance(3 * time.Minute)
	if !d.ShouldSuppress("ctx") {
		t.Fatalf("expected suppression at +3m")
	}

	// 반복 발생이 윈도우를 연장하지 않으므로 최초 발생 +5m 에 다시 통과
	clock.Advance(2 * time.Minute)
	if d.ShouldSuppress("ctx") {
		t.Fatalf("expected pass once the window since first occurrence elapsed")
	}

	// 통과한 시점부터 새 윈도우 시작
	clock.Advance(time.Minute)
	if !d.ShouldSuppress("ctx") {
		t.Fatalf("expected suppression inside the restarted window")
	}
}

func TestZeroWindowNeverSuppresses(t *testing.T) {
	d, _ := newTestDedup(0)
	d.ShouldSuppress("ctx")
	if d.ShouldSuppress("ctx") {
		t.Fatalf("zero window must disable suppression")
	}
	if d.Len() != 0 {
		t.Fatalf("zero window must not record entries")
	}
}

func TestConcurrentIdenticalOnlyOnePasses(t *testing.T) {
	d, _ := newTestDedup(time.Hour)

	var passed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !d.ShouldSuppress("same context") {
				passed.Add(1)
			}
		}()
	}
	wg.Wait()

	if passed.Load() != 1 {
		t.Fatalf("expected exactly one pass, got %d", passed.Load())
	}
	if d.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", d.Len())
	}
}
