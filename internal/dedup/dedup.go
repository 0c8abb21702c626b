// Package dedup suppresses repeated alerts whose context text is byte-identical
// within a time window.
//
// 중복 판단 기준:
//   - 처음 보는 digest: 현재 시각 기록, 통과
//   - 윈도우 안에서 다시 나온 digest: 억제, 시각 갱신하지 않음 (윈도우는 최초 발생 기준)
//   - 윈도우가 지난 digest: 새 발생으로 보고 시각 갱신, 통과
//
// 만료 항목을 지우는 백그라운드 작업은 없다. 키 공간은 실제로 관측된 서로 다른
// 에러 컨텍스트 수로 제한되고, 오래된 항목은 다음 발생 때 덮어써진다.
package dedup

import (
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

type digest = [blake2b.Size256]byte

// Deduplicator - 모든 감시 대상이 공유하는 중복 억제 캐시
type Deduplicator struct {
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	firstSeen map[digest]time.Time
}

type Option func(*Deduplicator)

// WithClock - 테스트용 시계 주입
func WithClock(now func() time.Time) Option {
	return func(d *Deduplicator) { d.now = now }
}

// New - window가 0 이하이면 억제하지 않음
func New(window time.Duration, opts ...Option) *Deduplicator {
	d := &Deduplicator{
		window:    window,
		now:       time.Now,
		firstSeen: make(map[digest]time.Time),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ShouldSuppress - content를 이번에 억제해야 하면 true
// 조회와 갱신을 하나의 락 안에서 처리해서, 동시에 들어온 동일 알림이 둘 다 통과하지 않는다.
func (d *Deduplicator) ShouldSuppress(content string) bool {
	if d.window <= 0 {
		return false
	}

	key := blake2b.Sum256([]byte(content))
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if first, ok := d.firstSeen[key]; ok && now.Sub(first) < d.window {
		return true
	}
	d.firstSeen[key] = now
	return false
}

// Len - 현재 기록된 digest 수
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.firstSeen)
}

func (d *Deduplicator) Window() time.Duration {
	return d.window
}
