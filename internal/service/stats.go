package service

import "sync/atomic"

// Stats - 파이프라인 단계별 누적 카운터 (status API에서 조회)
type Stats struct {
	linesRead        atomic.Int64
	detected         atomic.Int64
	suppressed       atomic.Int64
	dispatched       atomic.Int64
	dropped          atomic.Int64
	analyzerFailures atomic.Int64
	persistFailures  atomic.Int64
	notifyFailures   atomic.Int64
	completed        atomic.Int64
}

// StatsSnapshot - 특정 시점의 카운터 값
type StatsSnapshot struct {
	LinesRead        int64
	Detected         int64
	Suppressed       int64
	Dispatched       int64
	Dropped          int64
	AnalyzerFailures int64
	PersistFailures  int64
	NotifyFailures   int64
	Completed        int64
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	return StatsSnapshot{
		LinesRead:        s.linesRead.Load(),
		Detected:         s.detected.Load(),
		Suppressed:       s.suppressed.Load(),
		Dispatched:       s.dispatched.Load(),
		Dropped:          s.dropped.Load(),
		AnalyzerFailures: s.analyzerFailures.Load(),
		PersistFailures:  s.persistFailures.Load(),
		NotifyFailures:   s.notifyFailures.Load(),
		Completed:        s.completed.Load(),
	}
}
