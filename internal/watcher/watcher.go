// 파일 시스템 변경 알림을 받아 "파일이 커졌을 수 있음" 이벤트를 내보내는 감시자
//
// 동작 방식:
//   - 감시 대상 파일의 상위 디렉터리를 비재귀로 등록 (파일이 재생성돼도 계속 감지)
//   - 디렉터리 등록 실패는 시작 단계의 치명적 오류로 반환
//   - 감시 대상 경로의 Write/Create 이벤트만 전달, 같은 디렉터리의 다른 파일은 무시

package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/logsentry/agent/internal/logger"
)

// ErrClosed - ctx 취소 없이 fsnotify 채널이 닫힘
var ErrClosed = errors.New("fsnotify watcher closed unexpectedly")

// Event - 감시 대상 파일에서 발생한 변경 이벤트
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher - OS 알림 기반 파일 감시자
type Watcher struct {
	fsw     *fsnotify.Watcher
	events  chan Event
	targets map[string]struct{}
	dirs    []string
}

// New - 주어진 파일 경로들의 상위 디렉터리를 감시하는 Watcher 생성
func New(paths []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:     fsw,
		events:  make(chan Event, 256),
		targets: make(map[string]struct{}, len(paths)),
	}

	seenDirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.targets[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := seenDirs[dir]; ok {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("cannot watch directory %s: %w", dir, err)
		}
		seenDirs[dir] = struct{}{}
		w.dirs = append(w.dirs, dir)
		logger.Named("watcher").Info().Str("dir", dir).Msg("watching directory")
	}

	return w, nil
}

// Events - 변경 이벤트 채널 (Start 종료 시 닫힘)
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Dirs - 감시 중인 디렉터리 목록
func (w *Watcher) Dirs() []string {
	return w.dirs
}

// Start - ctx가 취소될 때까지 이벤트를 전달 (블로킹)
// fsnotify 채널이 먼저 닫히면 ErrClosed 반환
func (w *Watcher) Start(ctx context.Context) error {
	defer w.fsw.Close()
	defer close(w.events)

	log := logger.Named("watcher")
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if _, ok := w.targets[path]; !ok {
				continue
			}
			select {
			case w.events <- Event{Path: path, Op: ev.Op}:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}
