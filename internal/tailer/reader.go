// Package tailer reads lines appended to log files since the previous read.
//
// 파일 변경 이벤트마다 파일 전체를 다시 읽고, 이전에 반환한 줄 수 이후의 줄만 반환한다.
// 오프셋 대신 줄 수를 기준으로 삼기 때문에 파일이 잘리면(truncate) 줄 수가 0으로
// 초기화되고 현재 내용 전체가 새 줄로 취급된다. 잘리기 전에 이미 본 줄이 다시
// 나올 수 있으며, 이는 의도된 동작이다.
package tailer

import (
	"bytes"
	"os"
	"sync"

	"github.com/logsentry/agent/internal/logger"
)

// LineReader - 경로별로 이미 반환한 줄 수를 기억하는 리더
type LineReader struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewLineReader() *LineReader {
	return &LineReader{counts: make(map[string]int)}
}

// ReadNewLines - 마지막 호출 이후 추가된 완결된 줄을 순서대로 반환
//
// 읽기 실패(파일 없음, 권한, 쓰기 도중 등)는 로그만 남기고 새 줄 0개로 처리한다.
// 개행으로 끝나지 않은 마지막 줄은 개행이 들어올 때까지 반환하지 않는다.
func (r *LineReader) ReadNewLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Named("tailer").Warn().Err(err).Str("path", path).Msg("failed to read log file")
		return nil
	}
	lines := splitCompleteLines(data)

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.counts[path]
	if len(lines) < prev {
		logger.Named("tailer").Info().
			Str("path", path).
			Int("previous_lines", prev).
			Int("current_lines", len(lines)).
			Msg("log file truncated, replaying from start")
		prev = 0
	}
	r.counts[path] = len(lines)

	if prev == len(lines) {
		return nil
	}
	return lines[prev:]
}

// Prime - 현재 줄 수만 기록하고 내용은 반환하지 않음 (기존 내용으로 알림이 나가지 않도록)
func (r *LineReader) Prime(path string) {
	n := 0
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Named("tailer").Warn().Err(err).Str("path", path).Msg("failed to prime log file, starting from empty")
	} else {
		n = len(splitCompleteLines(data))
	}

	r.mu.Lock()
	r.counts[path] = n
	r.mu.Unlock()
}

// splitCompleteLines - 개행으로 끝나는 줄만 분리 (\r\n 허용)
func splitCompleteLines(data []byte) []string {
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil
	}

	parts := bytes.Split(data[:end], []byte{'\n'})
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = string(bytes.TrimSuffix(p, []byte{'\r'}))
	}
	return lines
}
