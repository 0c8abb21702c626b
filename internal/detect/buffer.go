// Package detect holds the per-file detection state: the rolling context
// window of recent lines and the keyword matcher.
//
// 두 타입 모두 감시 대상 파일 1개의 처리 고루틴이 단독으로 소유하며,
// 고루틴 간 공유를 전제로 하지 않는다 (락 없음).
package detect

import "strings"

// ContextBuffer - 최근 N줄을 보관하는 고정 크기 링 버퍼
//
// 가득 차면 가장 오래된 줄부터 밀려난다. 삽입 순서 == 도착 순서.
// 각 줄에는 단조 증가하는 시퀀스 번호가 붙어서, 나중에 줄이 더 들어온 뒤에도
// 매칭된 줄의 위치를 다시 찾을 수 있다.
type ContextBuffer struct {
	lines []string
	start int    // 가장 오래된 줄의 인덱스
	size  int    // 현재 보관 중인 줄 수
	next  uint64 // 다음에 들어올 줄의 시퀀스 번호
}

func NewContextBuffer(capacity int) *ContextBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ContextBuffer{lines: make([]string, capacity)}
}

// Append - 줄 추가 후 그 줄의 시퀀스 번호 반환
func (b *ContextBuffer) Append(line string) uint64 {
	c := len(b.lines)
	if b.size < c {
		b.lines[(b.start+b.size)%c] = line
		b.size++
	} else {
		b.lines[b.start] = line
		b.start = (b.start + 1) % c
	}
	seq := b.next
	b.next++
	return seq
}

func (b *ContextBuffer) Cap() int { return len(b.lines) }

// at - 오래된 순서 기준 i번째 줄
func (b *ContextBuffer) at(i int) string {
	return b.lines[(b.start+i)%len(b.lines)]
}

// FromEnd - 시퀀스 번호를 최신 줄 기준 위치(0 = 최신)로 변환
// 이미 밀려났거나 아직 없는 줄이면 false
func (b *ContextBuffer) FromEnd(seq uint64) (int, bool) {
	if seq >= b.next {
		return 0, false
	}
	fromEnd := b.next - 1 - seq
	if fromEnd >= uint64(b.size) {
		return 0, false
	}
	return int(fromEnd), true
}

// ExtractAround - 매칭 줄 기준 [idx-before, idx+after] 범위를 버퍼 경계로 잘라서 개행으로 연결
//
// fromEnd가 범위를 벗어나면 최신 줄을 기준으로 삼는다. 경계 밖 범위는 오류 없이
// 결과가 짧아질 뿐이다. after 쪽 줄은 추출 시점에 이미 버퍼에 있는 줄에서만 나오며,
// 이후에 들어올 줄을 기다리지 않는다.
func (b *ContextBuffer) ExtractAround(fromEnd, before, after int) string {
	if b.size == 0 {
		return ""
	}
	if fromEnd < 0 || fromEnd >= b.size {
		fromEnd = 0
	}
	before = max(before, 0)
	after = max(after, 0)

	idx := b.size - 1 - fromEnd
	start := max(0, idx-before)
	end := min(b.size, idx+after+1)

	parts := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		parts = append(parts, b.at(i))
	}
	return strings.Join(parts, "\n")
}
