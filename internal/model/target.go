package model

// WatchTarget - 감시 대상 로그 파일 1개와 그 키워드 집합
// 설정 로드 후 변경되지 않음
type WatchTarget struct {
	Path     string
	Keywords []string
}

// NewWatchTarget - 키워드 슬라이스를 복사해서 WatchTarget 생성
func NewWatchTarget(path string, keywords []string) WatchTarget {
	kw := make([]string, len(keywords))
	copy(kw, keywords)
	return WatchTarget{Path: path, Keywords: kw}
}
