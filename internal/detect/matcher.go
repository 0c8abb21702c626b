package detect

import (
	"strings"

	"golang.org/x/text/cases"
)

// KeywordMatcher - 대소문자 구분 없는 키워드 포함 여부 검사
// strings.ToLower 대신 유니코드 case folding 사용
type KeywordMatcher struct {
	keywords []string // 원본
	folded   []string
	caser    cases.Caser
}

func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	m := &KeywordMatcher{caser: cases.Fold()}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		m.keywords = append(m.keywords, kw)
		m.folded = append(m.folded, m.caser.String(kw))
	}
	return m
}

// MatchedKeyword - 처음으로 매칭된 키워드(설정에 적힌 원본 표기) 반환
func (m *KeywordMatcher) MatchedKeyword(line string) (string, bool) {
	if len(m.folded) == 0 || line == "" {
		return "", false
	}
	fl := m.caser.String(line)
	for i, kw := range m.folded {
		if strings.Contains(fl, kw) {
			return m.keywords[i], true
		}
	}
	return "", false
}
