package model

// 분석 실패 시 대체 레코드에 들어가는 고정 값
const (
	FallbackSummary   = "analysis failed"
	FallbackSeverity  = "unknown"
	FallbackDiagnosis = "analyzer output could not be parsed, see raw_llm_output"
	FallbackImmediate = "manual investigation required"
	FallbackLongTerm  = "check analyzer availability and output format"
)

// Analysis - 분석기(LLM)가 만든 분석 결과
// timestamp는 파이프라인이 직접 주입
type Analysis struct {
	Summary       string   `json:"summary"`
	Severity      string   `json:"severity"`
	DiagnosisPath []string `json:"diagnosis_path"`
	Solution      Solution `json:"solution"`
	Timestamp     string   `json:"timestamp,omitempty"`

	// RawOutput: 분석 실패 시 사람이 확인할 수 있도록 원본 출력/에러 보관
	RawOutput string `json:"raw_llm_output,omitempty"`
}

type Solution struct {
	Immediate string `json:"immediate"`
	LongTerm  string `json:"long_term"`
}

// FallbackAnalysis - 분석 실패 시 사용하는 대체 레코드
func FallbackAnalysis(raw string) *Analysis {
	return &Analysis{
		Summary:       FallbackSummary,
		Severity:      FallbackSeverity,
		DiagnosisPath: []string{FallbackDiagnosis},
		Solution: Solution{
			Immediate: FallbackImmediate,
			LongTerm:  FallbackLongTerm,
		},
		RawOutput: raw,
	}
}

// IsFallback - 대체 레코드 여부
func (a *Analysis) IsFallback() bool {
	return a != nil && a.Summary == FallbackSummary && a.Severity == FallbackSeverity
}
