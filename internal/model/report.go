package model

// Report - 알림 1건당 저장되는 보고서
type Report struct {
	Timestamp     string    `json:"timestamp"`
	RawLogContext string    `json:"raw_log_context"`
	Analysis      *Analysis `json:"analysis"`
}

// ReportEntry - 보고서 목록 조회용 요약
type ReportEntry struct {
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
	Summary   string `json:"summary"`
	Severity  string `json:"severity"`
}
