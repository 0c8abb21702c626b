package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatsResponse - 파이프라인 단계별 누적 카운트
type StatsResponse struct {
	Status           string `json:"status"`
	LinesRead        int64  `json:"lines_read"`
	Detected         int64  `json:"detected"`
	Suppressed       int64  `json:"suppressed"`
	Dispatched       int64  `json:"dispatched"`
	Dropped          int64  `json:"dropped"`
	AnalyzerFailures int64  `json:"analyzer_failures"`
	PersistFailures  int64  `json:"persist_failures"`
	NotifyFailures   int64  `json:"notify_failures"`
	Completed        int64  `json:"completed"`
	DedupEntries     int    `json:"dedup_entries"`
}

type TargetResponse struct {
	Path     string   `json:"path"`
	Keywords []string `json:"keywords"`
}

type TargetListResponse struct {
	Status string           `json:"status"`
	Data   []TargetResponse `json:"data"`
}

type ReportListResponse struct {
	Status string        `json:"status"`
	Data   []ReportEntry `json:"data"`
}
