// Package template provides webhook body template rendering.
//
// 지원하는 변수 형식:
//
//	{{alert.summary}}, {{alert.severity}}, {{alert.timestamp}},
//	{{alert.diagnosis}}, {{alert.immediate}}, {{alert.long_term}},
//	{{alert.context}}, {{alert.report}}
package template

import (
	"encoding/json"
	"strings"

	"github.com/logsentry/agent/internal/model"
)

// AlertData - 템플릿 렌더링에 사용할 알림 데이터
type AlertData struct {
	Summary   string   `json:"summary"`
	Severity  string   `json:"severity"`
	Timestamp string   `json:"timestamp"`
	Diagnosis []string `json:"diagnosis_path"`
	Immediate string   `json:"immediate"`
	LongTerm  string   `json:"long_term"`
	Context   string   `json:"context"`
	Report    string   `json:"report"`
}

// AlertDataFromAnalysis - 분석 결과 + 로그 컨텍스트 + 보고서 위치로 AlertData 생성
func AlertDataFromAnalysis(analysis *model.Analysis, contextText, location string) AlertData {
	data := AlertData{Context: contextText, Report: location}
	if analysis == nil {
		return data
	}
	data.Summary = analysis.Summary
	data.Severity = analysis.Severity
	data.Timestamp = analysis.Timestamp
	data.Diagnosis = analysis.DiagnosisPath
	data.Immediate = analysis.Solution.Immediate
	data.LongTerm = analysis.Solution.LongTerm
	return data
}

// RenderBody - body 템플릿의 변수를 실제 값으로 치환
//
// escape가 nil이 아니면 모든 값에 적용한다 (JSON body 안에 넣을 때 JSONEscape 사용).
func RenderBody(body string, alert AlertData, escape func(string) string) string {
	if escape == nil {
		escape = func(s string) string { return s }
	}

	pairs := []string{
		"{{alert.summary}}", escape(alert.Summary),
		"{{alert.severity}}", escape(alert.Severity),
		"{{alert.timestamp}}", escape(alert.Timestamp),
		"{{alert.diagnosis}}", escape(strings.Join(alert.Diagnosis, "; ")),
		"{{alert.immediate}}", escape(alert.Immediate),
		"{{alert.long_term}}", escape(alert.LongTerm),
		"{{alert.context}}", escape(alert.Context),
		"{{alert.report}}", escape(alert.Report),
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

// JSONEscape - JSON 문자열 리터럴 안에 넣을 수 있도록 이스케이프 (양쪽 따옴표 제외)
func JSONEscape(s string) string {
	b, err := json.Marshal(s)
	if err != nil || len(b) < 2 {
		return ""
	}
	return string(b[1 : len(b)-1])
}
