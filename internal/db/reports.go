package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/logsentry/agent/internal/model"
)

// EnsureReportSchema - alert_reports 테이블 생성
func (db *Postgres) EnsureReportSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS alert_reports (
			report_id BIGSERIAL PRIMARY KEY,
			reported_at TIMESTAMPTZ NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			severity TEXT NOT NULL DEFAULT '',
			raw_log_context TEXT NOT NULL DEFAULT '',
			analysis JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS alert_reports_reported_at_idx ON alert_reports(reported_at DESC)`,
		`CREATE INDEX IF NOT EXISTS alert_reports_severity_idx ON alert_reports(severity)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// Save - 보고서 1건 저장 후 위치 식별자(postgres:alert_reports/<id>) 반환
func (db *Postgres) Save(ctx context.Context, contextText string, analysis *model.Analysis, ts time.Time) (string, error) {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}

	var summary, severity string
	if analysis != nil {
		summary = analysis.Summary
		severity = analysis.Severity
	}

	query := `
		INSERT INTO alert_reports (reported_at, summary, severity, raw_log_context, analysis)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING report_id
	`
	var id int64
	if err := db.Pool.QueryRow(ctx, query, ts, summary, severity, contextText, analysisJSON).Scan(&id); err != nil {
		return "", fmt.Errorf("insert alert report: %w", err)
	}
	return ReportLocation(id), nil
}

// RecentReports - 최근 보고서 요약 조회
func (db *Postgres) RecentReports(ctx context.Context, limit int) ([]model.ReportEntry, error) {
	query := `
		SELECT report_id, reported_at, summary, severity
		FROM alert_reports
		ORDER BY reported_at DESC, report_id DESC
		LIMIT $1`

	rows, err := db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReportEntry{}
	for rows.Next() {
		var (
			id         int64
			reportedAt time.Time
			e          model.ReportEntry
		)
		if err := rows.Scan(&id, &reportedAt, &e.Summary, &e.Severity); err != nil {
			return nil, err
		}
		e.Location = ReportLocation(id)
		e.Timestamp = reportedAt.Format(time.RFC3339)
		out = append(out, e)
	}
	return out, rows.Err()
}

func ReportLocation(id int64) string {
	return fmt.Sprintf("postgres:alert_reports/%d", id)
}
