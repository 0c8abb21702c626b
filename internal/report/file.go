// Package report stores alert reports as JSON files.
//
// 경로 규칙: <output_dir>/<YYYYMMDD>/alert_<HHMMSS>.json
// 같은 초에 여러 건이 저장되면 alert_<HHMMSS>_1.json, _2.json ... 으로 저장 (덮어쓰지 않음)
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/logsentry/agent/internal/logger"
	"github.com/logsentry/agent/internal/model"
)

// 같은 초 안에서 허용하는 최대 파일 수
const maxSameSecond = 1000

type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Save - 보고서를 새 파일로 저장하고 파일 경로 반환
func (s *FileStore) Save(ctx context.Context, contextText string, analysis *model.Analysis, ts time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dayDir := filepath.Join(s.dir, ts.Format("20060102"))
	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	rep := model.Report{
		Timestamp:     ts.Format(time.RFC3339),
		RawLogContext: contextText,
		Analysis:      analysis,
	}

	base := "alert_" + ts.Format("150405")
	for i := 0; i < maxSameSecond; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		path := filepath.Join(dayDir, name+".json")

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create report file: %w", err)
		}

		if err := writeReport(f, rep); err != nil {
			f.Close()
			return "", fmt.Errorf("write report %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close report %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("too many reports in %s for second %s", dayDir, ts.Format("150405"))
}

func writeReport(f *os.File, rep model.Report) error {
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// RecentReports - 최근 보고서부터 최대 limit건 요약 반환
// 읽을 수 없는 파일은 건너뛴다
func (s *FileStore) RecentReports(ctx context.Context, limit int) ([]model.ReportEntry, error) {
	if limit <= 0 {
		return []model.ReportEntry{}, nil
	}

	days, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.ReportEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report dir: %w", err)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Name() > days[j].Name() })

	out := make([]model.ReportEntry, 0, limit)
	for _, day := range days {
		if !day.IsDir() {
			continue
		}
		dayDir := filepath.Join(s.dir, day.Name())
		files, err := os.ReadDir(dayDir)
		if err != nil {
			logger.Named("report").Warn().Err(err).Str("path", dayDir).Msg("failed to list reports")
			continue
		}

		names := make([]string, 0, len(files))
		for _, f := range files {
			if !f.IsDir() && strings.HasPrefix(f.Name(), "alert_") && strings.HasSuffix(f.Name(), ".json") {
				names = append(names, f.Name())
			}
		}
		sort.Slice(names, func(i, j int) bool { return reportOrderKey(names[i]) > reportOrderKey(names[j]) })

		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			path := filepath.Join(dayDir, name)
			entry, err := readEntry(path)
			if err != nil {
				logger.Named("report").Warn().Err(err).Str("path", path).Msg("skipping unreadable report")
				continue
			}
			out = append(out, entry)
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// reportOrderKey - alert_150405_12.json → "150405_000012" (suffix 숫자 순 정렬)
func reportOrderKey(name string) string {
	stem := strings.TrimSuffix(strings.TrimPrefix(name, "alert_"), ".json")
	clock, suffix, _ := strings.Cut(stem, "_")
	n := 0
	for _, r := range suffix {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return fmt.Sprintf("%s_%06d", clock, n)
}

func readEntry(path string) (model.ReportEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ReportEntry{}, err
	}
	var rep model.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return model.ReportEntry{}, err
	}
	entry := model.ReportEntry{Location: path, Timestamp: rep.Timestamp}
	if rep.Analysis != nil {
		entry.Summary = rep.Analysis.Summary
		entry.Severity = rep.Analysis.Severity
	}
	return entry, nil
}
