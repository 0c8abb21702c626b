package service

import (
	"context"
	"time"

	"github.com/logsentry/agent/internal/logger"
	"github.com/logsentry/agent/internal/model"
)

// ReportService - 기본 저장소(JSON 파일)에 저장하고 보조 저장소(Postgres 등)에 복제
//
// 반환 위치는 기본 저장소의 위치.
// 기본 저장소가 실패하면 처음으로 성공한 보조 저장소의 위치를 반환한다.
type ReportService struct {
	primary Persister
	mirrors []Persister
}

func NewReportService(primary Persister, mirrors ...Persister) *ReportService {
	s := &ReportService{primary: primary}
	for _, m := range mirrors {
		if m != nil {
			s.mirrors = append(s.mirrors, m)
		}
	}
	return s
}

func (s *ReportService) Save(ctx context.Context, contextText string, analysis *model.Analysis, ts time.Time) (string, error) {
	log := logger.Named("report")

	location, primaryErr := s.primary.Save(ctx, contextText, analysis, ts)
	if primaryErr != nil {
		log.Error().Err(primaryErr).Msg("failed to save report")
	}

	for _, m := range s.mirrors {
		loc, err := m.Save(ctx, contextText, analysis, ts)
		if err != nil {
			log.Warn().Err(err).Msg("failed to mirror report")
			continue
		}
		if location == "" {
			location = loc
		}
	}

	if location == "" {
		return "", primaryErr
	}
	return location, nil
}
