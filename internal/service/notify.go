package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/logsentry/agent/internal/logger"
	"github.com/logsentry/agent/internal/model"
)

type namedNotifier struct {
	name     string
	notifier Notifier
}

// NotifyService - 설정된 알림 채널(메일, Slack, webhook) 전체에 전송
// 한 채널이 실패해도 나머지 채널은 계속 전송
type NotifyService struct {
	channels []namedNotifier
}

func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

// Add - 알림 채널 등록 (시작 시점에만 호출)
func (s *NotifyService) Add(name string, n Notifier) {
	if n == nil {
		return
	}
	s.channels = append(s.channels, namedNotifier{name: name, notifier: n})
}

// Channels - 등록된 채널 이름 목록
func (s *NotifyService) Channels() []string {
	names := make([]string, 0, len(s.channels))
	for _, ch := range s.channels {
		names = append(names, ch.name)
	}
	return names
}

func (s *NotifyService) Notify(ctx context.Context, analysis *model.Analysis, contextText, location string) error {
	log := logger.Named("notify")

	var errs []error
	for _, ch := range s.channels {
		if err := ch.notifier.Notify(ctx, analysis, contextText, location); err != nil {
			log.Error().Err(err).Str("channel", ch.name).Msg("notification failed")
			errs = append(errs, fmt.Errorf("%s: %w", ch.name, err))
			continue
		}
		log.Info().Str("channel", ch.name).Msg("notification sent")
	}
	return errors.Join(errs...)
}
