package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/logsentry/agent/internal/client"
	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/db"
	"github.com/logsentry/agent/internal/dedup"
	"github.com/logsentry/agent/internal/handler"
	"github.com/logsentry/agent/internal/logger"
	"github.com/logsentry/agent/internal/report"
	"github.com/logsentry/agent/internal/service"
	"github.com/logsentry/agent/internal/watcher"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the configured log files until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cfg)
		},
	}
}

// runWatch - 구성 요소 조립 후 종료 신호까지 실행
//
// 처리 흐름:
//  1. 분석기(Gemini/OpenAI), 저장소(파일 + 선택적 Postgres), 알림 채널 구성
//  2. AlertService(worker pool) → MonitorService → Watcher 순으로 연결
//  3. watcher, monitor, status API를 errgroup으로 실행 (하나가 끝나면 전체 종료)
//  4. 종료 신호 후 신규 이벤트는 받지 않고, 큐에 남은 알림은 끝까지 처리
func runWatch(ctx context.Context, cfg config.Config) error {
	log := logger.Named("main")

	gen, err := newGenerator(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	if m, ok := gen.(interface{ Model() string }); ok {
		log.Info().Str("provider", cfg.LLM.Provider).Str("model", m.Model()).Msg("llm analyzer configured")
	}
	analyzer := service.NewAnalyzerService(gen, cfg.LLM)

	files := report.NewFileStore(cfg.OutputDir)
	var (
		mirrors []service.Persister
		pg      *db.Postgres
	)
	if cfg.Postgres.Enabled {
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()

		pg = &db.Postgres{Pool: pool}
		if err := pg.EnsureReportSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure alert_reports schema: %w", err)
		}
		mirrors = append(mirrors, pg)
		log.Info().Msg("mirroring reports to postgres")
	}
	persister := service.NewReportService(files, mirrors...)

	notifier := newNotifier(cfg)
	log.Info().Strs("channels", notifier.Channels()).Msg("notification channels configured")

	stats := service.NewStats()
	alerts := service.NewAlertService(analyzer, persister, notifier, stats, cfg.Pipeline)
	dd := dedup.New(cfg.DedupWindow())
	monitor := service.NewMonitorService(cfg.Targets(), service.MonitorConfig{
		Before:        cfg.ContextLines.Before,
		After:         cfg.ContextLines.After,
		BufferSize:    cfg.ContextLines.BufferSize,
		ReadFromStart: cfg.ReadFromStart,
	}, dd, alerts, stats)

	paths := make([]string, 0, len(cfg.Logs))
	for _, t := range monitor.Targets() {
		paths = append(paths, t.Path)
	}
	w, err := watcher.New(paths)
	if err != nil {
		alerts.Close()
		return err
	}

	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		gin.SetMode(gin.ReleaseMode)
		reports := handler.NewReportHandler(files)
		if pg != nil {
			// 미러가 있으면 DB 기준으로 목록 제공
			reports = handler.NewReportHandler(pg)
		}
		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler.NewRouter(handler.NewStatusHandler(stats, monitor, dd), reports),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	log.Info().Int("targets", len(paths)).Strs("dirs", w.Dirs()).Str("output_dir", cfg.OutputDir).Msg("logsentry started")
	err = runGroup(ctx, srv,
		w.Start,
		func(ctx context.Context) error { return monitor.Run(ctx, w.Events()) },
	)

	log.Info().Msg("shutting down, waiting for in-flight alerts")
	alerts.Close()

	snap := stats.Snapshot()
	log.Info().
		Int64("detected", snap.Detected).
		Int64("suppressed", snap.Suppressed).
		Int64("completed", snap.Completed).
		Msg("logsentry stopped")
	return err
}

// runGroup - tasks와 선택적 HTTP 서버를 함께 실행
// 어느 하나라도 끝나면(에러 여부 무관) 나머지를 취소하고 서버를 종료한다
func runGroup(ctx context.Context, srv *http.Server, tasks ...func(context.Context) error) error {
	log := logger.Named("main")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error {
			defer cancel()
			return task(gctx)
		})
	}

	if srv != nil {
		g.Go(func() error {
			defer cancel()
			log.Info().Str("addr", srv.Addr).Msg("status API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status API: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (service.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return client.NewOpenAIClient(cfg)
	case "gemini", "":
		return client.NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func newNotifier(cfg config.Config) *service.NotifyService {
	n := service.NewNotifyService()
	if cfg.Email.Enable {
		n.Add("email", client.NewMailClient(cfg.Email))
	}
	if cfg.Slack.Enable {
		n.Add("slack", client.NewSlackClient(cfg.Slack))
	}
	if len(cfg.Webhooks) > 0 {
		n.Add("webhook", client.NewWebhookClient(cfg.Webhooks))
	}
	return n
}
