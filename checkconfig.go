package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/logsentry/agent/internal/config"
	"github.com/spf13/cobra"
)

func newCheckConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the config file and print the watch targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return writeConfigSummary(cmd.OutOrStdout(), cfg)
		},
	}
}

// writeConfigSummary - 감시 대상 표와 파이프라인 설정 요약 출력
func writeConfigSummary(w io.Writer, cfg config.Config) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Path", "Keywords", "Status"})
	for _, lc := range cfg.Logs {
		tw.AppendRow(table.Row{lc.Path, strings.Join(lc.Keywords, ", "), fileStatus(lc.Path)})
	}
	tw.Render()

	channels := []string{}
	if cfg.Email.Enable {
		channels = append(channels, "email")
	}
	if cfg.Slack.Enable {
		channels = append(channels, "slack")
	}
	if len(cfg.Webhooks) > 0 {
		channels = append(channels, fmt.Sprintf("webhook(%d)", len(cfg.Webhooks)))
	}
	if len(channels) == 0 {
		channels = append(channels, "none")
	}

	lines := []string{
		fmt.Sprintf("context lines: before=%d after=%d buffer=%d", cfg.ContextLines.Before, cfg.ContextLines.After, cfg.ContextLines.BufferSize),
		fmt.Sprintf("dedup window: %s", cfg.DedupWindow()),
		fmt.Sprintf("analyzer: %s/%s (timeout %s, %d attempts)", cfg.LLM.Provider, cfg.LLM.ModelName, cfg.LLM.TimeoutDuration(), cfg.LLM.MaxRetries),
		fmt.Sprintf("reports: %s (postgres mirror: %t)", cfg.OutputDir, cfg.Postgres.Enabled),
		fmt.Sprintf("notifications: %s", strings.Join(channels, ", ")),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func fileStatus(path string) string {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return "is a directory"
	case err == nil:
		return "ok"
	case os.IsNotExist(err):
		return "missing (will be picked up when created)"
	default:
		return err.Error()
	}
}
