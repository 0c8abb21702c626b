// Package main provides the logsentry CLI: tail log files, detect error lines,
// and hand deduplicated alerts to the analysis and notification pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/logsentry/agent/internal/config"
	"github.com/logsentry/agent/internal/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "logsentry",
	Short:         "Watch log files for errors and send AI-analysed alerts",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")

	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newCheckConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logsentry: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig - 설정 로드 후 로거 초기화
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
