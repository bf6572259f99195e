// cmd/main.go
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go_vocab_builder/internal/config"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configDir string
	cmd := &cobra.Command{
		Use:           "vocab",
		Short:         "Vocabulary builder web application",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Configを読み込み
			if err := config.LoadConfig(configDir); err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			slog.SetDefault(newLogger(config.Cfg.Log.Level))
			return nil
		},
		// サブコマンドなしは serve と同じ
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "configs", "directory containing config.yaml")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newRolesCommand())
	cmd.AddCommand(newUsersCommand())
	return cmd
}

// newLogger は APP_ENV=dev なら tint、それ以外は JSON のハンドラでロガーを作ります
func newLogger(level string) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", level))
	}

	var handler slog.Handler
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
	}
	return slog.New(handler)
}
