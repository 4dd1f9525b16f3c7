package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iwvelando/lever-planner/internal/config"
	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/validation"
)

// skipPlanAnnotation marks commands that load their own configuration.
const skipPlanAnnotation = "skip-plan"

var (
	configLocation   string
	logLevelOverride string
	outputFormatFlag string

	conf   *config.Configuration
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lever-planner",
	Short: "Plan workforce lever overrides for the office simulation",
	Long: "Converts cumulative recruitment, churn, progression and UTR targets into monthly rates, " +
		"applies them to a per-office lever matrix and exports the overrides payload the simulation consumes.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, skip := cmd.Annotations[skipPlanAnnotation]; skip {
			return nil
		}
		return loadPlan(configLocation, config.LoggingConfig{})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to plan configuration file")
	f.StringVar(&logLevelOverride, "log-level", "", "log level override (debug, info, warn, error)")
	f.StringVar(&outputFormatFlag, "output-format", "", "type of output override: pretty, json, yaml")
}

// loadPlan loads the plan at path and initializes the logger. Logging
// settings in the plan take precedence over fallback.
func loadPlan(path string, fallback config.LoggingConfig) error {
	c, err := config.LoadConfiguration(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", path, err)
	}
	conf = c

	logging := conf.Logging
	if logging.Level == "" && logging.Format == "" && logging.OutputFile == "" {
		logging = fallback
	}
	l, err := initializeLogger(logging, logLevelOverride)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.loadPlan"),
		)
	}
	return nil
}

// outputFormat resolves the output format (CLI override takes precedence
// over config).
func outputFormat() (string, error) {
	format := conf.Output.Format
	if outputFormatFlag != "" {
		format = outputFormatFlag
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zc zap.Config
	switch format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zc.Level = zap.NewAtomicLevelAt(zapLevel)

	// Logs go to stderr unless a file is configured; stdout carries the report.
	zc.OutputPaths = []string{"stderr"}
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zc.OutputPaths = []string{loggingConfig.OutputFile}
		zc.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zc.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
