package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the simulation request body for the plan",
	Long:  "Applies the plan's requests and writes {\"office_overrides\": ...} exactly as the simulation consumes it.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	requests, err := conf.TargetingRequests()
	if err != nil {
		return err
	}

	ctrl, _, err := newSession(cmd.Context(), conf, logger)
	if err != nil {
		return err
	}
	for _, req := range requests {
		ctrl.Apply(req)
	}

	body, err := json.MarshalIndent(map[string]any{"office_overrides": ctrl.Overrides()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode overrides: %w", err)
	}
	body = append(body, '\n')

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		_, err = cmd.OutOrStdout().Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("overrides exported",
		zap.String("op", "main.runExport"),
		zap.String("path", path),
		zap.Int("bytes", len(body)),
	)
	return nil
}
