package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/lever-planner/internal/overrides"
	"github.com/iwvelando/lever-planner/pkg/output"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the plan's lever requests and print the change summary",
	RunE:  runApply,
}

func init() {
	f := applyCmd.Flags()
	f.Bool("overrides", false, "include the full office overrides payload in the report")
	f.Bool("simulate", false, "submit the overrides to the simulation backend after applying")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	includeOverrides, _ := cmd.Flags().GetBool("overrides")
	simulate, _ := cmd.Flags().GetBool("simulate")

	requests, err := conf.TargetingRequests()
	if err != nil {
		return err
	}

	ctrl, client, err := newSession(cmd.Context(), conf, logger)
	if err != nil {
		return err
	}

	var (
		lines   []string
		changes overrides.Summary
	)
	for i, req := range requests {
		summary, applied := ctrl.Apply(req)
		if !applied {
			logger.Warn("request selected nothing",
				zap.String("op", "main.runApply"),
				zap.String("request", conf.Requests[i].DisplayName(i)),
			)
			continue
		}
		lines = append(lines, summary.Lines()...)
		changes = append(changes, summary...)
	}

	report := output.Report{Summary: lines, Changes: changes}
	if includeOverrides {
		report.Overrides = ctrl.Overrides()
	}
	if err := output.Render(cmd.OutOrStdout(), format, report); err != nil {
		return err
	}

	if !simulate {
		return nil
	}
	if client == nil {
		logger.Warn("no backend configured, skipping simulation", zap.String("op", "main.runApply"))
		return nil
	}
	result, err := client.RunSimulation(cmd.Context(), ctrl.Overrides())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(result, '\n'))
	return err
}
