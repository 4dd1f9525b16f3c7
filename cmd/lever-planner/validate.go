package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iwvelando/lever-planner/internal/scope"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the plan and show what each request would select",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	warnings := conf.ValidateConfiguration()
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}

	requests, err := conf.TargetingRequests()
	if err != nil {
		return err
	}

	ctrl, _, err := newSession(cmd.Context(), conf, logger)
	if err != nil {
		return err
	}
	known := ctrl.Offices()

	for i, req := range requests {
		res := scope.Resolve(req, known)
		name := conf.Requests[i].DisplayName(i)
		if res.Empty() {
			fmt.Fprintf(out, "%s: selects nothing\n", name)
			continue
		}
		fmt.Fprintf(out, "%s: %d %s, %d %s\n", name,
			len(res.Offices), pluralize("office", len(res.Offices)),
			len(res.Months), pluralize("month", len(res.Months)))
	}

	fmt.Fprintf(out, "%d %s, %d %s, %d %s\n",
		len(known), pluralize("office", len(known)),
		len(requests), pluralize("request", len(requests)),
		len(warnings), pluralize("warning", len(warnings)))
	return nil
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
