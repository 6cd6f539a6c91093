package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/planner"
	"github.com/kilianp07/studyplan/core/planning"
	"github.com/kilianp07/studyplan/pkg/export"
)

var (
	planFile    string
	planPolicy  string
	planFormat  string
	planOutput  string
	planMaxDays int
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run the planner on a workload file without touching the store",
	Long: `Reads a YAML or JSON request with start_date, daily_budget_minutes,
chunk_minutes, an optional policy and the subjects, then prints the plan.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "request file (yaml or json)")
	planCmd.Flags().StringVar(&planPolicy, "policy", "", "policy file overriding the request policy")
	planCmd.Flags().StringVar(&planFormat, "format", "json", "output format: json, csv or xlsx")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "output file (default stdout)")
	planCmd.Flags().IntVar(&planMaxDays, "max-horizon-days", planning.DefaultMaxHorizonDays, "reject requests whose last exam is further away")
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(planFormat)
	if err != nil {
		return err
	}
	req, err := planner.LoadRequest(planFile)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	policy := req.Policy
	if planPolicy != "" {
		if policy, err = planner.LoadConfig(planPolicy); err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
	}
	p, err := planner.New(policy)
	if err != nil {
		return err
	}
	start, workloads, err := req.Workloads()
	if err != nil {
		return err
	}
	if days := planner.HorizonDays(workloads, start); planMaxDays > 0 && days > planMaxDays {
		return fmt.Errorf("%w: %d days from %s exceeds %d", planning.ErrHorizonTooLong,
			days, start.Format(model.DateLayout), planMaxDays)
	}
	plan := p.Generate(workloads, start, req.DailyBudgetMinutes, req.ChunkMinutes)

	var out io.Writer = cmd.OutOrStdout()
	if planOutput != "" {
		f, err := os.Create(planOutput)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	if err := export.Write(out, format, export.FromAllocations(plan, nil)); err != nil {
		return err
	}

	total := 0
	for _, a := range plan {
		total += a.Minutes
	}
	remaining := planner.RemainingMinutes(workloads)
	days := planner.MinutesByDay(plan)
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d sessions, %d minutes over %d days from %s, %d minutes unscheduled\n",
		len(plan), total, len(days), start.Format(model.DateLayout), remaining-total)
	return err
}
