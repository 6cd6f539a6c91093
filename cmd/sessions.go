package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/studyplan/app"
	"github.com/kilianp07/studyplan/core/model"
)

var (
	missedDate  string
	missedChunk int
)

var missedCmd = &cobra.Command{
	Use:   "missed",
	Short: "Mark a day as missed and reschedule the remaining workload",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := model.ParseDate(missedDate)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		return withService(cmd.Context(), func(svc *app.Service) error {
			res, err := svc.Planning.MarkDayMissed(cmd.Context(), day, missedChunk)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		})
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <session-id>",
	Short: "Mark a planned session as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *app.Service) error {
			sess, err := svc.Planning.MarkSessionDone(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, sess)
		})
	},
}

func init() {
	missedCmd.Flags().StringVar(&missedDate, "date", "", "day to mark missed (YYYY-MM-DD)")
	missedCmd.Flags().IntVar(&missedChunk, "chunk", 60, "session length in minutes for the new plan")
	_ = missedCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(missedCmd, doneCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
