package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var reassignCmd = &cobra.Command{
	Use:   "reassign",
	Short: "Lock a candidate onto a position they were already evaluated against",
	RunE: func(cmd *cobra.Command, _ []string) error {
		candidateID, _ := cmd.Flags().GetUint("candidate")
		positionID, _ := cmd.Flags().GetUint("position")
		reason, _ := cmd.Flags().GetString("reason")
		if strings.TrimSpace(reason) == "" {
			return fmt.Errorf("--reason must not be empty")
		}

		ctx := context.Background()
		a := bootstrap(ctx)
		defer a.Close()

		candidate, err := a.Container.Assignments.Reassign(ctx, candidateID, positionID, reason, actor())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "candidate %d (%s) locked on %s with score %d\n",
			candidate.ID, candidate.Name, candidate.AssignedPositionName, candidate.AssignedScore)
		return nil
	},
}

var reevaluateCmd = &cobra.Command{
	Use:   "reevaluate",
	Short: "Score a candidate against one position again",
	RunE: func(cmd *cobra.Command, _ []string) error {
		candidateID, _ := cmd.Flags().GetUint("candidate")
		positionID, _ := cmd.Flags().GetUint("position")

		ctx := context.Background()
		a := bootstrap(ctx)
		defer a.Close()

		match, err := a.Container.Assignments.Reevaluate(ctx, candidateID, positionID, actor())
		if err != nil {
			return err
		}

		return printJSON(cmd, match)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Recompute and print a position's statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		positionID, _ := cmd.Flags().GetUint("position")

		ctx := context.Background()
		a := bootstrap(ctx)
		defer a.Close()

		stats, err := a.Container.Queries.PositionStats(ctx, positionID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d candidates, %d qualified (%.1f%%), average %.1f\n",
			stats.PositionName, stats.Total, stats.Qualified, stats.QualificationRate(), stats.AverageScore)
		return printJSON(cmd, stats.GradeCounts)
	},
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(reassignCmd, reevaluateCmd, statsCmd)

	for _, c := range []*cobra.Command{reassignCmd, reevaluateCmd} {
		c.Flags().Uint("candidate", 0, "candidate id")
		_ = c.MarkFlagRequired("candidate")
	}
	for _, c := range []*cobra.Command{reassignCmd, reevaluateCmd, statsCmd} {
		c.Flags().Uint("position", 0, "position id")
		_ = c.MarkFlagRequired("position")
	}
	reassignCmd.Flags().String("reason", "", "why the candidate is moved")
	_ = reassignCmd.MarkFlagRequired("reason")
}
