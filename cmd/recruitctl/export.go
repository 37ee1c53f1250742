package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a position's ranked candidates to an .xlsx file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		positionID, _ := cmd.Flags().GetUint("position")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = fmt.Sprintf("position_%d.xlsx", positionID)
		}

		ctx := context.Background()
		a := bootstrap(ctx)
		defer a.Close()

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}

		if err := a.Container.Reports.ExportPosition(ctx, positionID, f); err != nil {
			f.Close()
			_ = os.Remove(output)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported position %d to %s\n", positionID, output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().Uint("position", 0, "position id")
	exportCmd.Flags().StringP("output", "o", "", "output file (default position_<id>.xlsx)")
	_ = exportCmd.MarkFlagRequired("position")
}
