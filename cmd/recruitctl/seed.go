package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the catalog positions that do not exist yet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := context.Background()
		a := bootstrap(ctx)
		defer a.Close()

		defs, err := seed.Load(viper.GetString("seed-file"))
		if err != nil {
			return err
		}

		created, skipped, err := a.Container.Positions.Seed(ctx, defs, actor())
		if err != nil {
			return err
		}

		a.Log.Info("seed finished", zap.Int("created", created), zap.Int("skipped", skipped))
		fmt.Fprintf(cmd.OutOrStdout(), "created %d positions, skipped %d existing\n", created, skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringP("file", "f", "", "YAML position catalog (default is the embedded catalog)")
	if err := viper.BindPFlag("seed-file", seedCmd.Flags().Lookup("file")); err != nil {
		panic(err)
	}
}
