package main

import (
	"context"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"alfredoptarigan/talent-allocator/internal/app"
	"alfredoptarigan/talent-allocator/internal/config"
)

const (
	cliName   = "recruitctl"
	envPrefix = "RECRUITCTL"
)

var rootCmd = &cobra.Command{
	Use:           cliName,
	Short:         "recruitctl runs talent allocator maintenance tasks against the configured database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("actor", "", "actor recorded in the audit log (default system)")

	for _, name := range []string{"debug", "json", "actor"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			log.Fatalf("binding %s flag: %v", name, err)
		}
	}
}

// bootstrap builds the service graph with the CLI's logging flags applied.
func bootstrap(ctx context.Context) *app.App {
	a, err := app.Bootstrap(ctx, func(cfg *config.Config) {
		cfg.Server.LogDebug = cfg.Server.LogDebug || viper.GetBool("debug")
		cfg.Server.LogJSON = cfg.Server.LogJSON || viper.GetBool("json")
		// The CLI never seeds implicitly.
		cfg.Seed.OnEmpty = false
	})
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	return a
}

func actor() string {
	return viper.GetString("actor")
}
