// Package cli implements the gridbox command-line interface using Cobra.
// It provides commands for running ephemeral browser sessions and
// inspecting the containers they leave behind.
package cli

import (
	"path/filepath"

	"github.com/gridbox/gridbox/internal/config"
	"github.com/gridbox/gridbox/internal/image"
	"github.com/gridbox/gridbox/internal/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	jsonOut bool
)

// globalCfg is loaded once in the persistent pre-run.
var globalCfg *config.GlobalConfig

var rootCmd = &cobra.Command{
	Use:   "gridbox",
	Short: "Gridbox - ephemeral Selenium browser containers",
	Long: `Gridbox runs throwaway Selenium browser containers and hands you a
ready WebDriver endpoint. A session is one browser container, an
optional video recorder riding the same private network, and nothing
left behind when it stops.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		globalCfg, _ = config.LoadGlobal()

		// Apply config-pinned browser images.
		for browser, img := range globalCfg.Images {
			image.Override(browser, img)
		}

		debugDir := filepath.Join(config.GlobalConfigDir(), "debug")
		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			DebugDir:      debugDir,
			RetentionDays: globalCfg.Debug.RetentionDays,
		}); err != nil {
			// Log init failure is non-fatal - fallback to default logger
			cmd.PrintErrf("Warning: failed to initialize debug logging: %v\n", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output logs in JSON format")
}
