package commands

import (
	"github.com/dyluth/warden/internal/config"
	"github.com/dyluth/warden/internal/printer"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the warden configuration",
	Long: `Loads the configuration file, applies environment overrides, and runs
the same validation the daemon performs at startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return printer.Error(
				"Configuration invalid",
				err.Error(),
				[]string{
					"Fix " + configPath,
					"Ensure TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET are exported",
				},
			)
		}

		printer.Success("Configuration valid\n")
		printer.Info("  channel:  %s\n", cfg.Channel)
		printer.Info("  reward:   %s\n", cfg.RewardID)
		printer.Info("  storage:  %s\n", cfg.Storage.Backend)
		printer.Info("  console:  %s\n", cfg.Console.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
