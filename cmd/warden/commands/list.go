package commands

import (
	"context"
	"sort"
	"time"

	"github.com/dyluth/warden/internal/config"
	"github.com/dyluth/warden/internal/printer"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered whitelist entries",
	Long: `Reads the registry store and prints every requester → target name
mapping. Read-only; does not require Twitch credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}

		store, err := newStore(cfg)
		if err != nil {
			return err
		}
		if closer, ok := store.(interface{ Close() error }); ok {
			defer closer.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		entries, err := store.Load(ctx)
		if err != nil {
			return printer.Error(
				"Failed to read registry",
				err.Error(),
				[]string{"Check the storage settings in " + configPath},
			)
		}

		if len(entries) == 0 {
			printer.Info("No registrations found.\n")
			return nil
		}

		requesters := make([]string, 0, len(entries))
		for requester := range entries {
			requesters = append(requesters, requester)
		}
		sort.Strings(requesters)

		printer.Info("%-28s %s\n", "REQUESTER", "TARGET NAME")
		for _, requester := range requesters {
			printer.Info("%-28s %s\n", requester, entries[requester])
		}
		printer.Info("\n")
		printer.Success("%d registration(s)\n", len(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
