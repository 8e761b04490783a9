package cmd

import (
	"github.com/esemi/travian-manager/internal/storage"
	"github.com/esemi/travian-manager/internal/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow bot cycles in a live dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		cycles, err := storage.NewCycleStore(cfg.DataDir)
		if err != nil {
			return err
		}
		return tui.Run(cycles)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
