package cmd

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/esemi/travian-manager/internal/daemon"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		pid, err := daemon.NewPIDFile(dataPath(cfg, "bot.pid")).Signal(syscall.SIGTERM)
		if errors.Is(err, daemon.ErrNotRunning) {
			fmt.Println("Bot not running")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stop bot: %w", err)
		}
		fmt.Printf("Stop signal sent to PID %d\n", pid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
