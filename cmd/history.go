package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/esemi/travian-manager/internal/storage"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	historyList  string
	historyMask  string
	historySince time.Duration
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently sent raids",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		journal, err := storage.OpenJournal(dataPath(cfg, "raids.db"))
		if err != nil {
			return err
		}
		defer journal.Close()

		filter := storage.JournalFilter{
			List:  historyList,
			Mask:  historyMask,
			Limit: historyLimit,
		}
		if historySince > 0 {
			filter.Since = time.Now().Add(-historySince)
		}

		entries, err := journal.History(context.Background(), filter)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No raids recorded")
			return nil
		}

		table := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"Sent", "List", "Target", "Coords", "Tier", "Escort"}),
		)
		for _, e := range entries {
			escort := ""
			if e.Escort {
				escort = "yes"
			}
			table.Append([]string{
				e.SentAt.Local().Format("01-02 15:04:05"),
				e.List,
				e.Mask,
				fmt.Sprintf("(%d|%d)", e.X, e.Y),
				tierLabel(e.Tier),
				escort,
			})
		}
		return table.Render()
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyList, "list", "", "only raids from this farm list")
	historyCmd.Flags().StringVar(&historyMask, "target", "", "only raids on this target mask")
	historyCmd.Flags().DurationVar(&historySince, "since", 24*time.Hour, "how far back to look (0 for everything)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum rows to print")
	rootCmd.AddCommand(historyCmd)
}
