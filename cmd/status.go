package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/esemi/travian-manager/internal/daemon"
	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/storage"
	"github.com/spf13/cobra"
)

var flagJSON bool

type statusOutput struct {
	Running   bool                `json:"running"`
	PID       int                 `json:"pid,omitempty"`
	LastCycle *models.Cycle       `json:"last_cycle,omitempty"`
	SentToday map[models.Tier]int `json:"sent_24h,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bot status and the last cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		state, pid, err := daemon.Status(daemon.NewPIDFile(dataPath(cfg, "bot.pid")))
		if err != nil {
			return err
		}

		status := statusOutput{Running: state == daemon.StateRunning, PID: pid}

		cycles, err := storage.NewCycleStore(cfg.DataDir)
		if err != nil {
			return err
		}
		if last, err := cycles.Last(); err == nil {
			status.LastCycle = last
		}

		if journal, err := storage.OpenJournal(dataPath(cfg, "raids.db")); err == nil {
			status.SentToday, _ = journal.CountByTier(context.Background(), time.Now().Add(-24*time.Hour))
			journal.Close()
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}
		printStatus(status)
		return nil
	},
}

func printStatus(s statusOutput) {
	fmt.Println(headerStyle.Render("Travian bot"))
	if s.Running {
		fmt.Printf("%s %s\n", labelStyle.Render("Bot:"), successStyle.Render(fmt.Sprintf("running (PID %d)", s.PID)))
	} else {
		fmt.Printf("%s %s\n", labelStyle.Render("Bot:"), mutedStyle.Render("not running"))
	}

	c := s.LastCycle
	if c == nil {
		fmt.Println(mutedStyle.Render("No cycles recorded yet"))
		return
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Last cycle #%d", c.Number)))
	fmt.Printf("%s %s\n", labelStyle.Render("Started:"), valueStyle.Render(c.StartedAt.Local().Format("2006-01-02 15:04:05")))
	if !c.EndedAt.IsZero() {
		fmt.Printf("%s %s\n", labelStyle.Render("Took:   "), valueStyle.Render(c.EndedAt.Sub(c.StartedAt).Round(time.Second).String()))
	}
	fmt.Printf("%s %s\n", labelStyle.Render("Sent:   "), valueStyle.Render(formatTiers(c.Sent)))
	fmt.Printf("%s %s\n", labelStyle.Render("Added:  "), valueStyle.Render(fmt.Sprintf("%d", c.Added)))
	if failed := c.Failed(); len(failed) > 0 {
		fmt.Printf("%s %s\n", labelStyle.Render("Failed: "), errorStyle.Render(strings.Join(failed, ", ")))
	}

	if len(s.SentToday) > 0 {
		fmt.Println()
		fmt.Printf("%s %s\n", labelStyle.Render("Last 24h:"), warningStyle.Render(formatTiers(s.SentToday)))
	}
}

var tierOrder = []models.Tier{
	models.TierGreenFull,
	models.TierGreenOther,
	models.TierOrangeFull,
	models.TierOrangeOther,
}

func formatTiers(sent map[models.Tier]int) string {
	var parts []string
	for _, tier := range tierOrder {
		if n := sent[tier]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", tier, n))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

func init() {
	statusCmd.Flags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}
