package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/esemi/travian-manager/internal/classify"
	"github.com/esemi/travian-manager/internal/farmlist"
	"github.com/esemi/travian-manager/internal/models"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listsSlots bool

var listsCmd = &cobra.Command{
	Use:   "lists [PATTERN...]",
	Short: "Show farm lists and how each slot would be raided now",
	Long: `List the farm lists matching the given glob patterns (the configured
farm lists when none are given) with the tier every slot falls in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		patterns := args
		if len(patterns) == 0 {
			patterns = cfg.Farm.Lists
		}

		ctx := context.Background()
		client, err := openSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		lists, err := farmlist.NewManager(client).Matching(ctx, patterns)
		if err != nil {
			return err
		}
		if len(lists) == 0 {
			fmt.Println("No matching farm lists")
			return nil
		}

		classifier := classify.Classifier{MinReraidInterval: cfg.MinReraidInterval(), Location: cfg.Location()}
		now := time.Now().Unix()

		summary := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"List", "Used", "Green full", "Green", "Orange full", "Orange", "Excluded", "Resting"}),
		)
		var views []*models.FarmList
		for _, header := range lists {
			view, err := client.ListView(ctx, header.ID)
			if err != nil {
				redColor.Fprintf(os.Stderr, "%s: %v\n", farmlist.FullName(header), err)
				continue
			}
			views = append(views, view)
			tiers := classifier.Partition(view.Slots, now)
			summary.Append([]string{
				farmlist.FullName(*view),
				fmt.Sprintf("%d/%d", view.Used, view.Total),
				fmt.Sprint(len(tiers[models.TierGreenFull])),
				fmt.Sprint(len(tiers[models.TierGreenOther])),
				fmt.Sprint(len(tiers[models.TierOrangeFull])),
				fmt.Sprint(len(tiers[models.TierOrangeOther])),
				fmt.Sprint(len(tiers[models.TierExcluded])),
				fmt.Sprint(len(tiers[models.TierNone])),
			})
		}
		if err := summary.Render(); err != nil {
			return err
		}

		if !listsSlots {
			return nil
		}
		for _, view := range views {
			fmt.Println()
			titleColor.Println(farmlist.FullName(*view))
			if err := printSlots(view.Slots, classifier, now); err != nil {
				return err
			}
		}
		return nil
	},
}

func printSlots(slots []models.Slot, classifier classify.Classifier, now int64) error {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Village", "Coords", "Last raid", "Outcome", "Tier"}),
	)
	for _, s := range slots {
		outcome, last := "-", "-"
		if r := s.LastReport; r != nil {
			outcome = r.Outcome.String()
			if r.AttackTime != nil {
				last = r.AttackTime.String()
				if !r.IsToday {
					last += " (earlier)"
				}
			}
		}
		table.Append([]string{
			s.VillageName,
			fmt.Sprintf("(%d|%d)", s.X, s.Y),
			last,
			outcome,
			tierLabel(classifier.Classify(s.LastReport, now)),
		})
	}
	return table.Render()
}

func tierLabel(t models.Tier) string {
	switch t {
	case models.TierGreenFull, models.TierGreenOther:
		return greenColor.Sprint(string(t))
	case models.TierOrangeFull, models.TierOrangeOther:
		return orangeColor.Sprint(string(t))
	case models.TierExcluded:
		return excludeColor.Sprint(string(t))
	default:
		return redColor.Sprint("resting")
	}
}

func init() {
	listsCmd.Flags().BoolVar(&listsSlots, "slots", false, "print every slot")
	rootCmd.AddCommand(listsCmd)
}
