package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/esemi/travian-manager/internal/config"
	"github.com/esemi/travian-manager/internal/daemon"
	"github.com/esemi/travian-manager/internal/discovery"
	"github.com/esemi/travian-manager/internal/farmlist"
	"github.com/esemi/travian-manager/internal/filter"
	"github.com/esemi/travian-manager/internal/models"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	scanZoom   int
	scanOffset int
	scanList   string
)

var scanCmd = &cobra.Command{
	Use:   "scan X Y",
	Short: "Preview the targets a discovery pass would add",
	Long: `Scan the map around X|Y and print the targets that pass the filter
and are not yet in any farm list. With --list the rule of that discovery
entry is used, otherwise only the global ignore lists apply.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid x %q: %w", args[0], err)
		}
		y, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid y %q: %w", args[1], err)
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		dc, err := scanConfig(cfg, x, y)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := openSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		manager := farmlist.NewManager(client)
		assigned, err := manager.ExistingMasks(ctx)
		if err != nil {
			return err
		}

		targets, err := discovery.New(client, manager, nil).Preview(ctx, dc, assigned)
		if err != nil {
			return err
		}

		if len(targets) == 0 {
			fmt.Println("No new targets")
			return nil
		}
		titleColor.Printf("%d new targets around (%d|%d)\n", len(targets), x, y)
		return printTargets(targets)
	},
}

func scanConfig(cfg *config.Config, x, y int) (discovery.Config, error) {
	dc := discovery.Config{
		CenterX: x,
		CenterY: y,
		Offset:  scanOffset,
		Zoom:    scanZoom,
		Rule: filter.Rule{
			IgnorePlayers:   cfg.Filter.IgnorePlayers,
			IgnoreAlliances: cfg.Filter.IgnoreAlliances,
		},
	}
	if scanList == "" {
		return dc, nil
	}
	for _, c := range daemon.DiscoveryConfigs(cfg) {
		if c.List == scanList {
			dc.List = c.List
			dc.Rule = c.Rule
			return dc, nil
		}
	}
	return dc, fmt.Errorf("no discovery entry for list %q", scanList)
}

func printTargets(targets []models.Target) error {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Village", "Coords", "Player", "Alliance", "Population"}),
	)
	for _, t := range targets {
		player := t.Name
		if t.IsNPC() {
			player = excludeColor.Sprint(player + " (npc)")
		}
		table.Append([]string{
			t.VillageName,
			fmt.Sprintf("(%d|%d)", t.X, t.Y),
			player,
			t.Ally,
			strconv.Itoa(t.Population),
		})
	}
	return table.Render()
}

func init() {
	scanCmd.Flags().IntVar(&scanZoom, "zoom", 1, "map zoom level")
	scanCmd.Flags().IntVar(&scanOffset, "offset", 0, "also scan the eight neighbours at this distance")
	scanCmd.Flags().StringVar(&scanList, "list", "", "use the filter of this discovery list (\"<village> - <list>\")")
	rootCmd.AddCommand(scanCmd)
}
