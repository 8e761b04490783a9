package daemon

import (
	"slices"

	"github.com/esemi/travian-manager/internal/config"
	"github.com/esemi/travian-manager/internal/discovery"
	"github.com/esemi/travian-manager/internal/filter"
)

// DiscoveryConfigs turns the configured discovery passes into typed
// configs, merging the global ignore lists into every rule.
func DiscoveryConfigs(cfg *config.Config) []discovery.Config {
	configs := make([]discovery.Config, 0, len(cfg.Farm.Discovery))
	for _, dc := range cfg.Farm.Discovery {
		rule := filter.Rule{
			IgnorePlayers:   slices.Clone(cfg.Filter.IgnorePlayers),
			IgnoreAlliances: slices.Clone(cfg.Filter.IgnoreAlliances),
			IgnoreNPC:       dc.Rule.IgnoreNPC,
			OnlyNPC:         dc.Rule.OnlyNPC,
			Where:           dc.Rule.Where,
		}
		if dc.Rule.Inh != nil {
			rule.MinPopulation = dc.Rule.Inh.Min
			rule.MaxPopulation = dc.Rule.Inh.Max
		}
		zoom := dc.Zoom
		if zoom <= 0 {
			zoom = 1
		}
		configs = append(configs, discovery.Config{
			List:       dc.List,
			CenterX:    dc.CenterX,
			CenterY:    dc.CenterY,
			Offset:     dc.Offset,
			Zoom:       zoom,
			TroopID:    dc.TroopID,
			TroopCount: dc.TroopCount,
			Rule:       rule,
		})
	}
	return configs
}
