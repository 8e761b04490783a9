package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/esemi/travian-manager/internal/classify"
	"github.com/esemi/travian-manager/internal/config"
	"github.com/esemi/travian-manager/internal/discovery"
	"github.com/esemi/travian-manager/internal/farmlist"
	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/oasis"
	"github.com/esemi/travian-manager/internal/raid"
	"github.com/esemi/travian-manager/internal/schedule"
)

// Feature names, in run order
const (
	FeatureBuildTroops    = "build-troops"
	FeatureReportsCleanup = "reports-cleanup"
	FeatureAttackNotify   = "attack-notify"
	FeatureHeroAdventure  = "hero-adventure"
	FeatureHeroTerror     = "hero-terror"
	FeatureQuestComplete  = "quest-complete"
	FeatureTrade          = "trade"
	FeatureSendFarm       = "send-farm"
	FeatureClearLists     = "clear-farm-lists"
	FeatureUpdateLists    = "update-farm-lists"
)

type feature struct {
	name    string
	enabled bool
	run     func(ctx context.Context, cfg *config.Config, cycle *models.Cycle) error
}

func (d *Daemon) features(cfg *config.Config, n int) []feature {
	plan := schedule.Cadence{
		SendFactor:   cfg.Loop.SendFactor,
		UpdateFactor: cfg.Loop.UpdateFactor,
		ClearFactor:  cfg.Loop.ClearFactor,
		ClearEnabled: cfg.Loop.ClearEnabled,
	}.Plan(n)

	return []feature{
		{FeatureBuildTroops, len(cfg.Troops) > 0, d.buildTroops},
		{FeatureReportsCleanup, true, d.cleanupReports},
		{FeatureAttackNotify, d.notifier.Len() > 0, d.notifyAttacks},
		{FeatureHeroAdventure, cfg.Hero.AdventureHPThreshold > 0, d.heroAdventure},
		{FeatureHeroTerror, cfg.Hero.TerrorEnabled, d.heroTerror},
		{FeatureQuestComplete, true, d.completeQuests},
		{FeatureTrade, len(cfg.Trade) > 0, d.trade},
		{FeatureSendFarm, plan.Send && len(cfg.Farm.Lists) > 0, d.sendFarm},
		{FeatureClearLists, plan.Clear && len(cfg.Farm.Lists) > 0, d.clearLists},
		{FeatureUpdateLists, plan.Update && len(cfg.Farm.Discovery) > 0, d.updateLists},
	}
}

func (d *Daemon) buildTroops(ctx context.Context, cfg *config.Config, _ *models.Cycle) error {
	var errs []error
	for _, order := range cfg.Troops {
		if err := d.portal.BuildTroops(ctx, order.Village, order.Unit, order.Count); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", order.Village, err))
			continue
		}
		d.logger.Printf("Troops: queued %d of unit %d in %s", order.Count, order.Unit, order.Village)
	}
	return errors.Join(errs...)
}

func (d *Daemon) cleanupReports(ctx context.Context, _ *config.Config, _ *models.Cycle) error {
	n, err := d.portal.CleanupReports(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		d.logger.Printf("Reports: removed %d reports", n)
	}
	return nil
}

func (d *Daemon) notifyAttacks(ctx context.Context, _ *config.Config, _ *models.Cycle) error {
	attacks, err := d.portal.IncomingAttacks(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, attack := range attacks {
		if d.alerted[attack.ID] {
			continue
		}
		d.logger.Printf("Attack: %s -> %s in %s", attack.Attacker, attack.Village, attack.ArriveIn)
		if err := d.notifier.NotifyIncomingAttack(attack); err != nil {
			errs = append(errs, err)
		}
		d.alerted[attack.ID] = true
	}
	return errors.Join(errs...)
}

// heroReady reports whether the hero is home with enough health
func (d *Daemon) heroReady(ctx context.Context, cfg *config.Config) (bool, *models.HeroStatus, error) {
	status, err := d.portal.HeroStatus(ctx)
	if err != nil {
		return false, nil, err
	}
	if !status.Home {
		d.logger.Println("Hero: not at home")
		return false, status, nil
	}
	if status.HealthPercent < cfg.Hero.AdventureHPThreshold {
		d.logger.Printf("Hero: health %d%% below %d%%", status.HealthPercent, cfg.Hero.AdventureHPThreshold)
		return false, status, nil
	}
	return true, status, nil
}

func (d *Daemon) heroAdventure(ctx context.Context, cfg *config.Config, _ *models.Cycle) error {
	ready, status, err := d.heroReady(ctx, cfg)
	if err != nil || !ready {
		return err
	}
	if status.Adventures == 0 {
		d.logger.Println("Hero: no adventures")
		return nil
	}

	sent, err := d.portal.SendHeroToAdventure(ctx)
	if err != nil {
		return err
	}
	if sent {
		d.logger.Println("Hero: sent to adventure")
		d.notifier.NotifyHeroSent("adventure")
	}
	return nil
}

func (d *Daemon) heroTerror(ctx context.Context, cfg *config.Config, _ *models.Cycle) error {
	ready, _, err := d.heroReady(ctx, cfg)
	if err != nil || !ready {
		return err
	}

	zoom := cfg.Hero.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	tiles, err := discovery.ScanOases(ctx, d.portal, cfg.Hero.CenterX, cfg.Hero.CenterY, zoom)
	if err != nil {
		return err
	}

	evaluator := oasis.NewEvaluator(d.portal, oasis.NewStrengthTable(cfg.Nature),
		cfg.Hero.TerrorMinStrength, cfg.Hero.TerrorMaxStrength,
		oasis.WithRand(d.rnd), oasis.WithLogger(d.logger))
	target, err := evaluator.Select(ctx, tiles)
	if errors.Is(err, oasis.ErrNoTarget) {
		d.logger.Printf("Hero: no oasis among %d within [%d, %d]", len(tiles), cfg.Hero.TerrorMinStrength, cfg.Hero.TerrorMaxStrength)
		return nil
	}
	if err != nil {
		return err
	}

	if err := d.portal.SendHero(ctx, cfg.Hero.Village, target.X, target.Y); err != nil {
		return err
	}
	destination := fmt.Sprintf("oasis (%d|%d) strength %d", target.X, target.Y, target.GarrisonStrength)
	d.logger.Printf("Hero: sent to %s", destination)
	d.notifier.NotifyHeroSent(destination)
	return nil
}

func (d *Daemon) completeQuests(ctx context.Context, _ *config.Config, _ *models.Cycle) error {
	n, err := d.portal.CompleteQuests(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		d.logger.Printf("Quests: collected %d rewards", n)
		d.notifier.NotifyQuestComplete(n)
	}
	return nil
}

func (d *Daemon) trade(ctx context.Context, cfg *config.Config, _ *models.Cycle) error {
	var errs []error
	for _, route := range cfg.Trade {
		if err := d.portal.SendResources(ctx, route.From, route.To, route.Resources); err != nil {
			errs = append(errs, fmt.Errorf("%s -> %s: %w", route.From, route.To, err))
			continue
		}
		d.logger.Printf("Trade: %s -> %s %v", route.From, route.To, route.Resources)
	}
	return errors.Join(errs...)
}

func (d *Daemon) sendFarm(ctx context.Context, cfg *config.Config, cycle *models.Cycle) error {
	classifier := classify.Classifier{
		MinReraidInterval: cfg.MinReraidInterval(),
		Location:          cfg.Location(),
	}
	opts := []raid.Option{
		raid.WithRand(d.rnd),
		raid.WithPause(cfg.ActionPause()),
		raid.WithClock(d.now),
		raid.WithLogger(d.logger),
	}
	if d.journal != nil {
		opts = append(opts, raid.WithJournal(d.journal))
	}

	sender := raid.NewSender(d.portal, classifier, raid.Settings{
		Lists:       cfg.Farm.Lists,
		SendOrange:  cfg.Farm.SendOrange,
		EscortUnit:  cfg.Farm.EscortUnit,
		EscortCount: cfg.Farm.EscortCount,
	}, opts...)

	result, err := sender.Send(ctx, cycle.ID)
	for tier, n := range result {
		cycle.Sent[tier] += n
	}
	return err
}

func (d *Daemon) manager(cfg *config.Config) *farmlist.Manager {
	return farmlist.NewManager(d.portal,
		farmlist.WithMaxSuffixDepth(cfg.Farm.MaxSuffixDepth),
		farmlist.WithLogger(d.logger))
}

func (d *Daemon) clearLists(ctx context.Context, cfg *config.Config, _ *models.Cycle) error {
	_, err := d.manager(cfg).Clear(ctx, cfg.Farm.Lists)
	return err
}

func (d *Daemon) updateLists(ctx context.Context, cfg *config.Config, cycle *models.Cycle) error {
	discoverer := discovery.New(d.portal, d.manager(cfg), d.logger)
	added, err := discoverer.Update(ctx, DiscoveryConfigs(cfg))
	cycle.Added += added
	return err
}
