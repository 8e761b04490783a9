package daemon

import (
	"context"

	"github.com/esemi/travian-manager/internal/discovery"
	"github.com/esemi/travian-manager/internal/farmlist"
	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/oasis"
	"github.com/esemi/travian-manager/internal/raid"
)

// Portal is the full game portal surface the run loop owns
type Portal interface {
	farmlist.Portal
	discovery.Portal
	raid.Portal
	oasis.Portal

	Login(ctx context.Context, host, login, password string) error
	Sanitize(ctx context.Context) error
	Close() error
	Detach() error

	BuildTroops(ctx context.Context, village string, unit, count int) error
	CleanupReports(ctx context.Context) (int, error)
	IncomingAttacks(ctx context.Context) ([]models.IncomingAttack, error)
	HeroStatus(ctx context.Context) (*models.HeroStatus, error)
	SendHeroToAdventure(ctx context.Context) (bool, error)
	SendHero(ctx context.Context, village string, x, y int) error
	CompleteQuests(ctx context.Context) (int, error)
	SendResources(ctx context.Context, from, to string, resources [4]int) error
}
