package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/esemi/travian-manager/internal/models"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndHistory(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	entries := []models.RaidEntry{
		{CycleID: "c1", List: "Oak - farm", Tier: models.TierGreenFull, Mask: "Pine|1|2", X: 1, Y: 2, SentAt: base},
		{CycleID: "c1", List: "Oak - farm", Tier: models.TierGreenOther, Mask: "Elm|3|4", X: 3, Y: 4, SentAt: base.Add(time.Minute)},
		{CycleID: "c2", List: "Oak - hero", Tier: models.TierOrangeFull, Mask: "Ash|5|6", X: 5, Y: 6, Escort: true, SentAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
	}

	all, err := j.History(ctx, JournalFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].Mask != "Ash|5|6" || !all[0].Escort {
		t.Errorf("expected newest escort entry first, got %+v", all[0])
	}
	if !all[2].SentAt.Equal(base) {
		t.Errorf("expected time to round-trip, got %s", all[2].SentAt)
	}

	farm, err := j.History(ctx, JournalFilter{List: "Oak - farm", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(farm) != 1 || farm[0].Tier != models.TierGreenOther {
		t.Errorf("expected latest farm entry, got %+v", farm)
	}

	since, err := j.History(ctx, JournalFilter{Since: base.Add(90 * time.Second)})
	if err != nil {
		t.Fatal(err)
	}
	if len(since) != 1 {
		t.Errorf("expected 1 entry since cutoff, got %d", len(since))
	}
}

func TestJournal_CountByTier(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		j.Record(ctx, models.RaidEntry{CycleID: "c", List: "l", Tier: models.TierGreenFull, Mask: "m", SentAt: now})
	}
	j.Record(ctx, models.RaidEntry{CycleID: "c", List: "l", Tier: models.TierOrangeOther, Mask: "m", SentAt: now})
	j.Record(ctx, models.RaidEntry{CycleID: "c", List: "l", Tier: models.TierGreenOther, Mask: "m", SentAt: now.Add(-48 * time.Hour)})

	counts, err := j.CountByTier(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if counts[models.TierGreenFull] != 3 || counts[models.TierOrangeOther] != 1 || counts[models.TierGreenOther] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}
