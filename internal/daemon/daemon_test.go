package daemon

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/esemi/travian-manager/internal/config"
	"github.com/esemi/travian-manager/internal/models"
	"github.com/esemi/travian-manager/internal/notify"
	"github.com/esemi/travian-manager/internal/portal"
	"github.com/esemi/travian-manager/internal/portal/portaltest"
	"github.com/esemi/travian-manager/internal/storage"
)

type recordingNotifier struct {
	received []notify.Notification
}

func (r *recordingNotifier) Notify(n notify.Notification) error {
	r.received = append(r.received, n)
	return nil
}

func (r *recordingNotifier) Close() error { return nil }

func noWait(ctx context.Context, d time.Duration) error { return ctx.Err() }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Loop.ActionPause = "1ms"
	cfg.Hero.AdventureHPThreshold = 0
	return cfg
}

func newDaemon(cfg *config.Config, f *portaltest.Fake, opts ...Option) *Daemon {
	base := []Option{
		WithWait(noWait),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }),
	}
	return New(cfg, f, append(base, opts...)...)
}

func featureNames(c *models.Cycle) []string {
	names := make([]string, len(c.Features))
	for i, f := range c.Features {
		names[i] = f.Name
	}
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func TestPIDFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "travian-daemon-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	pidFile := NewPIDFile(filepath.Join(tmpDir, "bot.pid"))

	if err := pidFile.Write(12345); err != nil {
		t.Fatalf("failed to write PID: %v", err)
	}

	pid, err := pidFile.Read()
	if err != nil {
		t.Fatalf("failed to read PID: %v", err)
	}
	if pid != 12345 {
		t.Errorf("expected PID 12345, got %d", pid)
	}

	if err := pidFile.Remove(); err != nil {
		t.Fatalf("failed to remove PID: %v", err)
	}

	if _, err := pidFile.Read(); err == nil {
		t.Error("expected error reading removed PID file")
	}
}

func TestIsProcessRunning(t *testing.T) {
	if !IsProcessRunning(os.Getpid()) {
		t.Error("current process should be running")
	}

	// Using a very high PID that's unlikely to exist
	if IsProcessRunning(999999999) {
		t.Error("non-existent process should not be running")
	}
}

func TestPIDFile_Check(t *testing.T) {
	pidFile := NewPIDFile(filepath.Join(t.TempDir(), "bot.pid"))

	running, pid, err := pidFile.Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if running || pid != 0 {
		t.Errorf("expected not running with no PID file, got %v %d", running, pid)
	}

	if err := pidFile.Acquire(); err != nil {
		t.Fatalf("failed to acquire: %v", err)
	}
	if err := pidFile.Acquire(); err == nil {
		t.Error("expected second acquire to fail")
	}

	state, pid, err := Status(pidFile)
	if err != nil {
		t.Fatal(err)
	}
	if state != StateRunning || pid != os.Getpid() {
		t.Errorf("expected running as %d, got %s %d", os.Getpid(), state, pid)
	}

	// Write stale PID - should return not running and remove file
	if err := pidFile.Write(999999999); err != nil {
		t.Fatal(err)
	}
	state, _, err = Status(pidFile)
	if err != nil {
		t.Fatal(err)
	}
	if state != StateIdle {
		t.Errorf("expected idle with stale PID, got %s", state)
	}
	if _, err := os.Stat(pidFile.Path()); !os.IsNotExist(err) {
		t.Error("expected stale PID file to be removed")
	}
	if _, err := pidFile.Signal(os.Interrupt); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}

func TestStart_LoginFailureIsFatal(t *testing.T) {
	f := portaltest.New()
	f.Fail(portal.MethodLogin, errors.New("bad password"))

	d := newDaemon(testConfig(), f, WithMaxCycles(1))
	err := d.Start(context.Background())

	var loginErr *portal.LoginError
	if !errors.As(err, &loginErr) {
		t.Fatalf("expected LoginError, got %v", err)
	}
	if d.Cycle() != 0 {
		t.Errorf("expected no cycle before login, got %d", d.Cycle())
	}
	if !f.Closed {
		t.Error("expected portal to be closed on login failure")
	}
}

func TestStart_MissingTokenIsFatal(t *testing.T) {
	f := portaltest.New()
	f.LoginToken = ""

	d := newDaemon(testConfig(), f, WithMaxCycles(1))
	var tokenErr *portal.TokenMissingError
	if err := d.Start(context.Background()); !errors.As(err, &tokenErr) {
		t.Fatalf("expected TokenMissingError, got %v", err)
	}
}

func TestStart_RunsAndReleases(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewCycleStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	pidFile := NewPIDFile(filepath.Join(dir, "bot.pid"))

	f := portaltest.New()
	d := newDaemon(testConfig(), f, WithMaxCycles(3), WithCycleStore(store), WithPIDFile(pidFile))
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Cycle() != 3 {
		t.Errorf("expected 3 cycles, got %d", d.Cycle())
	}
	if f.Sanitized != 6 {
		t.Errorf("expected sanitize before and after each cycle, got %d", f.Sanitized)
	}
	if !f.Closed {
		t.Error("expected portal to be closed")
	}
	if _, err := os.Stat(pidFile.Path()); !os.IsNotExist(err) {
		t.Error("expected PID file to be removed")
	}

	recent, _ := store.Recent(0)
	if len(recent) != 3 || recent[0].Number != 3 || recent[0].EndedAt.IsZero() {
		t.Errorf("expected 3 finished cycle summaries, got %d", len(recent))
	}
}

func TestStart_NoCloseDetaches(t *testing.T) {
	f := portaltest.New()
	d := newDaemon(testConfig(), f, WithMaxCycles(1), WithNoClose(true))
	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.Closed {
		t.Error("expected portal session to stay open")
	}
}

func TestStart_CancelledContext(t *testing.T) {
	f := portaltest.New()
	ctx, cancel := context.WithCancel(context.Background())
	d := newDaemon(testConfig(), f, WithWait(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	if err := d.Start(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if d.Cycle() != 1 || !f.Closed {
		t.Errorf("expected one cycle then release, got cycle %d closed %v", d.Cycle(), f.Closed)
	}
}

func TestRunCycle_FeatureIsolation(t *testing.T) {
	f := portaltest.New()
	f.Fail(portal.MethodCleanupReports, errors.New("stale page"))
	f.Quests = 2

	d := newDaemon(testConfig(), f)
	cycle, err := d.RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if f.CallCount(portal.MethodQuests) != 1 {
		t.Error("expected quest feature to run after a failed feature")
	}
	failed := cycle.Failed()
	if len(failed) != 1 || failed[0] != FeatureReportsCleanup {
		t.Errorf("expected only reports-cleanup to fail, got %v", failed)
	}
}

func TestRunFeature_RecoversPanic(t *testing.T) {
	d := newDaemon(testConfig(), portaltest.New())
	run := d.runFeature(context.Background(), "boom", func(context.Context) error {
		panic("nil page")
	})
	if run.Error == "" {
		t.Error("expected panic to be recorded")
	}
}

func TestRunCycle_Cadence(t *testing.T) {
	cfg := testConfig()
	cfg.Loop.SendFactor = 2
	cfg.Loop.UpdateFactor = 3
	cfg.Loop.ClearFactor = 4
	cfg.Loop.ClearEnabled = true
	cfg.Farm.Lists = []string{"Oak - farm"}
	cfg.Farm.Discovery = []config.DiscoveryConfig{{List: "Oak - farm"}}

	f := portaltest.New()
	f.AddVillage(models.Village{ID: "1", Name: "Oak"})
	f.AddList("Oak", "farm", 100, models.Slot{CheckboxID: "s1", VillageName: "Pine", X: 1, Y: 1})

	d := newDaemon(cfg, f)
	want := map[int][3]bool{ // send, clear, update
		1: {true, false, false},
		2: {true, false, false},
		3: {false, false, true},
		4: {true, true, false},
		5: {false, false, false},
		6: {true, false, true},
	}
	for n := 1; n <= 6; n++ {
		cycle, err := d.RunCycle(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		names := featureNames(cycle)
		got := [3]bool{contains(names, FeatureSendFarm), contains(names, FeatureClearLists), contains(names, FeatureUpdateLists)}
		if got != want[n] {
			t.Errorf("cycle %d: expected send/clear/update %v, got %v", n, want[n], got)
		}
	}
}

func TestRunCycle_SendFarmCounts(t *testing.T) {
	cfg := testConfig()
	cfg.Farm.Lists = []string{"Oak - *"}

	f := portaltest.New()
	f.AddVillage(models.Village{ID: "1", Name: "Oak"})
	f.AddList("Oak", "farm", 100,
		models.Slot{CheckboxID: "a", VillageName: "Pine", X: 1, Y: 1},
		models.Slot{CheckboxID: "b", VillageName: "Elm", X: 2, Y: 2, LastReport: &models.Report{Outcome: models.OutcomeGreen, FullCarry: true}},
	)

	d := newDaemon(cfg, f)
	cycle, err := d.RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cycle.Sent[models.TierGreenFull] != 1 || cycle.Sent[models.TierGreenOther] != 1 {
		t.Errorf("unexpected sent counts %v", cycle.Sent)
	}
}

func TestRunCycle_AttackNotifiedOnce(t *testing.T) {
	rec := &recordingNotifier{}
	f := portaltest.New()
	f.Attacks = []models.IncomingAttack{{ID: "m1", Village: "Oak", Attacker: "bob", ArriveIn: "0:10:00"}}

	d := newDaemon(testConfig(), f, WithNotifier(notify.NewManager(rec)))
	d.RunCycle(context.Background())
	d.RunCycle(context.Background())

	if len(rec.received) != 1 {
		t.Errorf("expected one alert, got %d", len(rec.received))
	}
}

func TestRunCycle_HeroTerror(t *testing.T) {
	cfg := testConfig()
	cfg.Hero.AdventureHPThreshold = 50
	cfg.Hero.TerrorEnabled = true
	cfg.Hero.TerrorMinStrength = 100
	cfg.Hero.TerrorMaxStrength = 500
	cfg.Hero.Village = "Oak"
	cfg.Hero.CenterX, cfg.Hero.CenterY = 10, 10

	f := portaltest.New()
	f.Hero = models.HeroStatus{HealthPercent: 90, Home: true}
	f.SetScan(10, 10, portaltest.Tile{X: 11, Y: 12, Oasis: true, Fill: 50})
	f.Details[[2]int{11, 12}] = []models.GarrisonRow{{Name: "Rat", Count: 3}, {Name: "Wolf", Count: 2}}

	d := newDaemon(cfg, f)
	if _, err := d.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.HeroSends) != 1 || f.HeroSends[0].X != 11 || f.HeroSends[0].Y != 12 {
		t.Errorf("expected hero sent to (11|12), got %v", f.HeroSends)
	}
}

func TestRunCycle_HeroAdventureSkipsWounded(t *testing.T) {
	cfg := testConfig()
	cfg.Hero.AdventureHPThreshold = 80

	f := portaltest.New()
	f.Hero = models.HeroStatus{HealthPercent: 40, Home: true}
	f.Adventures = 2

	d := newDaemon(cfg, f)
	d.RunCycle(context.Background())
	if f.CallCount(portal.MethodHeroAdventure) != 0 {
		t.Error("expected wounded hero to stay home")
	}

	f.Hero.HealthPercent = 100
	d.RunCycle(context.Background())
	if f.CallCount(portal.MethodHeroAdventure) != 1 {
		t.Error("expected healthy hero to go on an adventure")
	}
}

func TestDiscoveryConfigs(t *testing.T) {
	cfg := testConfig()
	cfg.Filter.IgnorePlayers = []string{"friend"}
	minPop, maxPop := 16, 60
	cfg.Farm.Discovery = []config.DiscoveryConfig{{
		List: "Oak - farm",
		Rule: config.RuleConfig{IgnoreNPC: true, Inh: &config.Population{Min: &minPop, Max: &maxPop}},
	}}

	got := DiscoveryConfigs(cfg)
	if len(got) != 1 {
		t.Fatalf("expected 1 config, got %d", len(got))
	}
	rule := got[0].Rule
	if len(rule.IgnorePlayers) != 1 || !rule.IgnoreNPC || *rule.MinPopulation != 16 || *rule.MaxPopulation != 60 {
		t.Errorf("unexpected rule %+v", rule)
	}
	if got[0].Zoom != 1 {
		t.Errorf("expected default zoom 1, got %d", got[0].Zoom)
	}
}

func TestWaitWithReload_ClosedWatcher(t *testing.T) {
	var buf bytes.Buffer
	sleepy := func(ctx context.Context, d time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
	d := newDaemon(testConfig(), portaltest.New(),
		WithWait(sleepy),
		WithLogger(log.New(&buf, "", 0)),
		WithConfigPath(filepath.Join(t.TempDir(), "missing.toml")),
	)

	reload := make(chan struct{}, 1)
	reload <- struct{}{}
	close(reload)

	next, err := d.waitWithReload(context.Background(), 50*time.Millisecond, reload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != nil {
		t.Error("expected closed watcher channel to be dropped")
	}
	if n := strings.Count(buf.String(), "reload failed"); n != 1 {
		t.Errorf("expected exactly 1 reload attempt, got %d", n)
	}

	if _, err := d.waitWithReload(context.Background(), time.Millisecond, next); err != nil {
		t.Fatalf("unexpected error after watcher closed: %v", err)
	}
	if n := strings.Count(buf.String(), "reload failed"); n != 1 {
		t.Errorf("expected no reload once the watcher closed, got %d attempts", n)
	}
}

func TestStart_PIDHeldReleasesConnection(t *testing.T) {
	pidFile := NewPIDFile(filepath.Join(t.TempDir(), "bot.pid"))
	if err := pidFile.Acquire(); err != nil {
		t.Fatal(err)
	}

	f := portaltest.New()
	d := newDaemon(testConfig(), f, WithPIDFile(pidFile), WithMaxCycles(1))
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail while another bot holds the PID file")
	}
	if !f.Detached {
		t.Error("expected the connection to be released")
	}
	if f.Closed {
		t.Error("expected the game session of the running bot to stay open")
	}
	if f.CallCount(portal.MethodLogin) != 0 {
		t.Error("expected no login")
	}
}
