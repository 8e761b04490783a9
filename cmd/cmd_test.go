package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/esemi/travian-manager/internal/config"
	"github.com/esemi/travian-manager/internal/models"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{"init", "run", "stop", "status", "scan", "lists", "history", "watch", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q command", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	if !strings.HasPrefix(buf.String(), "travian version dev") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestScanConfig_GlobalRule(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filter.IgnorePlayers = []string{"friend"}

	dc, err := scanConfig(cfg, 10, -4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dc.CenterX != 10 || dc.CenterY != -4 {
		t.Errorf("unexpected centre (%d|%d)", dc.CenterX, dc.CenterY)
	}
	if len(dc.Rule.IgnorePlayers) != 1 || dc.Rule.IgnorePlayers[0] != "friend" {
		t.Errorf("expected global ignore list, got %v", dc.Rule.IgnorePlayers)
	}
}

func TestScanConfig_DiscoveryRule(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Farm.Discovery = []config.DiscoveryConfig{
		{List: "Oak - farm", Rule: config.RuleConfig{OnlyNPC: true}},
	}
	scanList = "Oak - farm"
	defer func() { scanList = "" }()

	dc, err := scanConfig(cfg, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dc.Rule.OnlyNPC {
		t.Error("expected the discovery rule to be used")
	}

	scanList = "Elm - farm"
	if _, err := scanConfig(cfg, 0, 0); err == nil {
		t.Error("expected an unknown discovery list to be rejected")
	}
}

func useConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	configPath = path
	t.Cleanup(func() { configPath = "" })
}

func TestCommands_ReturnMissingConfig(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.toml")
	defer func() { configPath = "" }()

	cases := []struct {
		name string
		run  func() error
	}{
		{"run", func() error { return runCmd.RunE(runCmd, nil) }},
		{"stop", func() error { return stopCmd.RunE(stopCmd, nil) }},
		{"status", func() error { return statusCmd.RunE(statusCmd, nil) }},
		{"scan", func() error { return scanCmd.RunE(scanCmd, []string{"1", "2"}) }},
		{"lists", func() error { return listsCmd.RunE(listsCmd, nil) }},
		{"history", func() error { return historyCmd.RunE(historyCmd, nil) }},
		{"watch", func() error { return watchCmd.RunE(watchCmd, nil) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			if err == nil || !strings.Contains(err.Error(), "travian init") {
				t.Errorf("expected missing config error, got %v", err)
			}
		})
	}
}

func TestScanCommand_InvalidCoordinate(t *testing.T) {
	if err := scanCmd.RunE(scanCmd, []string{"x", "2"}); err == nil {
		t.Error("expected invalid coordinate to be rejected")
	}
}

func TestRunCommand_BridgeDownReturnsError(t *testing.T) {
	dataDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.Portal.BridgeURL = "ws://127.0.0.1:1/rpc"
	useConfig(t, cfg)

	if err := runCmd.RunE(runCmd, nil); err == nil {
		t.Fatal("expected unreachable bridge to fail")
	}
	if _, err := os.Stat(filepath.Join(dataDir, "bot.log")); err != nil {
		t.Errorf("expected bot.log to be created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "bot.pid")); !os.IsNotExist(err) {
		t.Errorf("expected no PID file, got %v", err)
	}
}

func TestStopCommand_NotRunning(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	useConfig(t, cfg)

	if err := stopCmd.RunE(stopCmd, nil); err != nil {
		t.Errorf("expected stop without a bot to succeed, got %v", err)
	}
}

func TestFormatTiers(t *testing.T) {
	got := formatTiers(map[models.Tier]int{models.TierOrangeFull: 2, models.TierGreenFull: 5})
	if got != "green_full 5, orange_full 2" {
		t.Errorf("expected tiers in send order, got %q", got)
	}
	if formatTiers(nil) != "nothing" {
		t.Errorf("expected nothing for empty map")
	}
}
