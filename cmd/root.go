package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/esemi/travian-manager/internal/config"
	"github.com/esemi/travian-manager/internal/portal"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "travian",
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "Travian - farm list raid bot",
	Long: `A bot that keeps Travian farm lists full of fresh targets and sends
raids by the outcome of each slot's last report.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("no config at %s, run 'travian init' first", path)
		}
		return nil, "", err
	}
	return cfg, path, nil
}

func dataPath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.DataDir, name)
}

func portalOptions(cfg *config.Config) portal.Options {
	lang := cfg.Portal.Language
	return portal.Options{
		Timeout: cfg.RequestTimeout(),
		Rate:    cfg.Portal.ActionRate,
		Burst:   cfg.Portal.ActionBurst,
		Language: portal.LanguagePack{
			WithoutLosses:    lang.WithoutLosses,
			WithLosses:       lang.WithLosses,
			Lost:             lang.Lost,
			FullCarry:        lang.FullCarry,
			AlreadyAttacking: lang.AlreadyAttacking,
			Today:            lang.Today,
		},
	}
}

// openSession dials the bridge and logs in for one-shot commands
func openSession(ctx context.Context, cfg *config.Config) (*portal.Client, error) {
	client, err := portal.Dial(ctx, cfg.Portal.BridgeURL, portalOptions(cfg))
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx, cfg.Account.Host, cfg.Account.Login, cfg.Account.Password); err != nil {
		client.Close()
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return client, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.travian/config.toml)")
}
