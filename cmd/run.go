package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/esemi/travian-manager/internal/config"
	"github.com/esemi/travian-manager/internal/daemon"
	"github.com/esemi/travian-manager/internal/notify"
	"github.com/esemi/travian-manager/internal/portal"
	"github.com/esemi/travian-manager/internal/storage"
	"github.com/spf13/cobra"
)

var (
	debug     bool
	noClose   bool
	maxCycles int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot loop",
	Long: `Log in through the automation bridge and run bot cycles until stopped.
Send SIGTERM (travian stop) or press Ctrl+C to end the loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		// Always log to bot.log for the watch view
		logFile, err := os.OpenFile(dataPath(cfg, "bot.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()

		var out io.Writer = logFile
		if debug {
			out = io.MultiWriter(os.Stdout, logFile)
		}
		logger := log.New(out, "", log.LstdFlags)

		cycles, err := storage.NewCycleStore(cfg.DataDir)
		if err != nil {
			return err
		}

		journal, err := storage.OpenJournal(dataPath(cfg, "raids.db"))
		if err != nil {
			return err
		}
		defer journal.Close()

		notifier := newNotifier(cfg)
		defer notifier.Close()

		ctx := context.Background()
		client, err := portal.Dial(ctx, cfg.Portal.BridgeURL, portalOptions(cfg))
		if err != nil {
			return err
		}

		opts := []daemon.Option{
			daemon.WithLogger(logger),
			daemon.WithNotifier(notifier),
			daemon.WithCycleStore(cycles),
			daemon.WithJournal(journal),
			daemon.WithPIDFile(daemon.NewPIDFile(dataPath(cfg, "bot.pid"))),
			daemon.WithConfigPath(path),
			daemon.WithNoClose(noClose),
		}
		if maxCycles > 0 {
			opts = append(opts, daemon.WithMaxCycles(maxCycles))
		}

		// Start releases the portal session on every return path
		return daemon.New(cfg, client, opts...).Start(ctx)
	},
}

func newNotifier(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier
	if cfg.Notify.Desktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier())
	}
	if cfg.Notify.SMSLogin != "" && cfg.Notify.SMSPhone != "" {
		notifiers = append(notifiers, notify.NewSMSNotifier(
			cfg.Notify.SMSEndpoint, cfg.Notify.SMSLogin, cfg.Notify.SMSPassword, cfg.Notify.SMSPhone))
	}
	return notify.NewManager(notifiers...)
}

func init() {
	runCmd.Flags().BoolVar(&debug, "debug", false, "also write the log to stdout")
	runCmd.Flags().BoolVar(&noClose, "no-close", false, "leave the browser session open on exit")
	runCmd.Flags().IntVar(&maxCycles, "cycles", 0, "stop after this many cycles (0 runs forever)")
	rootCmd.AddCommand(runCmd)
}
