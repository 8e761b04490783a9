package setup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/esemi/travian-manager/internal/config"
)

// Wizard handles interactive first-run setup
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a setup wizard reading answers from in
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run asks for the account and bridge settings and writes the config to
// configPath. Unanswered questions keep their defaults.
func (w *Wizard) Run(configPath string) (*config.Config, error) {
	fmt.Fprintln(w.out, "Travian bot setup")
	fmt.Fprintln(w.out, "=================")
	fmt.Fprintln(w.out)

	cfg := config.DefaultConfig()
	if existing, err := config.Load(configPath); err == nil {
		cfg = existing
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(configPath)
	}

	answers := []struct {
		question string
		target   *string
	}{
		{"Where should the bot store its data?", &cfg.DataDir},
		{"Game server URL", &cfg.Account.Host},
		{"Login", &cfg.Account.Login},
		{"Password", &cfg.Account.Password},
		{"Server time zone", &cfg.Account.Timezone},
		{"Automation bridge URL", &cfg.Portal.BridgeURL},
	}
	for _, a := range answers {
		value, err := w.prompt(a.question, *a.target)
		if err != nil {
			return nil, err
		}
		*a.target = value
	}

	list, err := w.prompt("Farm list to raid (\"<village> - <list>\", empty to skip)", strings.Join(cfg.Farm.Lists, ","))
	if err != nil {
		return nil, err
	}
	if list != "" {
		cfg.Farm.Lists = splitList(list)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", cfg.DataDir, err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", configPath, err)
	}
	if err := config.Save(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Setup complete!")
	fmt.Fprintf(w.out, "  Data:   %s\n", cfg.DataDir)
	fmt.Fprintf(w.out, "  Config: %s\n", configPath)
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Next steps:")
	fmt.Fprintln(w.out, "  1. Start the automation bridge")
	fmt.Fprintln(w.out, "  2. Check your lists:  travian lists")
	fmt.Fprintln(w.out, "  3. Start the bot:     travian run")

	return cfg, nil
}

func (w *Wizard) prompt(question, defaultVal string) (string, error) {
	fmt.Fprintf(w.out, "%s [%s]: ", question, defaultVal)
	input, err := w.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		if errors.Is(err, io.EOF) {
			return defaultVal, nil
		}
		return "", err
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal, nil
	}
	return input, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
