package config

import "time"

const (
	DefaultBasePeriod     = 10 * time.Minute
	DefaultRequestTimeout = 20 * time.Second
	DefaultActionPause    = 5 * time.Second
	DefaultMaxSuffixDepth = 8
)

// DefaultNatureStrength is the combat value of each nature unit
// used to rank oasis garrisons
func DefaultNatureStrength() map[string]int {
	return map[string]int{
		"Rat":       45,
		"Spider":    80,
		"Snake":     100,
		"Bat":       110,
		"Wild Boar": 140,
		"Wolf":      150,
		"Bear":      250,
		"Tiger":     300,
		"Crocodile": 320,
		"Elephant":  450,
	}
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Account: AccountConfig{
			Host:     "http://ts1.travian.com",
			Timezone: "UTC",
		},
		Portal: PortalConfig{
			BridgeURL:      "ws://127.0.0.1:4444/rpc",
			RequestTimeout: "20s",
			ActionRate:     1,
			ActionBurst:    3,
			Language: LanguageConfig{
				WithoutLosses:    "without losses",
				WithLosses:       "with losses",
				Lost:             "lost",
				FullCarry:        "full",
				AlreadyAttacking: "Own attacking troops",
				Today:            "today",
			},
		},
		Loop: LoopConfig{
			BasePeriod:   "10m",
			SendFactor:   10,
			UpdateFactor: 50,
			ClearFactor:  25,
			ClearEnabled: false,
			ActionPause:  "5s",
		},
		Farm: FarmConfig{
			MinReraidSeconds: 3600,
			SendOrange:       false,
			MaxSuffixDepth:   DefaultMaxSuffixDepth,
		},
		Hero: HeroConfig{
			AdventureHPThreshold: 80,
			Zoom:                 1,
		},
		Nature: DefaultNatureStrength(),
		Notify: NotifyConfig{
			Desktop:     true,
			SMSEndpoint: "http://smsc.ru/sys/send.php",
		},
	}
}

// BasePeriod returns the parsed loop period, falling back to the default
func (c *Config) BasePeriod() time.Duration {
	return parseDuration(c.Loop.BasePeriod, DefaultBasePeriod)
}

// ActionPause returns the wait between dependent portal actions
func (c *Config) ActionPause() time.Duration {
	return parseDuration(c.Loop.ActionPause, DefaultActionPause)
}

// RequestTimeout returns the per-call portal timeout
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Portal.RequestTimeout, DefaultRequestTimeout)
}

// MinReraidInterval returns the minimum time between two raids on a green slot
func (c *Config) MinReraidInterval() time.Duration {
	return time.Duration(c.Farm.MinReraidSeconds) * time.Second
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Location returns the game server time zone, UTC when unset or unknown
func (c *Config) Location() *time.Location {
	if c.Account.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Account.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
