package config

// Config holds the bot configuration
type Config struct {
	DataDir  string         `toml:"data_dir"`
	Account  AccountConfig  `toml:"account"`
	Portal   PortalConfig   `toml:"portal"`
	Loop     LoopConfig     `toml:"loop"`
	Farm     FarmConfig     `toml:"farm"`
	Filter   FilterConfig   `toml:"filter"`
	Hero     HeroConfig     `toml:"hero"`
	Nature   map[string]int `toml:"nature"`
	Troops   []TroopOrder   `toml:"troops"`
	Trade    []TradeRoute   `toml:"trade"`
	Notify   NotifyConfig   `toml:"notify"`
}

type AccountConfig struct {
	Host     string `toml:"host"`
	Login    string `toml:"login"`
	Password string `toml:"password"`
	Timezone string `toml:"timezone"` // game server time zone, IANA name
}

type PortalConfig struct {
	BridgeURL      string         `toml:"bridge_url"`
	RequestTimeout string         `toml:"request_timeout"`
	ActionRate     float64        `toml:"action_rate"` // actions per second
	ActionBurst    int            `toml:"action_burst"`
	Language       LanguageConfig `toml:"language"`
}

// LanguageConfig holds the localized UI markers the portal adapter
// turns into report signals
type LanguageConfig struct {
	WithoutLosses    string `toml:"without_losses"`
	WithLosses       string `toml:"with_losses"`
	Lost             string `toml:"lost"`
	FullCarry        string `toml:"full_carry"`
	AlreadyAttacking string `toml:"already_attacking"`
	Today            string `toml:"today"`
}

type LoopConfig struct {
	BasePeriod   string `toml:"base_period"`
	SendFactor   int    `toml:"send_factor"`
	UpdateFactor int    `toml:"update_factor"`
	ClearFactor  int    `toml:"clear_factor"`
	ClearEnabled bool   `toml:"clear_enabled"`
	ActionPause  string `toml:"action_pause"`
}

type FarmConfig struct {
	Lists            []string          `toml:"lists"`
	MinReraidSeconds int               `toml:"min_reraid_seconds"`
	SendOrange       bool              `toml:"send_orange"`
	EscortUnit       int               `toml:"escort_unit"`
	EscortCount      int               `toml:"escort_count"`
	MaxSuffixDepth   int               `toml:"max_suffix_depth"`
	Discovery        []DiscoveryConfig `toml:"discovery"`
}

// DiscoveryConfig describes one target-discovery pass feeding a farm list
type DiscoveryConfig struct {
	List       string     `toml:"list"` // "<village> - <name>"
	CenterX    int        `toml:"center_x"`
	CenterY    int        `toml:"center_y"`
	Offset     int        `toml:"offset"`
	Zoom       int        `toml:"zoom"`
	TroopID    int        `toml:"troop_id"`
	TroopCount int        `toml:"troop_count"`
	Rule       RuleConfig `toml:"rule"`
}

// RuleConfig is the per-discovery filter rule
type RuleConfig struct {
	IgnoreNPC bool        `toml:"ignore_npc"`
	OnlyNPC   bool        `toml:"only_npc"`
	Inh       *Population `toml:"inh"`
	Where     string      `toml:"where"`
}

// Population bounds a target's population, both ends inclusive.
// A missing Min means 0, a missing Max means unbounded.
type Population struct {
	Min *int `toml:"min"`
	Max *int `toml:"max"`
}

type FilterConfig struct {
	IgnorePlayers   []string `toml:"ignore_players"`
	IgnoreAlliances []string `toml:"ignore_alliances"`
}

type HeroConfig struct {
	AdventureHPThreshold int    `toml:"adventure_hp_threshold"`
	TerrorEnabled        bool   `toml:"terror_enabled"`
	TerrorMinStrength    int    `toml:"terror_min_strength"`
	TerrorMaxStrength    int    `toml:"terror_max_strength"`
	Village              string `toml:"village"`
	CenterX              int    `toml:"center_x"`
	CenterY              int    `toml:"center_y"`
	Zoom                 int    `toml:"zoom"`
}

type TroopOrder struct {
	Village string `toml:"village"`
	Unit    int    `toml:"unit"`
	Count   int    `toml:"count"`
}

type TradeRoute struct {
	From      string `toml:"from"`
	To        string `toml:"to"`
	Resources [4]int `toml:"resources"` // wood, clay, iron, crop
}

type NotifyConfig struct {
	Desktop     bool   `toml:"desktop"`
	SMSLogin    string `toml:"sms_login"`
	SMSPassword string `toml:"sms_password"`
	SMSPhone    string `toml:"sms_phone"`
	SMSEndpoint string `toml:"sms_endpoint"`
}
