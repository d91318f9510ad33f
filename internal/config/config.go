// Package config provides Viper-based configuration loading for the crawler
// binaries.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/hallcrawl/internal/game/combat"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
	"github.com/cory-johannsen/hallcrawl/internal/game/player"
)

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is how long a connection may send nothing before it is dropped.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxSessions caps concurrent playthroughs; 0 means unlimited.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. The terminal frontend
	// owns the screen, so it logs to a file.
	Output string `mapstructure:"output"`
	// MaxSizeMB rotates a file Output once it reaches this size; 0 disables rotation.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is how many rotated files to keep; 0 keeps all.
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAgeDays deletes rotated files older than this; 0 keeps them forever.
	MaxAgeDays int `mapstructure:"max_age_days"`
}

// Rotating reports whether Output is a file that should be rotated.
func (l LoggingConfig) Rotating() bool {
	return l.MaxSizeMB > 0 && l.Output != "stderr" && l.Output != "stdout"
}

// WebConfig holds the browser (WebSocket) frontend settings.
type WebConfig struct {
	// Enabled starts the WebSocket listener alongside Telnet.
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	// Path is the WebSocket upgrade endpoint.
	Path string `mapstructure:"path"`
	// AllowedOrigins lists browser origins permitted to connect; empty
	// allows only same-host requests.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// IdleTimeout drops a client that sends nothing for this long.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the "host:port" listen address.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Records backends.
const (
	RecordsNone     = "none"
	RecordsMemory   = "memory"
	RecordsSQLite   = "sqlite"
	RecordsPostgres = "postgres"
)

// RecordsConfig selects where finished runs are recorded for the leaderboard.
type RecordsConfig struct {
	// Backend is one of none, memory, sqlite or postgres.
	Backend string `mapstructure:"backend"`
	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path"`
	// Leaderboard is how many top runs a player is shown.
	Leaderboard int `mapstructure:"leaderboard"`
}

// TimersConfig holds the fixed state timers, in seconds of simulation time.
type TimersConfig struct {
	TreasureReveal  float64 `mapstructure:"treasure_reveal"`
	TreasureDisplay float64 `mapstructure:"treasure_display"`
	BattleWin       float64 `mapstructure:"battle_win"`
	Lose            float64 `mapstructure:"lose"`
}

// CombatConfig holds the bullet-dodge tuning.
type CombatConfig struct {
	ArmingDelay          float64 `mapstructure:"arming_delay"`
	PlayerSpeed          float64 `mapstructure:"player_speed"`
	LateralBound         float64 `mapstructure:"lateral_bound"`
	HitRadius            float64 `mapstructure:"hit_radius"`
	SpawnTop             float64 `mapstructure:"spawn_top"`
	SpawnStagger         float64 `mapstructure:"spawn_stagger"`
	BottomBound          float64 `mapstructure:"bottom_bound"`
	FallBase             float64 `mapstructure:"fall_base"`
	FallPerDifficulty    float64 `mapstructure:"fall_per_difficulty"`
	BulletsBase          int     `mapstructure:"bullets_base"`
	BulletsPerDifficulty int     `mapstructure:"bullets_per_difficulty"`
}

// LampConfig holds the player's light.
type LampConfig struct {
	BrightRadius     float64 `mapstructure:"bright_radius"`
	DimRadius        float64 `mapstructure:"dim_radius"`
	PerLightSource   float64 `mapstructure:"per_light_source"`
	FlickerInterval  float64 `mapstructure:"flicker_interval"`
	FlickerAmplitude float64 `mapstructure:"flicker_amplitude"`
}

// GameConfig holds every gameplay tuning value.
type GameConfig struct {
	BaseSpeed            float64      `mapstructure:"base_speed"`
	TurnDegreesPerUnit   float64      `mapstructure:"turn_degrees_per_unit"`
	TurnAngle            float64      `mapstructure:"turn_angle"`
	FollowUpTreasureOdds int          `mapstructure:"follow_up_treasure_odds"`
	StartHealth          int          `mapstructure:"start_health"`
	StartDifficulty      int          `mapstructure:"start_difficulty"`
	RenderDepth          int          `mapstructure:"render_depth"`
	Timers               TimersConfig `mapstructure:"timers"`
	Combat               CombatConfig `mapstructure:"combat"`
	Lamp                 LampConfig   `mapstructure:"lamp"`
	// Seed fixes the gameplay random source; 0 seeds every playthrough from entropy.
	Seed uint64 `mapstructure:"seed"`
}

// ContentConfig locates the content-distribution policy.
type ContentConfig struct {
	// PolicyFile is a YAML policy document; empty uses the built-in weights.
	PolicyFile string `mapstructure:"policy_file"`
}

// FrontendConfig holds the tick driver and input settings shared by the
// telnet and terminal frontends.
type FrontendConfig struct {
	// TickRate is simulation ticks per second.
	TickRate int `mapstructure:"tick_rate"`
	// FrameRate is rendered frames per second; it must not exceed TickRate.
	FrameRate int `mapstructure:"frame_rate"`
	// HoldWindow is how long a key counts as held after its last repeat. It
	// must exceed the terminal's auto-repeat delay (commonly 500ms).
	HoldWindow time.Duration `mapstructure:"hold_window"`
	// FastForwardScale multiplies elapsed time while fast-forward is toggled.
	FastForwardScale float64 `mapstructure:"fast_forward_scale"`
	// CueBuffer is the per-session audio cue queue depth.
	CueBuffer int `mapstructure:"cue_buffer"`
}

// TickInterval returns the wall-clock duration of one tick.
//
// Precondition: TickRate > 0.
func (f FrontendConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(f.TickRate)
}

// TicksPerFrame returns how many ticks elapse between rendered frames.
//
// Precondition: FrameRate > 0.
func (f FrontendConfig) TicksPerFrame() int {
	n := f.TickRate / f.FrameRate
	if n < 1 {
		return 1
	}
	return n
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Game     GameConfig     `mapstructure:"game"`
	Content  ContentConfig  `mapstructure:"content"`
	Frontend FrontendConfig `mapstructure:"frontend"`
	Web      WebConfig      `mapstructure:"web"`
	Database DatabaseConfig `mapstructure:"database"`
	Records  RecordsConfig  `mapstructure:"records"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateFrontend(c.Frontend); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWeb(c.Web); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRecords(c.Records, c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Game.Crawler(dungeon.DefaultPolicy()).Validate(); err != nil {
		errs = append(errs, "game: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 0-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if t.MaxSessions < 0 {
		errs = append(errs, fmt.Sprintf("telnet.max_sessions must be >= 0, got %d", t.MaxSessions))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateFrontend(f FrontendConfig) error {
	var errs []string
	if f.TickRate < 1 || f.TickRate > 1000 {
		errs = append(errs, fmt.Sprintf("frontend.tick_rate must be 1-1000, got %d", f.TickRate))
	}
	if f.FrameRate < 1 || f.FrameRate > f.TickRate {
		errs = append(errs, fmt.Sprintf("frontend.frame_rate must be between 1 and tick_rate, got %d", f.FrameRate))
	}
	if f.HoldWindow <= 0 {
		errs = append(errs, "frontend.hold_window must be > 0")
	}
	if f.FastForwardScale < 1 {
		errs = append(errs, fmt.Sprintf("frontend.fast_forward_scale must be >= 1, got %v", f.FastForwardScale))
	}
	if f.CueBuffer < 1 {
		errs = append(errs, fmt.Sprintf("frontend.cue_buffer must be >= 1, got %d", f.CueBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWeb(w WebConfig) error {
	if !w.Enabled {
		return nil
	}
	var errs []string
	if w.Port < 0 || w.Port > 65535 {
		errs = append(errs, fmt.Sprintf("web.port must be 0-65535, got %d", w.Port))
	}
	if !strings.HasPrefix(w.Path, "/") {
		errs = append(errs, fmt.Sprintf("web.path must start with /, got %q", w.Path))
	}
	if w.IdleTimeout < 0 {
		errs = append(errs, "web.idle_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRecords(r RecordsConfig, db DatabaseConfig) error {
	var errs []string
	switch r.Backend {
	case RecordsNone, RecordsMemory:
	case RecordsSQLite:
		if r.SQLitePath == "" {
			errs = append(errs, "records.sqlite_path must be set for the sqlite backend")
		}
	case RecordsPostgres:
		if db.Host == "" || db.User == "" || db.Name == "" {
			errs = append(errs, "database.host, database.user and database.name must be set for the postgres backend")
		}
		if db.Port < 1 || db.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", db.Port))
		}
		if db.MinConns < 0 || db.MaxConns < db.MinConns {
			errs = append(errs, fmt.Sprintf("database.max_conns (%d) must be >= min_conns (%d) >= 0", db.MaxConns, db.MinConns))
		}
	default:
		errs = append(errs, fmt.Sprintf("records.backend must be one of [none, memory, sqlite, postgres], got %q", r.Backend))
	}
	if r.Leaderboard < 0 {
		errs = append(errs, fmt.Sprintf("records.leaderboard must be >= 0, got %d", r.Leaderboard))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return fmt.Errorf("logging.output must not be empty")
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		return fmt.Errorf("logging rotation limits must not be negative")
	}
	return nil
}

// Crawler converts the game section into a crawler configuration using policy.
func (g GameConfig) Crawler(policy dungeon.Policy) crawler.Config {
	return crawler.Config{
		BaseSpeed:            g.BaseSpeed,
		TurnDegreesPerUnit:   g.TurnDegreesPerUnit,
		TurnAngle:            g.TurnAngle,
		TreasureReveal:       g.Timers.TreasureReveal,
		TreasureDisplay:      g.Timers.TreasureDisplay,
		BattleWin:            g.Timers.BattleWin,
		Lose:                 g.Timers.Lose,
		FollowUpTreasureOdds: g.FollowUpTreasureOdds,
		StartHealth:          g.StartHealth,
		StartDifficulty:      g.StartDifficulty,
		RenderDepth:          g.RenderDepth,
		Combat: combat.Config{
			ArmingDelay:          g.Combat.ArmingDelay,
			PlayerSpeed:          g.Combat.PlayerSpeed,
			LateralBound:         g.Combat.LateralBound,
			HitRadius:            g.Combat.HitRadius,
			SpawnTop:             g.Combat.SpawnTop,
			SpawnStagger:         g.Combat.SpawnStagger,
			BottomBound:          g.Combat.BottomBound,
			FallBase:             g.Combat.FallBase,
			FallPerDifficulty:    g.Combat.FallPerDifficulty,
			BulletsBase:          g.Combat.BulletsBase,
			BulletsPerDifficulty: g.Combat.BulletsPerDifficulty,
		},
		Lamp: player.LampConfig{
			BrightRadius:     g.Lamp.BrightRadius,
			DimRadius:        g.Lamp.DimRadius,
			PerLightSource:   g.Lamp.PerLightSource,
			FlickerInterval:  g.Lamp.FlickerInterval,
			FlickerAmplitude: g.Lamp.FlickerAmplitude,
		},
		Policy: policy,
	}
}

// CrawlerConfig loads the content policy and returns the complete crawler
// configuration.
//
// Postcondition: Returns a validated crawler.Config or a non-nil error.
func (c Config) CrawlerConfig() (crawler.Config, error) {
	policy := dungeon.DefaultPolicy()
	if c.Content.PolicyFile != "" {
		p, err := dungeon.LoadPolicyFromFile(c.Content.PolicyFile)
		if err != nil {
			return crawler.Config{}, fmt.Errorf("loading content policy: %w", err)
		}
		policy = p
	}
	cfg := c.Game.Crawler(policy)
	if err := cfg.Validate(); err != nil {
		return crawler.Config{}, err
	}
	return cfg, nil
}

// Load reads configuration from a YAML file with environment variable overrides.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the configuration built from defaults and HALLCRAWL_
// environment overrides alone, for binaries run without a config file.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Default() (Config, error) {
	return LoadFromViper(NewViper())
}

// NewViper returns a Viper instance with defaults and HALLCRAWL_ environment
// overrides applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("HALLCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size_mb", 0)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)

	v.SetDefault("web.enabled", false)
	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 4080)
	v.SetDefault("web.path", "/play")
	v.SetDefault("web.allowed_origins", []string{})
	v.SetDefault("web.idle_timeout", "5m")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hallcrawl")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "hallcrawl")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "30m")

	v.SetDefault("records.backend", RecordsMemory)
	v.SetDefault("records.sqlite_path", "hallcrawl.db")
	v.SetDefault("records.leaderboard", 5)

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.max_sessions", 64)

	d := crawler.DefaultConfig()
	v.SetDefault("game.base_speed", d.BaseSpeed)
	v.SetDefault("game.turn_degrees_per_unit", d.TurnDegreesPerUnit)
	v.SetDefault("game.turn_angle", d.TurnAngle)
	v.SetDefault("game.follow_up_treasure_odds", d.FollowUpTreasureOdds)
	v.SetDefault("game.start_health", d.StartHealth)
	v.SetDefault("game.start_difficulty", d.StartDifficulty)
	v.SetDefault("game.render_depth", d.RenderDepth)
	v.SetDefault("game.seed", 0)

	v.SetDefault("game.timers.treasure_reveal", d.TreasureReveal)
	v.SetDefault("game.timers.treasure_display", d.TreasureDisplay)
	v.SetDefault("game.timers.battle_win", d.BattleWin)
	v.SetDefault("game.timers.lose", d.Lose)

	v.SetDefault("game.combat.arming_delay", d.Combat.ArmingDelay)
	v.SetDefault("game.combat.player_speed", d.Combat.PlayerSpeed)
	v.SetDefault("game.combat.lateral_bound", d.Combat.LateralBound)
	v.SetDefault("game.combat.hit_radius", d.Combat.HitRadius)
	v.SetDefault("game.combat.spawn_top", d.Combat.SpawnTop)
	v.SetDefault("game.combat.spawn_stagger", d.Combat.SpawnStagger)
	v.SetDefault("game.combat.bottom_bound", d.Combat.BottomBound)
	v.SetDefault("game.combat.fall_base", d.Combat.FallBase)
	v.SetDefault("game.combat.fall_per_difficulty", d.Combat.FallPerDifficulty)
	v.SetDefault("game.combat.bullets_base", d.Combat.BulletsBase)
	v.SetDefault("game.combat.bullets_per_difficulty", d.Combat.BulletsPerDifficulty)

	v.SetDefault("game.lamp.bright_radius", d.Lamp.BrightRadius)
	v.SetDefault("game.lamp.dim_radius", d.Lamp.DimRadius)
	v.SetDefault("game.lamp.per_light_source", d.Lamp.PerLightSource)
	v.SetDefault("game.lamp.flicker_interval", d.Lamp.FlickerInterval)
	v.SetDefault("game.lamp.flicker_amplitude", d.Lamp.FlickerAmplitude)

	v.SetDefault("content.policy_file", "")

	v.SetDefault("frontend.tick_rate", 60)
	v.SetDefault("frontend.frame_rate", 15)
	v.SetDefault("frontend.hold_window", "550ms")
	v.SetDefault("frontend.fast_forward_scale", 4.0)
	v.SetDefault("frontend.cue_buffer", 32)
}
