package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the game binaries
type Config struct {
	Logging    LoggingConfig           `mapstructure:"logging"`
	History    HistoryConfig           `mapstructure:"history"`
	Players    map[string]PlayerConfig `mapstructure:"players"`
	Server     ServerConfig            `mapstructure:"server"`
	Monitoring MonitoringConfig        `mapstructure:"monitoring"`
}

// LoggingConfig controls the global zerolog setup
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HistoryConfig selects where finished games are written
type HistoryConfig struct {
	// Type is "file" or "none"
	Type    string `mapstructure:"type"`
	BaseDir string `mapstructure:"base_dir"`
}

// PlayerConfig is the profile of one player type
type PlayerConfig struct {
	// Strategy names the move source, see player.Strategies
	Strategy string `mapstructure:"strategy"`
	// MaxMoves ends the game after this many accepted moves; 0 means unlimited
	MaxMoves int `mapstructure:"max_moves"`
	// LogLevel is the default level when this player type runs
	LogLevel string `mapstructure:"log_level"`
	// HistoryDir is relative to history.base_dir
	HistoryDir string `mapstructure:"history_dir"`
}

type ServerConfig struct {
	GRPC  GRPCServerConfig `mapstructure:"grpc"`
	HTTP  HTTPServerConfig `mapstructure:"http"`
	Games GamesConfig      `mapstructure:"games"`
}

type GRPCServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	MaxGames              int    `mapstructure:"max_games"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
}

// HTTPServerConfig serves the spectator websocket and the MCP endpoint
type HTTPServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// GamesConfig controls the lifetime of remote games
type GamesConfig struct {
	// Player is the profile remote games are recorded under
	Player          string        `mapstructure:"player"`
	FinishedTTL     time.Duration `mapstructure:"finished_ttl"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type MonitoringConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

var (
	cfg *Config
	v   *viper.Viper
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
	"critical": true, "fatal": true, "panic": true, "disabled": true,
}

// setViperDefaults sets default values for all configuration options
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("history.type", "file")
	v.SetDefault("history.base_dir", "./data/game_history")

	v.SetDefault("players.human.strategy", "human")
	v.SetDefault("players.human.max_moves", 100000)
	v.SetDefault("players.human.log_level", "info")
	v.SetDefault("players.human.history_dir", "human")

	v.SetDefault("players.bot_v1.strategy", "first_available")
	v.SetDefault("players.bot_v1.max_moves", 500)
	v.SetDefault("players.bot_v1.log_level", "warn")
	v.SetDefault("players.bot_v1.history_dir", "bot/v1")

	v.SetDefault("players.test.strategy", "cycle")
	v.SetDefault("players.test.max_moves", 5)
	v.SetDefault("players.test.log_level", "debug")
	v.SetDefault("players.test.history_dir", "test")

	v.SetDefault("players.admin.strategy", "human")
	v.SetDefault("players.admin.max_moves", 0)
	v.SetDefault("players.admin.log_level", "debug")
	v.SetDefault("players.admin.history_dir", "")

	// Games played over gRPC or MCP; moves arrive from the client
	v.SetDefault("players.remote.strategy", "remote")
	v.SetDefault("players.remote.max_moves", 0)
	v.SetDefault("players.remote.log_level", "info")
	v.SetDefault("players.remote.history_dir", "remote")

	v.SetDefault("server.grpc.host", "0.0.0.0")
	v.SetDefault("server.grpc.port", 50051)
	v.SetDefault("server.grpc.max_games", 100)
	v.SetDefault("server.grpc.enable_reflection", true)
	v.SetDefault("server.grpc.graceful_shutdown_delay", 5)

	v.SetDefault("server.http.enabled", true)
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)

	v.SetDefault("server.games.player", "remote")
	v.SetDefault("server.games.finished_ttl", "10m")
	v.SetDefault("server.games.idle_timeout", "30m")
	v.SetDefault("server.games.cleanup_interval", "1m")

	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.interval", "30s")
}

// Init initializes the configuration system
func Init(configPath string) error {
	v = viper.New()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/go2048")
	}

	// G2048_LOGGING_LEVEL overrides logging.level and so on
	v.SetEnvPrefix("G2048")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath == "" && !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// An explicit path that does not exist falls back to defaults
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// Player returns the profile for a player type
func (c *Config) Player(name string) (PlayerConfig, error) {
	p, ok := c.Players[name]
	if !ok {
		return PlayerConfig{}, fmt.Errorf("player type %q not accepted, choose one of %s",
			name, strings.Join(c.PlayerNames(), ", "))
	}
	return p, nil
}

// PlayerNames lists the configured player types in sorted order
func (c *Config) PlayerNames() []string {
	names := make([]string, 0, len(c.Players))
	for name := range c.Players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set overrides key for the life of the process. Overrides take precedence
// over the file, so they survive a WatchConfig reload.
func Set(key string, value interface{}) {
	v.Set(key, value)
	_ = v.Unmarshal(cfg)
}

// ConfigFilePath returns the path of the loaded config file, empty when
// running on defaults
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange receives the
// reloaded config; a reload that fails validation is dropped.
func WatchConfig(onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil {
			return
		}
		if err := Validate(next); err != nil {
			return
		}
		cfg = next
		if onChange != nil {
			onChange(next)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json")
	}

	switch c.History.Type {
	case "file":
		if c.History.BaseDir == "" {
			return fmt.Errorf("history.base_dir must be set for file history")
		}
	case "none":
	default:
		return fmt.Errorf("history.type must be file or none")
	}

	if len(c.Players) == 0 {
		return fmt.Errorf("at least one player type must be configured")
	}
	for name, p := range c.Players {
		if p.Strategy == "" {
			return fmt.Errorf("players.%s.strategy must be set", name)
		}
		if p.MaxMoves < 0 {
			return fmt.Errorf("players.%s.max_moves must be non-negative", name)
		}
		if p.LogLevel != "" && !validLogLevels[strings.ToLower(p.LogLevel)] {
			return fmt.Errorf("players.%s.log_level %q is not a known level", name, p.LogLevel)
		}
	}

	if c.Server.GRPC.Port <= 0 || c.Server.GRPC.Port > 65535 {
		return fmt.Errorf("server.grpc.port must be between 1 and 65535")
	}
	if c.Server.GRPC.MaxGames <= 0 {
		return fmt.Errorf("server.grpc.max_games must be positive")
	}
	if c.Server.GRPC.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.grpc.graceful_shutdown_delay must be non-negative")
	}
	if c.Server.HTTP.Enabled && (c.Server.HTTP.Port <= 0 || c.Server.HTTP.Port > 65535) {
		return fmt.Errorf("server.http.port must be between 1 and 65535")
	}
	if c.Server.Games.CleanupInterval <= 0 {
		return fmt.Errorf("server.games.cleanup_interval must be positive")
	}
	if c.Server.Games.FinishedTTL < 0 || c.Server.Games.IdleTimeout < 0 {
		return fmt.Errorf("server.games TTLs must be non-negative")
	}

	if _, ok := c.Players[c.Server.Games.Player]; !ok {
		return fmt.Errorf("server.games.player %q is not a configured player type", c.Server.Games.Player)
	}

	if c.Monitoring.Enabled && c.Monitoring.Interval <= 0 {
		return fmt.Errorf("monitoring.interval must be positive")
	}

	return nil
}
