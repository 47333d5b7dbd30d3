package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. OUTPOST_SERVER_HTTP_ADDR.
const EnvPrefix = "OUTPOST"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Content  ContentConfig  `mapstructure:"content"`
	Game     GameConfig     `mapstructure:"game"`
	Names    NamesConfig    `mapstructure:"names"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Load reads configuration with priority env > config file > defaults.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("outpost")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// OUTPOST_DB_DSN is the name the model generator reads.
	if dsn := strings.TrimSpace(os.Getenv("OUTPOST_DB_DSN")); dsn != "" && !v.IsSet("database.url") {
		v.Set("database.url", dsn)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	SetDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so every leaf
// is registered up front to make env-only configuration work.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.http_addr", "server.ws_addr",
		"database.type", "database.url", "database.path",
		"journal.path",
		"content.dir",
		"game.hour_duration", "game.tick_interval", "game.slot", "game.seed",
		"names.url", "names.timeout", "names.rate",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}
