package config

import "time"

func SetDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = ":8080"
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "memory"
	}

	if cfg.Game.HourDuration == 0 {
		cfg.Game.HourDuration = 2 * time.Second
	}
	if cfg.Game.TickInterval == 0 {
		cfg.Game.TickInterval = time.Second
	}
	if cfg.Game.Slot == "" {
		cfg.Game.Slot = "default"
	}

	if cfg.Names.Timeout == 0 {
		cfg.Names.Timeout = 3 * time.Second
	}
	if cfg.Names.Rate == 0 {
		cfg.Names.Rate = 1
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Default returns a configuration built from defaults only.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}
