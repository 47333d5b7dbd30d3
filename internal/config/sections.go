package config

import "time"

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr" validate:"required"`
	// WSAddr serves the event websocket; empty disables it.
	WSAddr string `mapstructure:"ws_addr"`
}

type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite memory"`
	URL  string `mapstructure:"url" validate:"required_if=Type postgres"`
	Path string `mapstructure:"path" validate:"required_if=Type sqlite"`
}

type JournalConfig struct {
	// Path of a standalone sqlite journal. Empty keeps the journal in the
	// save database (or in memory for the memory store).
	Path string `mapstructure:"path"`
}

type ContentConfig struct {
	// Dir overrides the embedded content tables.
	Dir string `mapstructure:"dir"`
}

type GameConfig struct {
	HourDuration time.Duration `mapstructure:"hour_duration" validate:"gt=0"`
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
	Slot         string        `mapstructure:"slot" validate:"required,max=64"`
	Seed         uint64        `mapstructure:"seed"`
}

type NamesConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Rate    float64       `mapstructure:"rate" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json console"`
}
