// Copyright (c) 2026 Meng Huang (mhboy@outlook.com)
// This package is licensed under a MIT license that can be found in the LICENSE file.

// Package config loads the configuration of the oneshot command.
//
// Sources, highest precedence first: command line flags, ONESHOT_*
// environment variables, the YAML configuration file, defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ModeBlocking selects the BlockingServer.
	ModeBlocking = "blocking"
	// ModeReactor selects the ReactorServer.
	ModeReactor = "reactor"
)

// Config is the configuration of the oneshot command.
type Config struct {
	// Mode selects the concurrency model: blocking or reactor.
	Mode string `mapstructure:"mode" validate:"required,oneof=blocking reactor"`

	// Address is the IPv4 address to listen on.
	Address string `mapstructure:"address" validate:"required,ip4_addr"`

	// Port is the TCP port to listen on.
	Port uint16 `mapstructure:"port"`

	// ReusePort sets SO_REUSEADDR and SO_REUSEPORT on the listening socket.
	ReusePort bool `mapstructure:"reuse_port"`

	// ReadBufferSize is the per read chunk size; 0 keeps the server default.
	ReadBufferSize int `mapstructure:"read_buffer_size" validate:"gte=0"`

	// PollTimeout bounds a multiplexer wait of the reactor; negative blocks.
	PollTimeout time.Duration `mapstructure:"poll_timeout"`

	// Delimiter ends a request for the echo handler. Empty replies on the
	// first read.
	Delimiter string `mapstructure:"delimiter"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`

	// Format is text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"mode":             "mode",
	"address":          "address",
	"port":             "port",
	"reuse-port":       "reuse_port",
	"read-buffer-size": "read_buffer_size",
	"poll-timeout":     "poll_timeout",
	"delimiter":        "delimiter",
	"log-level":        "logging.level",
	"log-format":       "logging.format",
}

// RegisterFlags adds the configuration flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("mode", ModeReactor, "concurrency model: blocking or reactor")
	flags.String("address", "0.0.0.0", "IPv4 address to listen on")
	flags.Uint16("port", 1111, "TCP port to listen on")
	flags.Bool("reuse-port", false, "set SO_REUSEADDR and SO_REUSEPORT")
	flags.Int("read-buffer-size", 0, "bytes read by a single read call")
	flags.Duration("poll-timeout", 100*time.Millisecond, "reactor poll timeout")
	flags.String("delimiter", "", "request delimiter of the echo handler")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "text", "log format: text or json")
}

// Load loads configuration from flags, environment, the file at configPath
// and defaults, then validates it. configPath and flags may be empty.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ONESHOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeReactor)
	v.SetDefault("address", "0.0.0.0")
	v.SetDefault("port", 1111)
	v.SetDefault("reuse_port", false)
	v.SetDefault("read_buffer_size", 0)
	v.SetDefault("poll_timeout", 100*time.Millisecond)
	v.SetDefault("delimiter", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
