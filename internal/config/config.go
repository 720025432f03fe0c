// Package config loads runtime settings from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Controller holds the per-controller input settings handed to the backend.
type Controller struct {
	DeadzoneLeft     float32 `mapstructure:"deadzone_left"`
	DeadzoneRight    float32 `mapstructure:"deadzone_right"`
	TriggerThreshold float32 `mapstructure:"trigger_threshold"`
}

type NATS struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type Config struct {
	Listen        string        `mapstructure:"listen"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	AssignTimeout time.Duration `mapstructure:"assign_timeout"`
	Tray          bool          `mapstructure:"tray"`
	Debug         bool          `mapstructure:"debug"`
	Controller    Controller    `mapstructure:"controller"`
	NATS          NATS          `mapstructure:"nats"`
}

// Flags returns the command line flag set understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("padremap", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to a config file (yaml, toml or json)")
	fs.StringP("listen", "l", ":8080", "HTTP listen address")
	fs.Duration("poll-interval", 16*time.Millisecond, "gamepad polling interval")
	fs.Duration("assign-timeout", 10*time.Second, "give up an assignment after this long")
	fs.Bool("tray", runtime.GOOS == "windows", "show a system tray icon")
	fs.Bool("debug", false, "enable debug logging")
	fs.Float32("trigger-threshold", 0.5, "trigger value counted as a press")
	fs.Float32("deadzone-left", 0.05, "left stick deadzone")
	fs.Float32("deadzone-right", 0.05, "right stick deadzone")
	fs.String("nats-url", "", "publish gamepad events to this NATS server")
	fs.String("nats-subject", "gamepads", "subject prefix for gamepad events")
	return fs
}

var flagKeys = map[string]string{
	"listen":            "listen",
	"poll-interval":     "poll_interval",
	"assign-timeout":    "assign_timeout",
	"tray":              "tray",
	"debug":             "debug",
	"trigger-threshold": "controller.trigger_threshold",
	"deadzone-left":     "controller.deadzone_left",
	"deadzone-right":    "controller.deadzone_right",
	"nats-url":          "nats.url",
	"nats-subject":      "nats.subject",
}

// Load parses args into a Config. Flags override PADREMAP_* environment
// variables, which override the config file.
func Load(args []string) (*Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("padremap")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if cfg.AssignTimeout <= 0 {
		return errors.New("assign timeout must be positive")
	}
	if t := cfg.Controller.TriggerThreshold; t < 0 || t > 1 {
		return errors.New("trigger threshold must be within 0..1")
	}
	for _, dz := range []float32{cfg.Controller.DeadzoneLeft, cfg.Controller.DeadzoneRight} {
		if dz < 0 || dz >= 1 {
			return errors.New("deadzone must be within 0..1")
		}
	}
	return nil
}
