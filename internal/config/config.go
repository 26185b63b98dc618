package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional botkeeper.yaml file. Every field has a default and
// a missing file is not an error.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Presence PresenceConfig `yaml:"presence"`
}

type BotConfig struct {
	// Path to the bot program. Relative paths are joined with the directory
	// containing the botkeeper executable.
	Path string `yaml:"path"`

	// RestartSchedule is an optional cron expression (5-field, or a
	// descriptor like @daily). When set, the running bot is asked to exit
	// at each firing and is relaunched.
	RestartSchedule string `yaml:"restart_schedule"`
}

type LogConfig struct {
	// File receives timestamped lifecycle lines, append-only.
	File string `yaml:"file"`
}

type PresenceConfig struct {
	// RedisURL enables status publishing when set (redis:// url).
	RedisURL string `yaml:"redis_url"`

	// BotID keys the status record. Defaults to the bot program's base name.
	BotID string `yaml:"bot_id"`

	Heartbeat  string `yaml:"heartbeat"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

func Default() Config {
	return Config{
		Bot: BotConfig{
			Path: "bot/app",
		},
		Presence: PresenceConfig{
			Heartbeat: "5s",
		},
	}
}

func (c Config) WithDefaults() Config {
	out := c
	def := Default()

	if strings.TrimSpace(out.Bot.Path) == "" {
		out.Bot.Path = def.Bot.Path
	}
	if strings.TrimSpace(out.Presence.Heartbeat) == "" {
		out.Presence.Heartbeat = def.Presence.Heartbeat
	}
	if strings.TrimSpace(out.Presence.BotID) == "" {
		out.Presence.BotID = filepath.Base(out.Bot.Path)
	}
	if out.Presence.TTLSeconds <= 0 {
		ttl := int((out.HeartbeatInterval() * 3) / time.Second)
		if ttl < 15 {
			ttl = 15
		}
		out.Presence.TTLSeconds = ttl
	}
	return out
}

// HeartbeatInterval parses presence.heartbeat, falling back to 5s.
func (c Config) HeartbeatInterval() time.Duration {
	text := strings.TrimSpace(c.Presence.Heartbeat)
	if text == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(text)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

func Load(path string) (Config, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		p = "botkeeper.yaml"
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default().WithDefaults(), nil
		}
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", p, err)
	}
	return cfg.WithDefaults(), nil
}
