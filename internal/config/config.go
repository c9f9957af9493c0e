package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Script struct {
		ID  string `yaml:"id"`
		Dir string `yaml:"dir"`
		TTL string `yaml:"ttl"`
	} `yaml:"script"`
	Experience struct {
		RevealInterval string `yaml:"revealInterval"`
	} `yaml:"experience"`
	Flags struct {
		// Backend is one of memory, redis, sqlite, postgres.
		Backend string `yaml:"backend" env:"FLAGS_BACKEND"`
	} `yaml:"flags"`
	Telegram struct {
		Token string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
		Debug bool   `yaml:"debug"`
		// ImageBaseURL prefixes script image names when the bot sends photos.
		ImageBaseURL string `yaml:"imageBaseURL" env:"TELEGRAM_IMAGE_BASE_URL"`
	} `yaml:"telegram"`
}

// Load reads YAML config from path. Set environment variables (PORT,
// REDIS_ADDR, POSTGRES_URL, FLAGS_BACKEND, TELEGRAM_BOT_TOKEN,
// TELEGRAM_IMAGE_BASE_URL) override the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
