package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Helius HeliusConfig
	RPC    RPCConfig
	Cache  CacheConfig
	Server ServerConfig
	Log    LogConfig
}

type HeliusConfig struct {
	APIKey string
}

type RPCConfig struct {
	MainnetURLs []string
	DevnetURLs  []string
	Timeout     time.Duration
	PageSize    int
	MaxPages    int
	RPS         float64
	Burst       int
}

type CacheConfig struct {
	RedisURL  string
	TTL       time.Duration
	L1Entries int
}

type ServerConfig struct {
	ListenAddr string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Helius: HeliusConfig{
			APIKey: getEnv("HELIUS_API_KEY", ""),
		},
		RPC: RPCConfig{
			MainnetURLs: getEnvList("SOLANA_MAINNET_RPC_URLS", []string{"https://api.mainnet-beta.solana.com"}),
			DevnetURLs:  getEnvList("SOLANA_DEVNET_RPC_URLS", []string{"https://api.devnet.solana.com"}),
			Timeout:     getEnvDuration("RPC_TIMEOUT", 30*time.Second),
			PageSize:    getEnvInt("RPC_PAGE_SIZE", 1000),
			MaxPages:    getEnvInt("RPC_MAX_PAGES", 100),
			RPS:         getEnvFloat("RPC_RPS", 1),
			Burst:       getEnvInt("RPC_BURST", 1),
		},
		Cache: CacheConfig{
			RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
			TTL:       getEnvDuration("CACHE_TTL", 24*time.Hour),
			L1Entries: getEnvInt("CACHE_L1_ENTRIES", 1024),
		},
		Server: ServerConfig{
			ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.RPC.MainnetURLs) == 0 {
		return fmt.Errorf("SOLANA_MAINNET_RPC_URLS is required")
	}
	if len(c.RPC.DevnetURLs) == 0 {
		return fmt.Errorf("SOLANA_DEVNET_RPC_URLS is required")
	}
	if c.RPC.PageSize < 1 || c.RPC.PageSize > 1000 {
		return fmt.Errorf("RPC_PAGE_SIZE must be in 1..1000, got %d", c.RPC.PageSize)
	}
	if c.RPC.MaxPages < 1 {
		return fmt.Errorf("RPC_MAX_PAGES must be positive, got %d", c.RPC.MaxPages)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

// EndpointsFor returns the chain RPC endpoint set for a network name.
func (c *Config) EndpointsFor(network string) []string {
	if network == "mainnet" {
		return c.RPC.MainnetURLs
	}
	return c.RPC.DevnetURLs
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
