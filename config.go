package mintr

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Network       string        `yaml:"network"`
	RPC           []string      `yaml:"rpc"`
	Keystore      string        `yaml:"keystore"`
	DbPath        string        `yaml:"db"`
	MaxRetries    int           `yaml:"maxRetries"`
	RetryDelay    time.Duration `yaml:"retryDelay"`
	RPCTimeout    time.Duration `yaml:"rpcTimeout"`
	ConfirmWait   time.Duration `yaml:"confirmTimeout"`
	PollInterval  time.Duration `yaml:"pollInterval"`
	RateLimit     float64       `yaml:"rateLimit"`
	RetryOn429    *bool         `yaml:"retryOnRateLimit"`
	FreezeEnabled *bool         `yaml:"freezeAuthority"`
}

func DefaultConfig() Config {
	dir := ConfigDir()
	on := true
	return Config{
		Network:       DefaultNetwork,
		Keystore:      filepath.Join(dir, "keypair.json"),
		DbPath:        filepath.Join(dir, "ledger.db"),
		MaxRetries:    3,
		RetryDelay:    time.Second,
		RPCTimeout:    60 * time.Second,
		ConfirmWait:   90 * time.Second,
		PollInterval:  30 * time.Second,
		RateLimit:     8,
		RetryOn429:    &on,
		FreezeEnabled: &on,
	}
}

func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mintr")
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = filepath.Join(ConfigDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cfg, err
		}
		Merge(&cfg, parsed)
	}

	ApplyEnvOverrides(&cfg)
	return cfg, nil
}

func Merge(dst *Config, src Config) {
	if src.Network != "" {
		dst.Network = src.Network
	}
	if len(src.RPC) > 0 {
		dst.RPC = src.RPC
	}
	if src.Keystore != "" {
		dst.Keystore = src.Keystore
	}
	if src.DbPath != "" {
		dst.DbPath = src.DbPath
	}
	if src.MaxRetries > 0 {
		dst.MaxRetries = src.MaxRetries
	}
	if src.RetryDelay > 0 {
		dst.RetryDelay = src.RetryDelay
	}
	if src.RPCTimeout > 0 {
		dst.RPCTimeout = src.RPCTimeout
	}
	if src.ConfirmWait > 0 {
		dst.ConfirmWait = src.ConfirmWait
	}
	if src.PollInterval > 0 {
		dst.PollInterval = src.PollInterval
	}
	if src.RateLimit > 0 {
		dst.RateLimit = src.RateLimit
	}
	if src.RetryOn429 != nil {
		dst.RetryOn429 = src.RetryOn429
	}
	if src.FreezeEnabled != nil {
		dst.FreezeEnabled = src.FreezeEnabled
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("MINTR_NETWORK")); v != "" {
		cfg.Network = v
	}
	if v := strings.TrimSpace(os.Getenv("MINTR_RPC")); v != "" {
		cfg.RPC = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("MINTR_KEYSTORE")); v != "" {
		cfg.Keystore = v
	}
	if v := strings.TrimSpace(os.Getenv("MINTR_DB")); v != "" {
		cfg.DbPath = v
	}
	if v := strings.TrimSpace(os.Getenv("MINTR_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MINTR_POLL_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
}

// ResolveNetwork applies RPC overrides to the selected network's endpoint list.
func (c Config) ResolveNetwork() (Network, error) {
	n, err := LookupNetwork(c.Network)
	if err != nil {
		return Network{}, err
	}
	if len(c.RPC) > 0 {
		n.Endpoints = append([]string(nil), c.RPC...)
	}
	return n, nil
}

func (c Config) ConnOptions() ConnOptions {
	return ConnOptions{
		Timeout:          c.RPCTimeout,
		RetryOnRateLimit: c.RetryOn429 == nil || *c.RetryOn429,
		RateLimit:        c.RateLimit,
	}
}

func (c Config) RetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries: c.MaxRetries,
		BaseDelay:  c.RetryDelay,
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
