// Package config loads the zone server's runtime configuration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration tree for the module runtime.
type Config struct {
	// Mode names the module discovery mode ("builtin" by default). Path is
	// a plug-in directory, and Includes/Excludes are module-name filters.
	// These four are loaded from configuration only: nothing in this
	// repository reads them, and the zone server loads just the built-in
	// modules it registers.
	Mode     string   `json:"mode" yaml:"mode"`
	Path     string   `json:"path" yaml:"path"`
	Includes []string `json:"includes" yaml:"includes"`
	Excludes []string `json:"excludes" yaml:"excludes"`

	// ModuleConfigFile is the path to the XML-described module list
	// consumed by the external module-configuration loader. The core
	// does not parse this file itself; it is surfaced for that collaborator.
	ModuleConfigFile string `json:"module_config_file" yaml:"module_config_file"`

	// ReuseDelaySeconds is how long a freed player ID must sit idle before
	// it may be recycled. It is surfaced for a player-ID allocator; this
	// repository has none and does not read it.
	ReuseDelaySeconds int `json:"reuse_delay_seconds" yaml:"reuse_delay_seconds"`

	MaxModules        int    `json:"max_modules" yaml:"max_modules"`
	LoadTimeout       string `json:"load_timeout" yaml:"load_timeout"`
	InitTimeout       string `json:"init_timeout" yaml:"init_timeout"`
	DependencyTimeout string `json:"dependency_timeout" yaml:"dependency_timeout"`

	Security *SecurityConfig `json:"security" yaml:"security"`
	Metrics  *MetricsConfig  `json:"metrics" yaml:"metrics"`
	Consul   *ConsulConfig   `json:"consul" yaml:"consul"`
	Chat     *ChatConfig     `json:"chat" yaml:"chat"`
}

// SecurityConfig gates plug-in package loading.
type SecurityConfig struct {
	EnableSandbox     bool     `json:"enable_sandbox" yaml:"enable_sandbox"`
	AllowedPaths      []string `json:"allowed_paths" yaml:"allowed_paths"`
	BlockedExtensions []string `json:"blocked_extensions" yaml:"blocked_extensions"`
	RequireSignature  bool     `json:"require_signature" yaml:"require_signature"`
	AllowUnsafe       bool     `json:"allow_unsafe" yaml:"allow_unsafe"`
}

// MetricsConfig configures the module manager's metrics collector.
type MetricsConfig struct {
	Enabled       bool           `json:"enabled" yaml:"enabled"`
	FlushInterval string         `json:"flush_interval" yaml:"flush_interval"`
	Storage       *StorageConfig `json:"storage" yaml:"storage"`
}

// StorageConfig selects where collected metrics snapshots land.
type StorageConfig struct {
	Type      string `json:"type" yaml:"type"` // "memory", "redis", "auto"
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
	RedisAddr string `json:"redis_addr" yaml:"redis_addr"`
}

// ConsulConfig configures the cross-zone directory client.
type ConsulConfig struct {
	Address string `json:"address" yaml:"address"`
	Scheme  string `json:"scheme" yaml:"scheme"`
}

// ChatConfig is illustrative, per-module configuration consumed through
// the config manager interface rather than the core broker — the core
// only cares that it can be handed to a module at Load time.
type ChatConfig struct {
	FloodLimit      int    `json:"flood_limit" yaml:"flood_limit"`
	FloodShutup     string `json:"flood_shutup" yaml:"flood_shutup"`
	CommandLimit    int    `json:"command_limit" yaml:"command_limit"`
	MessageReliable bool   `json:"message_reliable" yaml:"message_reliable"`
	FilterMode      string `json:"filter_mode" yaml:"filter_mode"`
}

// Validate checks invariants that the loaders below don't already enforce.
func (c *Config) Validate() error {
	if c.MaxModules <= 0 {
		return fmt.Errorf("max_modules must be greater than 0, got: %d", c.MaxModules)
	}
	timeouts := map[string]string{
		"load_timeout":       c.LoadTimeout,
		"init_timeout":       c.InitTimeout,
		"dependency_timeout": c.DependencyTimeout,
	}
	for name, t := range timeouts {
		if t != "" {
			if _, err := time.ParseDuration(t); err != nil {
				return fmt.Errorf("invalid %s: %v", name, err)
			}
		}
	}
	return nil
}

// Load reads configuration from environment variables and an optional
// config file, applying the zone server's defaults.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix("ZONE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Mode:              getStringWithDefault(v, "module.mode", "builtin"),
		Path:              getStringWithDefault(v, "module.path", "./modules"),
		Includes:          v.GetStringSlice("module.includes"),
		Excludes:          v.GetStringSlice("module.excludes"),
		ModuleConfigFile:  getStringWithDefault(v, "module.config_file", ""),
		ReuseDelaySeconds: getIntWithDefault(v, "module.reuse_delay_seconds", 10),
		MaxModules:        getIntWithDefault(v, "module.max_modules", 64),
		LoadTimeout:       getStringWithDefault(v, "module.load_timeout", "30s"),
		InitTimeout:       getStringWithDefault(v, "module.init_timeout", "60s"),
		DependencyTimeout: getStringWithDefault(v, "module.dependency_timeout", "15s"),
		Security:          loadSecurityConfig(v),
		Metrics:           loadMetricsConfig(v),
		Consul:            loadConsulConfig(v),
		Chat:              loadChatConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid module config: %w", err)
	}
	return cfg, nil
}

func loadSecurityConfig(v *viper.Viper) *SecurityConfig {
	return &SecurityConfig{
		EnableSandbox:     getBoolWithDefault(v, "module.security.enable_sandbox", false),
		AllowedPaths:      v.GetStringSlice("module.security.allowed_paths"),
		BlockedExtensions: getStringSliceWithDefault(v, "module.security.blocked_extensions", []string{".exe", ".bat", ".cmd"}),
		RequireSignature:  getBoolWithDefault(v, "module.security.require_signature", false),
		AllowUnsafe:       getBoolWithDefault(v, "module.security.allow_unsafe", false),
	}
}

func loadMetricsConfig(v *viper.Viper) *MetricsConfig {
	return &MetricsConfig{
		Enabled:       getBoolWithDefault(v, "module.metrics.enabled", true),
		FlushInterval: getStringWithDefault(v, "module.metrics.flush_interval", "30s"),
		Storage: &StorageConfig{
			Type:      getStringWithDefault(v, "module.metrics.storage.type", "memory"),
			KeyPrefix: getStringWithDefault(v, "module.metrics.storage.key_prefix", "zone_modules"),
			RedisAddr: getStringWithDefault(v, "module.metrics.storage.redis_addr", ""),
		},
	}
}

func loadConsulConfig(v *viper.Viper) *ConsulConfig {
	if !v.IsSet("module.consul.address") {
		return nil
	}
	return &ConsulConfig{
		Address: getStringWithDefault(v, "module.consul.address", "127.0.0.1:8500"),
		Scheme:  getStringWithDefault(v, "module.consul.scheme", "http"),
	}
}

func loadChatConfig(v *viper.Viper) *ChatConfig {
	return &ChatConfig{
		FloodLimit:      getIntWithDefault(v, "chat.flood_limit", 10),
		FloodShutup:     getStringWithDefault(v, "chat.flood_shutup", "60s"),
		CommandLimit:    getIntWithDefault(v, "chat.command_limit", 5),
		MessageReliable: getBoolWithDefault(v, "chat.message_reliable", true),
		FilterMode:      getStringWithDefault(v, "chat.filter_mode", "warn"),
	}
}

func getStringWithDefault(v *viper.Viper, key, defaultValue string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return defaultValue
}

func getIntWithDefault(v *viper.Viper, key string, defaultValue int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return defaultValue
}

func getBoolWithDefault(v *viper.Viper, key string, defaultValue bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return defaultValue
}

func getStringSliceWithDefault(v *viper.Viper, key string, defaultValue []string) []string {
	if v.IsSet(key) {
		return v.GetStringSlice(key)
	}
	return defaultValue
}

// ParseDurationOrDefault parses a duration string, falling back silently.
func ParseDurationOrDefault(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntOrDefault is a small helper used by modules reading loosely
// typed plugin configuration maps.
func ParseIntOrDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}
