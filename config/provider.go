package config

import "github.com/google/wire"

// ProviderSet is the wire provider set for the config package. It provides
// the root *Config and extracts the sub-configurations other packages'
// providers need directly, so wire.Build never has to thread the whole
// tree through by hand.
var ProviderSet = wire.NewSet(
	provideConfig,
	ProvideSecurityConfig,
	ProvideMetricsConfig,
	ProvideConsulConfig,
	ProvideChatConfig,
)

func provideConfig() (*Config, error) {
	return Load(nil)
}

// ProvideSecurityConfig provides the plug-in sandbox configuration.
func ProvideSecurityConfig(cfg *Config) *SecurityConfig { return cfg.Security }

// ProvideMetricsConfig provides the metrics-collector configuration.
func ProvideMetricsConfig(cfg *Config) *MetricsConfig { return cfg.Metrics }

// ProvideConsulConfig provides the cross-zone directory configuration.
func ProvideConsulConfig(cfg *Config) *ConsulConfig { return cfg.Consul }

// ProvideChatConfig provides the illustrative chat module's configuration.
func ProvideChatConfig(cfg *Config) *ChatConfig { return cfg.Chat }
