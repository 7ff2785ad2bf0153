package metrics

import (
	"time"

	"github.com/google/wire"

	"github.com/gigamon-dev/SubspaceServer-sub008/config"
)

// ProviderSet is the wire provider set for the metrics package.
var ProviderSet = wire.NewSet(ProvideCollector)

// ProvideCollector builds a Collector per cfg, returning a disabled
// no-op collector when metrics are turned off.
func ProvideCollector(cfg *config.MetricsConfig) (*Collector, error) {
	if cfg == nil || !cfg.Enabled {
		return NewDisabled(), nil
	}
	interval := config.ParseDurationOrDefault(cfg.FlushInterval, 30*time.Second)
	return New(interval), nil
}
