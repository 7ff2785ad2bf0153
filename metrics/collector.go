// Package metrics collects counters for broker and module-manager
// activity: interface registrations, callback dispatch outcomes, module
// load/unload counts, and arena attach/detach counts. Storage defaults to
// an in-memory map and can be upgraded to Redis for cross-process
// aggregation.
package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gigamon-dev/SubspaceServer-sub008/logging"
)

// Storage is where periodic snapshots land.
type Storage interface {
	Save(ctx context.Context, key string, snapshot map[string]int64) error
}

// memoryStorage keeps the latest snapshot per key in process memory; this
// is the default and requires no configuration.
type memoryStorage struct {
	mu        sync.Mutex
	snapshots map[string]map[string]int64
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{snapshots: make(map[string]map[string]int64)}
}

func (s *memoryStorage) Save(_ context.Context, key string, snapshot map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = snapshot
	return nil
}

// redisStorage persists snapshots as Redis hashes under keyPrefix:key.
type redisStorage struct {
	client    *redis.Client
	keyPrefix string
}

func (s *redisStorage) Save(ctx context.Context, key string, snapshot map[string]int64) error {
	fields := make(map[string]any, len(snapshot))
	for k, v := range snapshot {
		fields[k] = v
	}
	return s.client.HSet(ctx, fmt.Sprintf("%s:%s", s.keyPrefix, key), fields).Err()
}

// Collector accumulates counters and periodically flushes a snapshot to
// Storage. It implements both broker.Metrics and module.Metrics so one
// instance can be wired into every broker and the manager.
type Collector struct {
	enabled bool
	storage Storage

	mu       sync.Mutex
	counters map[string]int64

	flushInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewDisabled returns a Collector whose methods are all no-ops; used when
// Config.Metrics.Enabled is false so the rest of the core never has to
// nil-check its metrics sink.
func NewDisabled() *Collector {
	return &Collector{enabled: false, counters: make(map[string]int64)}
}

// New returns an enabled Collector backed by in-memory storage, flushing
// a snapshot every flushInterval.
func New(flushInterval time.Duration) *Collector {
	c := &Collector{
		enabled:       true,
		storage:       newMemoryStorage(),
		counters:      make(map[string]int64),
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
	}
	go c.flushLoop()
	return c
}

// UpgradeToRedis swaps the collector's storage backend to Redis, for
// deployments that want cross-process metrics aggregation. It pings
// client first and returns an error without mutating state if that fails.
func (c *Collector) UpgradeToRedis(ctx context.Context, client *redis.Client, keyPrefix string) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("metrics: redis ping failed: %w", err)
	}
	c.mu.Lock()
	c.storage = &redisStorage{client: client, keyPrefix: keyPrefix}
	c.mu.Unlock()
	return nil
}

func (c *Collector) inc(name string) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	c.counters[name]++
	c.mu.Unlock()
}

func (c *Collector) flushLoop() {
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stop:
			return
		}
	}
}

func (c *Collector) flush() {
	c.mu.Lock()
	snapshot := make(map[string]int64, len(c.counters))
	for k, v := range c.counters {
		snapshot[k] = v
	}
	c.mu.Unlock()

	if err := c.storage.Save(context.Background(), "module-runtime", snapshot); err != nil {
		logging.Warnf(nil, "metrics: flush failed: %v", err)
	}
}

// Stop ends the background flush loop. Safe to call multiple times.
func (c *Collector) Stop() {
	if !c.enabled {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
}

// Snapshot returns a copy of the current counters, for the admin HTTP
// surface's /metrics route.
func (c *Collector) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counters))
	for k, v := range c.counters {
		out[k] = v
	}
	return out
}

// broker.Metrics

func (c *Collector) InterfaceRegistered(kind string)   { c.inc("interface_registered." + kind) }
func (c *Collector) InterfaceUnregistered(kind string) { c.inc("interface_unregistered." + kind) }
func (c *Collector) CallbackFired(name string, handlerCount int, failures int) {
	c.inc("callback_fired." + name)
	if failures > 0 {
		c.inc("callback_handler_failures." + name)
	}
}

// module.Metrics

func (c *Collector) ModuleLoaded(identity string)      { c.inc("module_loaded." + identity) }
func (c *Collector) ModuleUnloaded(identity string)     { c.inc("module_unloaded." + identity) }
func (c *Collector) ModuleLoadFailed(identity string)   { c.inc("module_load_failed." + identity) }
func (c *Collector) AttachChanged(identity, arenaID string, attached bool) {
	if attached {
		c.inc("module_attached." + identity)
		return
	}
	c.inc("module_detached." + identity)
}
