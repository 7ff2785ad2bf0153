// Package zonedirectory advertises and discovers zone-server processes and
// the arenas they host, for cross-process visibility only — it is never
// consulted for in-process broker lookup, which always goes through
// broker.Broker directly.
package zonedirectory

import (
	"context"
	"fmt"
	"sync"
	"time"

	consulapi "github.com/hashicorp/consul/api"

	"github.com/gigamon-dev/SubspaceServer-sub008/logging"
)

// Record describes one arena available for cross-zone discovery.
type Record struct {
	Name    string
	Address string
	Tags    []string
	Meta    map[string]string
}

// Directory wraps a Consul client for registering/discovering arena
// records, with a small local cache to absorb repeated lookups.
type Directory struct {
	client *consulapi.Client

	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
}

type cacheEntry struct {
	records []Record
	at      time.Time
}

// New builds a Consul client for the agent at address (e.g.
// "127.0.0.1:8500"). No connection is made until the first request.
func New(address, scheme string) (*Directory, error) {
	cfg := consulapi.DefaultConfig()
	if address != "" {
		cfg.Address = address
	}
	if scheme != "" {
		cfg.Scheme = scheme
	}
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("zonedirectory: connecting to consul: %w", err)
	}
	return &Directory{client: client, cache: make(map[string]cacheEntry), cacheTTL: 10 * time.Second}, nil
}

// SetCacheTTL overrides the default lookup cache lifetime.
func (d *Directory) SetCacheTTL(ttl time.Duration) { d.cacheTTL = ttl }

// Register advertises an arena as a Consul service so other zone-server
// processes can discover it.
func (d *Directory) Register(ctx context.Context, r Record) error {
	reg := &consulapi.AgentServiceRegistration{
		ID:      r.Name,
		Name:    "zone-arena",
		Address: r.Address,
		Tags:    r.Tags,
		Meta:    r.Meta,
	}
	if err := d.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("zonedirectory: register %s: %w", r.Name, err)
	}
	d.invalidate()
	return nil
}

// Deregister removes a previously-registered arena record.
func (d *Directory) Deregister(ctx context.Context, name string) error {
	if err := d.client.Agent().ServiceDeregister(name); err != nil {
		return fmt.Errorf("zonedirectory: deregister %s: %w", name, err)
	}
	d.invalidate()
	return nil
}

// Discover returns every currently-registered "zone-arena" service,
// serving from cache when it's still fresh.
func (d *Directory) Discover(ctx context.Context) ([]Record, error) {
	d.cacheMu.RLock()
	entry, ok := d.cache["zone-arena"]
	d.cacheMu.RUnlock()
	if ok && time.Since(entry.at) < d.cacheTTL {
		return entry.records, nil
	}

	services, _, err := d.client.Health().Service("zone-arena", "", true, nil)
	if err != nil {
		return nil, fmt.Errorf("zonedirectory: discover: %w", err)
	}

	records := make([]Record, 0, len(services))
	for _, svc := range services {
		records = append(records, Record{
			Name:    svc.Service.ID,
			Address: svc.Service.Address,
			Tags:    svc.Service.Tags,
			Meta:    svc.Service.Meta,
		})
	}

	d.cacheMu.Lock()
	d.cache["zone-arena"] = cacheEntry{records: records, at: time.Now()}
	d.cacheMu.Unlock()

	logging.Debugf(ctx, "zonedirectory: discovered %d zone-arena record(s)", len(records))
	return records, nil
}

func (d *Directory) invalidate() {
	d.cacheMu.Lock()
	delete(d.cache, "zone-arena")
	d.cacheMu.Unlock()
}
