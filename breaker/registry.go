package breaker

import "sync"

// Registry manages one circuit breaker per dependency name, created lazily
// on first reference. Construct one per process (or per test) and pass it to
// callers explicitly; there is no package-level instance.
type Registry struct {
	mu         sync.RWMutex
	breakers   map[string]*Breaker
	defaultCfg Config
}

// NewRegistry creates a Registry that uses defaultCfg for breakers created
// via Get. The Name field of defaultCfg is ignored.
func NewRegistry(defaultCfg Config) *Registry {
	defaultCfg.applyDefaults()
	return &Registry{
		breakers:   make(map[string]*Breaker),
		defaultCfg: defaultCfg,
	}
}

// Get returns the breaker registered under name, creating one with the
// default config if it does not exist.
func (r *Registry) Get(name string) *Breaker {
	cfg := r.defaultCfg
	cfg.Name = name
	return r.GetWithConfig(name, cfg)
}

// GetWithConfig returns the breaker registered under name, creating one with
// cfg if it does not exist. An existing breaker keeps its original config.
func (r *Registry) GetWithConfig(name string, cfg Config) *Breaker {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring the write lock.
	if b, ok = r.breakers[name]; ok {
		return b
	}

	cfg.Name = name
	b = New(cfg)
	r.breakers[name] = b
	return b
}

// All returns a snapshot of all registered breakers keyed by name.
func (r *Registry) All() map[string]*Breaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Breaker, len(r.breakers))
	for k, v := range r.breakers {
		out[k] = v
	}
	return out
}

// AggregateMetrics returns a metrics snapshot for every registered breaker.
func (r *Registry) AggregateMetrics() map[string]Metrics {
	all := r.All()
	out := make(map[string]Metrics, len(all))
	for name, b := range all {
		out[name] = b.Metrics()
	}
	return out
}

// ResetAll force-closes every registered breaker and zeroes its counters.
func (r *Registry) ResetAll() {
	for _, b := range r.All() {
		b.Reset()
	}
}
