package circuit

import "sync"

// Registry hands out one breaker per participant key, shared across
// every call site that asks for the same participant. It is constructed
// once per run and passed to whoever needs it; there is no package
// global.
type Registry struct {
	mu        sync.Mutex
	cfg       Config
	breakers  map[string]*Breaker
	listeners []Listener // attached to every breaker, present and future
}

// NewRegistry creates an empty registry using cfg for new breakers.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:      cfg,
		breakers: make(map[string]*Breaker),
	}
}

// For returns the breaker for a participant, creating it on first use.
func (r *Registry) For(participant string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[participant]
	if !ok {
		b = NewBreaker(participant, r.cfg)
		for _, l := range r.listeners {
			b.OnTransition(l)
		}
		r.breakers[participant] = b
	}
	return b
}

// OnTransition registers a listener on every breaker in the registry,
// including breakers created later.
func (r *Registry) OnTransition(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, l)
	for _, b := range r.breakers {
		b.OnTransition(l)
	}
}

// Metrics returns a snapshot of every breaker's counters by participant.
func (r *Registry) Metrics() map[string]Metrics {
	r.mu.Lock()
	breakers := make(map[string]*Breaker, len(r.breakers))
	for k, b := range r.breakers {
		breakers[k] = b
	}
	r.mu.Unlock()

	out := make(map[string]Metrics, len(breakers))
	for k, b := range breakers {
		out[k] = b.Metrics()
	}
	return out
}
