package router

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"relayrouter/internal/destination"
	"relayrouter/internal/logging"
)

// RulesRouter routes keys by walking an ordered rule list. A destination
// listed by several matching rules is yielded once per rule.
type RulesRouter struct {
	mu           sync.RWMutex
	rules        []Rule
	destinations mapset.Set[destination.Destination]
	logger       logging.Logger
}

// NewRulesRouter creates a router over rules. The rule list is not copied
// and must not be modified afterwards.
func NewRulesRouter(rules []Rule, opts ...Option) *RulesRouter {
	o := buildOptions(opts)
	return &RulesRouter{
		rules:        rules,
		destinations: mapset.NewThreadUnsafeSet[destination.Destination](),
		logger:       o.logger.WithFields(logging.String("router", MethodRules)),
	}
}

// AddDestination registers d. Adding a registered destination is a no-op.
func (r *RulesRouter) AddDestination(d destination.Destination) error {
	r.mu.Lock()
	added := r.destinations.Add(d)
	r.mu.Unlock()

	if added {
		r.logger.Debug("added destination", logging.String("destination", d.String()))
	}
	return nil
}

// RemoveDestination unregisters d. Removing an unknown destination is a no-op.
func (r *RulesRouter) RemoveDestination(d destination.Destination) error {
	r.mu.Lock()
	present := r.destinations.Contains(d)
	r.destinations.Remove(d)
	r.mu.Unlock()

	if present {
		r.logger.Debug("removed destination", logging.String("destination", d.String()))
	}
	return nil
}

// GetDestinations yields, for each rule matching key in rule order, each of
// the rule's destinations that is currently registered.
func (r *RulesRouter) GetDestinations(key string) []destination.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []destination.Address
	for _, rule := range r.rules {
		if !rule.Matches(key) {
			continue
		}
		for _, d := range rule.Targets() {
			if r.destinations.Contains(d) {
				out = append(out, d.Address())
			}
		}
	}
	return out
}
