package router

import (
	"fmt"

	"relayrouter/internal/destination"
	"relayrouter/internal/keyfunc"
	"relayrouter/internal/logging"
	"relayrouter/internal/ring"
)

// Routing methods accepted by New.
const (
	MethodRules             = "rules"
	MethodConsistentHashing = "consistent-hashing"
)

// Router maps a key to the ordered destinations it is forwarded to.
type Router interface {
	// AddDestination registers a destination.
	AddDestination(d destination.Destination) error

	// RemoveDestination unregisters a destination.
	RemoveDestination(d destination.Destination) error

	// GetDestinations returns the (host, port) pairs for key in forwarding
	// order. An empty result means the data point is dropped.
	GetDestinations(key string) []destination.Address
}

// HashRing is the consistent hashing capability ConsistentHashingRouter
// places nodes on. GetNodes must be deterministic for a fixed membership.
type HashRing interface {
	AddNode(node destination.Instance)
	RemoveNode(node destination.Instance)
	GetNodes(key string) []destination.Instance
}

// Rule is a key predicate with an ordered destination list.
type Rule interface {
	Matches(key string) bool
	Targets() []destination.Destination
}

// Config selects and parameterizes a router variant.
type Config struct {
	Method            string
	Rules             []Rule
	ReplicationFactor int
}

type options struct {
	logger  logging.Logger
	ring    HashRing
	vnodes  int
	keyFunc keyfunc.KeyFunc
}

// Option customizes a router.
type Option func(*options)

// WithLogger sets the logger used for mutation events.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRing replaces the default ring of a ConsistentHashingRouter.
func WithRing(r HashRing) Option {
	return func(o *options) {
		o.ring = r
	}
}

// WithVNodes sets the virtual nodes per instance of the default ring.
func WithVNodes(n int) Option {
	return func(o *options) {
		o.vnodes = n
	}
}

// WithKeyFunction sets the initial key function of a ConsistentHashingRouter.
func WithKeyFunction(fn keyfunc.KeyFunc) Option {
	return func(o *options) {
		o.keyFunc = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.ring == nil {
		o.ring = ring.NewRing(o.vnodes)
	}
	if o.keyFunc == nil {
		o.keyFunc = keyfunc.Identity
	}
	return o
}

// New builds the router variant named by cfg.Method.
func New(cfg Config, opts ...Option) (Router, error) {
	switch cfg.Method {
	case MethodRules:
		return NewRulesRouter(cfg.Rules, opts...), nil
	case MethodConsistentHashing, "":
		return NewConsistentHashingRouter(cfg.ReplicationFactor, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, cfg.Method)
	}
}

// Methods lists the routing methods New accepts.
func Methods() []string {
	return []string{MethodConsistentHashing, MethodRules}
}
