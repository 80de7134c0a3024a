package router

import (
	"sync"

	"relayrouter/internal/destination"
	"relayrouter/internal/keyfunc"
	"relayrouter/internal/logging"
	"relayrouter/internal/replication"
)

// ConsistentHashingRouter places keys on a hash ring of (server, instance)
// nodes. Each key is sent to up to ReplicationFactor distinct servers.
type ConsistentHashingRouter struct {
	mu                sync.RWMutex
	replicationFactor int
	instancePorts     map[destination.Instance]int
	ring              HashRing
	keyFunc           keyfunc.KeyFunc
	logger            logging.Logger
}

// NewConsistentHashingRouter creates a hash router. A non-positive
// replicationFactor falls back to 1.
func NewConsistentHashingRouter(replicationFactor int, opts ...Option) *ConsistentHashingRouter {
	if replicationFactor <= 0 {
		replicationFactor = replication.DefaultFactor
	}
	o := buildOptions(opts)
	return &ConsistentHashingRouter{
		replicationFactor: replicationFactor,
		instancePorts:     make(map[destination.Instance]int),
		ring:              o.ring,
		keyFunc:           o.keyFunc,
		logger:            o.logger.WithFields(logging.String("router", MethodConsistentHashing)),
	}
}

// ReplicationFactor returns the number of distinct servers each key goes to.
func (r *ConsistentHashingRouter) ReplicationFactor() int {
	return r.replicationFactor
}

// AddDestination registers d and places its instance on the ring. It fails
// with *DuplicateDestinationError if (server, instance) is already registered.
func (r *ConsistentHashingRouter) AddDestination(d destination.Destination) error {
	id := d.ID()

	r.mu.Lock()
	if _, exists := r.instancePorts[id]; exists {
		r.mu.Unlock()
		err := &DuplicateDestinationError{Instance: id}
		r.logger.Warn("rejected destination", logging.String("destination", d.String()), logging.Any("error", err.Error()))
		return err
	}
	r.instancePorts[id] = d.Port
	r.ring.AddNode(id)
	r.mu.Unlock()

	r.logger.Debug("added destination", logging.String("destination", d.String()))
	return nil
}

// RemoveDestination unregisters d and removes its instance from the ring. It
// fails with *UnknownDestinationError if (server, instance) is not registered.
// Only the (server, instance) pair is compared; the port is ignored.
func (r *ConsistentHashingRouter) RemoveDestination(d destination.Destination) error {
	id := d.ID()

	r.mu.Lock()
	if _, exists := r.instancePorts[id]; !exists {
		r.mu.Unlock()
		err := &UnknownDestinationError{Instance: id}
		r.logger.Warn("rejected destination removal", logging.String("destination", d.String()), logging.Any("error", err.Error()))
		return err
	}
	delete(r.instancePorts, id)
	r.ring.RemoveNode(id)
	r.mu.Unlock()

	r.logger.Debug("removed destination", logging.String("destination", d.String()))
	return nil
}

// GetDestinations hashes keyFunc(metric) onto the ring and returns one
// (server, port) per distinct server in ring order, at most
// ReplicationFactor of them.
func (r *ConsistentHashingRouter) GetDestinations(metric string) []destination.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := r.ring.GetNodes(r.keyFunc(metric))

	registered := make([]destination.Instance, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := r.instancePorts[c]; ok {
			registered = append(registered, c)
		}
	}

	replicas := replication.SelectReplicas(registered, r.replicationFactor)
	out := make([]destination.Address, 0, len(replicas))
	for _, id := range replicas {
		out = append(out, destination.Address{Host: id.Server, Port: r.instancePorts[id]})
	}
	return out
}

// SetKeyFunction replaces the key function used by later GetDestinations
// calls. A nil fn restores the identity function.
func (r *ConsistentHashingRouter) SetKeyFunction(fn keyfunc.KeyFunc) {
	if fn == nil {
		fn = keyfunc.Identity
	}
	r.mu.Lock()
	r.keyFunc = fn
	r.mu.Unlock()
}

// SetKeyFunctionFromSpec resolves spec through loader and installs the
// result. On failure the current key function is kept and the loader's error
// is returned.
func (r *ConsistentHashingRouter) SetKeyFunctionFromSpec(loader keyfunc.Loader, spec string) error {
	fn, err := loader.Load(spec)
	if err != nil {
		r.logger.Error("failed to load key function", err, logging.String("spec", spec))
		return err
	}
	r.SetKeyFunction(fn)
	r.logger.Info("key function set", logging.String("spec", spec))
	return nil
}
