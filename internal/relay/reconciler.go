package relay

import (
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"relayrouter/internal/config"
	"relayrouter/internal/destination"
	"relayrouter/internal/keyfunc"
	"relayrouter/internal/logging"
	"relayrouter/internal/router"
	"relayrouter/internal/rules"
)

// Reconciler applies destination pool changes to a router.
type Reconciler struct {
	mu      sync.Mutex
	router  router.Router
	current mapset.Set[destination.Destination]
	logger  logging.Logger
}

// NewReconciler creates a reconciler for r, which must start with no
// registered destinations.
func NewReconciler(r router.Router, logger logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{
		router:  r,
		current: mapset.NewThreadUnsafeSet[destination.Destination](),
		logger:  logger,
	}
}

// Router returns the router being reconciled.
func (rc *Reconciler) Router() router.Router {
	return rc.router
}

// Apply makes the router's destinations equal to desired: stale ones are
// removed first, then new ones added, each in sorted order. The first router
// error aborts the reload and is returned; destinations handled before it
// stay applied and are reflected by Current.
func (rc *Reconciler) Apply(desired []destination.Destination) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	want := mapset.NewThreadUnsafeSet(desired...)
	stale := sorted(rc.current.Difference(want))
	fresh := sorted(want.Difference(rc.current))

	for _, d := range stale {
		if err := rc.router.RemoveDestination(d); err != nil {
			rc.logger.Error("reload aborted", err, logging.String("remove", d.String()))
			return fmt.Errorf("failed to remove destination %s: %w", d, err)
		}
		rc.current.Remove(d)
	}
	for _, d := range fresh {
		if err := rc.router.AddDestination(d); err != nil {
			rc.logger.Error("reload aborted", err, logging.String("add", d.String()))
			return fmt.Errorf("failed to add destination %s: %w", d, err)
		}
		rc.current.Add(d)
	}

	if len(stale) > 0 || len(fresh) > 0 {
		rc.logger.Info("destinations reloaded",
			logging.Int("removed", len(stale)),
			logging.Int("added", len(fresh)),
			logging.Int("total", rc.current.Cardinality()),
		)
	}
	return nil
}

// Current returns the registered destinations in sorted order.
func (rc *Reconciler) Current() []destination.Destination {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return sorted(rc.current)
}

// Build constructs the router described by cfg, installs its key function
// and registers the configured destinations. For the rules method the
// destinations referenced by the rules file are registered as well.
func Build(cfg *config.Config, loader keyfunc.Loader, logger logging.Logger) (*Reconciler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	routerCfg := router.Config{Method: cfg.Method, ReplicationFactor: cfg.ReplicationFactor}
	desired := append([]destination.Destination(nil), cfg.Destinations...)

	if cfg.Method == router.MethodRules {
		loaded, err := rules.LoadFile(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		routerCfg.Rules = make([]router.Rule, len(loaded))
		for i, r := range loaded {
			routerCfg.Rules[i] = r
		}
		desired = append(desired, rules.Destinations(loaded)...)
	}

	r, err := router.New(routerCfg, router.WithLogger(logger), router.WithVNodes(cfg.VNodes))
	if err != nil {
		return nil, err
	}

	if cfg.KeyFunction != "" {
		chr, ok := r.(*router.ConsistentHashingRouter)
		if !ok {
			return nil, fmt.Errorf("key function %q needs method %q", cfg.KeyFunction, router.MethodConsistentHashing)
		}
		if err := chr.SetKeyFunctionFromSpec(loader, cfg.KeyFunction); err != nil {
			return nil, err
		}
	}

	rc := NewReconciler(r, logger)
	if err := rc.Apply(desired); err != nil {
		return nil, err
	}

	logger.Info("router ready",
		logging.String("method", cfg.Method),
		logging.Int("replication_factor", cfg.ReplicationFactor),
		logging.Int("destinations", len(rc.Current())),
	)
	return rc, nil
}

func sorted(s mapset.Set[destination.Destination]) []destination.Destination {
	out := s.ToSlice()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Server != b.Server {
			return a.Server < b.Server
		}
		if a.Instance != b.Instance {
			return a.Instance < b.Instance
		}
		return a.Port < b.Port
	})
	return out
}
