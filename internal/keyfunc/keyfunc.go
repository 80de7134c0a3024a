package keyfunc

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ErrKeyFunctionLoad is wrapped by every LoadError.
var ErrKeyFunctionLoad = errors.New("failed to load key function")

// KeyFunc maps a metric to the key used for placement.
type KeyFunc func(metric string) string

// Factory builds a KeyFunc from the argument part of a spec ("" when the spec
// has no argument).
type Factory func(arg string) (KeyFunc, error)

// Loader resolves a spec string to a KeyFunc.
type Loader interface {
	Load(spec string) (KeyFunc, error)
}

// LoadError reports a spec that could not be resolved.
type LoadError struct {
	Spec string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrKeyFunctionLoad, e.Spec, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches ErrKeyFunctionLoad.
func (e *LoadError) Is(target error) bool {
	return target == ErrKeyFunctionLoad
}

// Identity returns the metric unchanged.
func Identity(metric string) string {
	return metric
}

// Registry is a concurrency-safe table of named key function factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry creates a registry holding the built-in key functions.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("identity", noArg(Identity))
	r.Register("lower", noArg(strings.ToLower))
	r.Register("prefix", prefixFactory)
	r.Register("strip-prefix", stripPrefixFactory)
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// RegisterFunc registers a key function that takes no argument.
func (r *Registry) RegisterFunc(name string, fn KeyFunc) {
	r.Register(name, noArg(fn))
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load resolves "name" or "name:arg". Failures are returned as *LoadError.
func (r *Registry) Load(spec string) (KeyFunc, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	if name == "" {
		return nil, &LoadError{Spec: spec, Err: errors.New("empty key function name")}
	}

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &LoadError{Spec: spec, Err: fmt.Errorf("no key function registered as %q", name)}
	}

	fn, err := factory(arg)
	if err != nil {
		return nil, &LoadError{Spec: spec, Err: err}
	}
	if fn == nil {
		return nil, &LoadError{Spec: spec, Err: errors.New("factory returned nil function")}
	}
	return fn, nil
}

func noArg(fn KeyFunc) Factory {
	return func(arg string) (KeyFunc, error) {
		if arg != "" {
			return nil, fmt.Errorf("unexpected argument %q", arg)
		}
		return fn, nil
	}
}

// prefixFactory keeps the first N dot-separated nodes of the metric.
func prefixFactory(arg string) (KeyFunc, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("prefix needs a positive node count, got %q", arg)
	}
	return func(metric string) string {
		idx := 0
		for i := 0; i < n; i++ {
			next := strings.IndexByte(metric[idx:], '.')
			if next < 0 {
				return metric
			}
			if i == n-1 {
				return metric[:idx+next]
			}
			idx += next + 1
		}
		return metric
	}, nil
}

func stripPrefixFactory(arg string) (KeyFunc, error) {
	if arg == "" {
		return nil, errors.New("strip-prefix needs a prefix")
	}
	return func(metric string) string {
		return strings.TrimPrefix(metric, arg)
	}, nil
}
