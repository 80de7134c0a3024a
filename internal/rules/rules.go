package rules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"relayrouter/internal/destination"
)

// ErrInvalidRule is wrapped by every rule validation failure.
var ErrInvalidRule = errors.New("invalid relay rule")

// Rule pairs a key predicate with an ordered list of destinations.
type Rule struct {
	Name    string
	Default bool

	pattern      *regexp.Regexp
	destinations []destination.Destination
}

// NewRule compiles pattern and builds a rule routing matching keys to dests.
func NewRule(name, pattern string, dests []destination.Destination) (*Rule, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: rule %q has no pattern", ErrInvalidRule, name)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %q: %v", ErrInvalidRule, name, err)
	}
	if len(dests) == 0 {
		return nil, fmt.Errorf("%w: rule %q has no destinations", ErrInvalidRule, name)
	}
	return &Rule{Name: name, pattern: re, destinations: append([]destination.Destination(nil), dests...)}, nil
}

// NewDefaultRule builds the catch-all rule that matches every key.
func NewDefaultRule(name string, dests []destination.Destination) (*Rule, error) {
	if len(dests) == 0 {
		return nil, fmt.Errorf("%w: default rule %q has no destinations", ErrInvalidRule, name)
	}
	return &Rule{Name: name, Default: true, destinations: append([]destination.Destination(nil), dests...)}, nil
}

// Matches reports whether the rule applies to key.
func (r *Rule) Matches(key string) bool {
	if r.Default {
		return true
	}
	return r.pattern.MatchString(key)
}

// Targets returns the rule's destinations in their configured order.
// The returned slice must not be modified.
func (r *Rule) Targets() []destination.Destination {
	return r.destinations
}

// Pattern returns the source of the rule's regular expression, or "" for the
// default rule.
func (r *Rule) Pattern() string {
	if r.pattern == nil {
		return ""
	}
	return r.pattern.String()
}

type fileRule struct {
	Name         string   `yaml:"name"`
	Pattern      string   `yaml:"pattern"`
	Default      bool     `yaml:"default"`
	Destinations []string `yaml:"destinations"`
}

type file struct {
	Rules []fileRule `yaml:"rules"`
}

// LoadFile reads rules from a YAML file.
func LoadFile(path string) ([]*Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file %s: %w", path, err)
	}
	defer f.Close()

	rules, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules file %s: %w", path, err)
	}
	return rules, nil
}

// Load decodes rules from YAML. Rules keep their file order except the
// default rule, which is moved to the end. Exactly one default rule is
// required.
func Load(r io.Reader) ([]*Rule, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	rules := make([]*Rule, 0, len(doc.Rules))
	var def *Rule
	for i, fr := range doc.Rules {
		name := fr.Name
		if name == "" {
			name = fmt.Sprintf("rule-%d", i)
		}

		dests := make([]destination.Destination, 0, len(fr.Destinations))
		for _, s := range fr.Destinations {
			d, err := destination.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %q: %v", ErrInvalidRule, name, err)
			}
			dests = append(dests, d)
		}

		if fr.Default {
			if def != nil {
				return nil, fmt.Errorf("%w: rule %q is a second default rule (first is %q)", ErrInvalidRule, name, def.Name)
			}
			if fr.Pattern != "" {
				return nil, fmt.Errorf("%w: default rule %q cannot have a pattern", ErrInvalidRule, name)
			}
			rule, err := NewDefaultRule(name, dests)
			if err != nil {
				return nil, err
			}
			def = rule
			continue
		}

		rule, err := NewRule(name, fr.Pattern, dests)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if def == nil {
		return nil, fmt.Errorf("%w: no default rule", ErrInvalidRule)
	}
	return append(rules, def), nil
}

// Destinations returns every destination referenced by rules, each once, in
// first-seen order.
func Destinations(rules []*Rule) []destination.Destination {
	seen := make(map[destination.Destination]struct{})
	out := make([]destination.Destination, 0)
	for _, r := range rules {
		for _, d := range r.destinations {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}
