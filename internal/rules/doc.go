// Package rules loads relay rules: an ordered list of regular expressions,
// each paired with an ordered list of destinations. Rules are read from a
// YAML file and are immutable once loaded.
package rules
