// Package ring implements a consistent hashing ring with virtual nodes.
// It maps metric keys to destination instances while minimizing key movement
// when instances are added or removed, and yields the full clockwise
// candidate order for a key so callers can pick replicas from it.
package ring
