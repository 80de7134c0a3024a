// Package replication selects replica instances from a ring's candidate
// order, enforcing that each replica sits on a different physical server.
package replication
