// Package router decides which destinations a data point is forwarded to.
//
// Two implementations of Router are provided:
//
//   - RulesRouter walks an ordered list of rules and yields every registered
//     destination of every rule matching the key, in rule order.
//   - ConsistentHashingRouter places keys on a hash ring of (server, instance)
//     nodes and yields up to ReplicationFactor destinations, never two on the
//     same server.
//
// Routers perform no I/O. All methods are safe for concurrent use; a
// GetDestinations call never observes a partially applied mutation.
package router
