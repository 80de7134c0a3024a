// Package destination defines the addressable targets a relay forwards data
// points to: a server host, a port, and an instance name distinguishing
// multiple processes on the same server.
package destination
