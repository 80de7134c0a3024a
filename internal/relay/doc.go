// Package relay wires configuration to a router and keeps the router's
// destination set in step with the configured backend pool across reloads.
package relay
