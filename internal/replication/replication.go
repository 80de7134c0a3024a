package replication

import (
	"relayrouter/internal/destination"
)

// DefaultFactor is the replication factor used when none is configured.
const DefaultFactor = 1

// SelectReplicas walks candidates in order and keeps the first instance seen
// for each server, stopping once factor distinct servers are chosen. Replicas
// therefore land on distinct physical servers even when a server runs several
// instances. Fewer than factor replicas are returned when fewer servers exist.
func SelectReplicas(candidates []destination.Instance, factor int) []destination.Instance {
	if factor <= 0 {
		factor = DefaultFactor
	}

	usedServers := make(map[string]struct{}, factor)
	replicas := make([]destination.Instance, 0, factor)
	for _, c := range candidates {
		if _, used := usedServers[c.Server]; used {
			continue
		}
		usedServers[c.Server] = struct{}{}
		replicas = append(replicas, c)
		if len(replicas) >= factor {
			break
		}
	}
	return replicas
}
