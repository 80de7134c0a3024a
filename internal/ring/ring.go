package ring

import (
	"sort"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"relayrouter/internal/destination"
)

// DefaultVNodes is the number of virtual nodes placed per instance when the
// caller does not choose one.
const DefaultVNodes = 128

// vnode represents a virtual node on the ring.
type vnode struct {
	hash uint64
	node destination.Instance
}

// Ring implements consistent hashing with virtual nodes.
type Ring struct {
	mu            sync.RWMutex
	vnodesPerNode int
	vnodes        []vnode
	nodes         map[destination.Instance]struct{}
}

// NewRing creates a new consistent hashing ring.
func NewRing(vnodesPerNode int) *Ring {
	if vnodesPerNode <= 0 {
		vnodesPerNode = DefaultVNodes
	}
	return &Ring{
		vnodesPerNode: vnodesPerNode,
		vnodes:        make([]vnode, 0),
		nodes:         make(map[destination.Instance]struct{}),
	}
}

// AddNode adds a node to the ring. Adding a node twice is a no-op.
func (r *Ring) AddNode(node destination.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[node]; exists {
		return
	}
	r.nodes[node] = struct{}{}

	for _, v := range r.placements(node) {
		idx := sort.Search(len(r.vnodes), func(i int) bool {
			return !less(r.vnodes[i], v)
		})
		r.vnodes = append(r.vnodes, vnode{})
		copy(r.vnodes[idx+1:], r.vnodes[idx:])
		r.vnodes[idx] = v
	}
}

// RemoveNode removes a node from the ring. Removing an unknown node is a no-op.
func (r *Ring) RemoveNode(node destination.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[node]; !exists {
		return
	}
	delete(r.nodes, node)

	kept := make([]vnode, 0, len(r.vnodes))
	for _, v := range r.vnodes {
		if v.node != node {
			kept = append(kept, v)
		}
	}
	r.vnodes = kept
}

// GetNodes returns every node on the ring in the order they are met walking
// clockwise from the key's position, each node once. The order is a pure
// function of the ring membership and the key.
func (r *Ring) GetNodes(key string) []destination.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.vnodes) == 0 {
		return []destination.Instance{}
	}

	start := r.search(key)
	seen := make(map[destination.Instance]struct{}, len(r.nodes))
	result := make([]destination.Instance, 0, len(r.nodes))

	for i := 0; i < len(r.vnodes) && len(result) < len(r.nodes); i++ {
		node := r.vnodes[(start+i)%len(r.vnodes)].node
		if _, dup := seen[node]; dup {
			continue
		}
		seen[node] = struct{}{}
		result = append(result, node)
	}
	return result
}

// search returns the index of the first vnode at or after the key's hash,
// wrapping around past the end of the ring.
func (r *Ring) search(key string) int {
	keyHash := hashString(key)
	idx := sort.Search(len(r.vnodes), func(i int) bool {
		return r.vnodes[i].hash >= keyHash
	})
	if idx >= len(r.vnodes) {
		idx = 0
	}
	return idx
}

func (r *Ring) placements(node destination.Instance) []vnode {
	label := node.Server + "\x00" + node.Instance + "-vnode-"
	out := make([]vnode, r.vnodesPerNode)
	for i := range out {
		out[i] = vnode{hash: hashString(label + strconv.Itoa(i)), node: node}
	}
	return out
}

// less orders vnodes by hash; equal hashes fall back to the node identity so
// the layout does not depend on insertion order.
func less(a, b vnode) bool {
	if a.hash != b.hash {
		return a.hash < b.hash
	}
	if a.node.Server != b.node.Server {
		return a.node.Server < b.node.Server
	}
	return a.node.Instance < b.node.Instance
}

func hashString(s string) uint64 {
	return xxhash.Sum64String(s)
}
