package ring

import (
	"fmt"
	"testing"

	"relayrouter/internal/destination"
)

func inst(server, instance string) destination.Instance {
	return destination.Instance{Server: server, Instance: instance}
}

func threeNodes() []destination.Instance {
	return []destination.Instance{
		inst("carbon01", "a"),
		inst("carbon02", "a"),
		inst("carbon03", "a"),
	}
}

func newRing(vnodes int, nodes ...destination.Instance) *Ring {
	r := NewRing(vnodes)
	for _, n := range nodes {
		r.AddNode(n)
	}
	return r
}

// owner returns the first candidate for key, or the zero Instance on an
// empty ring.
func owner(r *Ring, key string) destination.Instance {
	nodes := r.GetNodes(key)
	if len(nodes) == 0 {
		return destination.Instance{}
	}
	return nodes[0]
}

func TestRing_Determinism(t *testing.T) {
	ring1 := newRing(64, threeNodes()...)
	ring2 := newRing(64, threeNodes()...)

	for _, key := range []string{"key1", "key2", "key3", "a.b.c", "carbon.agents.x.cpu"} {
		got1 := ring1.GetNodes(key)
		got2 := ring2.GetNodes(key)
		if fmt.Sprint(got1) != fmt.Sprint(got2) {
			t.Errorf("Determinism failed for key %s: %v != %v", key, got1, got2)
		}
		if fmt.Sprint(got1) != fmt.Sprint(ring1.GetNodes(key)) {
			t.Errorf("Repeated lookup for %s changed", key)
		}
	}
}

func TestRing_GetNodes_AllDistinct(t *testing.T) {
	nodes := append(threeNodes(), inst("carbon01", "b"))
	ring := newRing(64, nodes...)

	got := ring.GetNodes("metric.name")
	if len(got) != len(nodes) {
		t.Fatalf("Expected %d candidates, got %d", len(nodes), len(got))
	}

	seen := make(map[destination.Instance]bool)
	for _, n := range got {
		if seen[n] {
			t.Errorf("Duplicate node %s in candidates", n)
		}
		seen[n] = true
	}
}

func TestRing_Distribution(t *testing.T) {
	ring := newRing(128, threeNodes()...)

	distribution := make(map[destination.Instance]int)
	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		distribution[owner(ring, fmt.Sprintf("key-%d", i))]++
	}

	if len(distribution) != 3 {
		t.Errorf("Expected 3 nodes to have keys, got %d", len(distribution))
	}
	for node, count := range distribution {
		if percentage := float64(count) / float64(numKeys) * 100; percentage > 90 {
			t.Errorf("Node %s has %.2f%% of keys (too high)", node, percentage)
		}
	}
}

func TestRing_NodeRemoval(t *testing.T) {
	ring := newRing(64, threeNodes()...)

	ring.RemoveNode(inst("carbon02", "a"))

	for _, key := range []string{"key1", "key2", "key3", "key4", "key5"} {
		got := ring.GetNodes(key)
		if len(got) != 2 {
			t.Errorf("Expected 2 candidates for %s after removal, got %v", key, got)
		}
		for _, n := range got {
			if n == inst("carbon02", "a") {
				t.Errorf("Key %s still mapped to removed node", key)
			}
		}
	}

	// removing again is harmless
	ring.RemoveNode(inst("carbon02", "a"))
	if len(ring.nodes) != 2 || len(ring.vnodes) != 2*64 {
		t.Errorf("Expected 2 nodes and %d vnodes, got %d and %d", 2*64, len(ring.nodes), len(ring.vnodes))
	}
}

func TestRing_AddNodeTwice(t *testing.T) {
	ring := newRing(64, inst("carbon01", "a"))

	ring.AddNode(inst("carbon02", "a"))
	ring.AddNode(inst("carbon02", "a"))

	if len(ring.vnodes) != 2*64 {
		t.Fatalf("Expected %d vnodes, got %d", 2*64, len(ring.vnodes))
	}
	if got := ring.GetNodes("any"); len(got) != 2 {
		t.Errorf("Expected 2 candidates, got %v", got)
	}
}

func TestRing_VNodesSorted(t *testing.T) {
	ring := newRing(32, threeNodes()...)
	for i := 1; i < len(ring.vnodes); i++ {
		if less(ring.vnodes[i], ring.vnodes[i-1]) {
			t.Fatalf("vnodes out of order at %d", i)
		}
	}
}

func TestRing_EmptyRing(t *testing.T) {
	ring := NewRing(64)
	if got := ring.GetNodes("any-key"); len(got) != 0 {
		t.Errorf("Expected no candidates for empty ring, got %v", got)
	}

	ring.AddNode(inst("carbon01", "a"))
	ring.RemoveNode(inst("carbon01", "a"))
	if got := ring.GetNodes("any-key"); len(got) != 0 {
		t.Errorf("Expected no candidates after removing the last node, got %v", got)
	}
}

func TestRing_DefaultVNodes(t *testing.T) {
	if got := NewRing(0).vnodesPerNode; got != DefaultVNodes {
		t.Errorf("vnodesPerNode = %d, want %d", got, DefaultVNodes)
	}
}
