package replication

import (
	"testing"

	"relayrouter/internal/destination"
)

func inst(server, instance string) destination.Instance {
	return destination.Instance{Server: server, Instance: instance}
}

func TestSelectReplicas(t *testing.T) {
	candidates := []destination.Instance{
		inst("hostA", "i1"),
		inst("hostA", "i2"),
		inst("hostB", "i1"),
		inst("hostC", "i1"),
	}

	tests := []struct {
		name   string
		factor int
		want   []destination.Instance
	}{
		{"factor 1", 1, []destination.Instance{inst("hostA", "i1")}},
		{"factor 2 skips same server", 2, []destination.Instance{inst("hostA", "i1"), inst("hostB", "i1")}},
		{"factor 3", 3, []destination.Instance{inst("hostA", "i1"), inst("hostB", "i1"), inst("hostC", "i1")}},
		{"factor above servers", 10, []destination.Instance{inst("hostA", "i1"), inst("hostB", "i1"), inst("hostC", "i1")}},
		{"non positive uses default", 0, []destination.Instance{inst("hostA", "i1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectReplicas(candidates, tt.factor)
			if len(got) != len(tt.want) {
				t.Fatalf("SelectReplicas() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SelectReplicas()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSelectReplicas_Empty(t *testing.T) {
	if got := SelectReplicas(nil, 3); len(got) != 0 {
		t.Errorf("Expected no replicas, got %v", got)
	}
}
