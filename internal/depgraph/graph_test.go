package depgraph

import "testing"

func TestTopoSortOrdersDependenciesFirst(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "A"})
	g.AddNode(Node{ID: "B", DependsOn: []NodeID{"A"}})
	g.AddNode(Node{ID: "C", DependsOn: []NodeID{"A", "B"}})

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := make(map[NodeID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos["A"] > pos["B"] {
		t.Errorf("expected A before B, got order %v", order)
	}
	if pos["B"] > pos["C"] {
		t.Errorf("expected B before C, got order %v", order)
	}
}

func TestTopoSortDetectsCycle(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "A", DependsOn: []NodeID{"B"}})
	g.AddNode(Node{ID: "B", DependsOn: []NodeID{"A"}})

	_, err := g.TopoSort()
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	cycleErr, ok := err.(*CycleError)
	if !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Path) < 2 {
		t.Errorf("expected a non-trivial cycle path, got %v", cycleErr.Path)
	}
}

func TestReverse(t *testing.T) {
	in := []NodeID{"A", "B", "C"}
	out := Reverse(in)
	want := []NodeID{"C", "B", "A"}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("Reverse(%v) = %v, want %v", in, out, want)
		}
	}
}

func TestMissingDependencies(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "A", DependsOn: []NodeID{"ghost"}})

	missing := g.MissingDependencies()
	if len(missing["A"]) != 1 || missing["A"][0] != "ghost" {
		t.Fatalf("expected A to report missing dep 'ghost', got %v", missing)
	}
}
