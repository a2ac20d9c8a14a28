package inherit

import "testing"

func TestResolveInheritedMethodDirectParent(t *testing.T) {
	m := New()
	m.AddParents("proj.Dog", []string{"proj.Animal"})

	defined := map[string]bool{"proj.Animal.speak": true}
	got := m.ResolveInheritedMethod("proj.Dog", "speak", func(qn string) bool { return defined[qn] })
	if got != "proj.Animal.speak" {
		t.Errorf("got %q, want proj.Animal.speak", got)
	}
}

func TestResolveInheritedMethodGrandparent(t *testing.T) {
	m := New()
	m.AddParents("proj.Dog", []string{"proj.Animal"})
	m.AddParents("proj.Animal", []string{"proj.Base"})

	defined := map[string]bool{"proj.Base.speak": true}
	got := m.ResolveInheritedMethod("proj.Dog", "speak", func(qn string) bool { return defined[qn] })
	if got != "proj.Base.speak" {
		t.Errorf("got %q, want proj.Base.speak", got)
	}
}

func TestResolveInheritedMethodNotFound(t *testing.T) {
	m := New()
	m.AddParents("proj.Dog", []string{"proj.Animal"})

	got := m.ResolveInheritedMethod("proj.Dog", "speak", func(string) bool { return false })
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestDiamondInheritanceTerminates(t *testing.T) {
	m := New()
	// A -> B, C ; B -> D ; C -> D
	m.AddParents("proj.A", []string{"proj.B", "proj.C"})
	m.AddParents("proj.B", []string{"proj.D"})
	m.AddParents("proj.C", []string{"proj.D"})

	done := make(chan []string, 1)
	go func() { done <- m.Ancestors("proj.A") }()

	ancestors := <-done
	seen := map[string]int{}
	for _, a := range ancestors {
		seen[a]++
	}
	if seen["proj.D"] != 1 {
		t.Errorf("proj.D visited %d times, want 1 (diamond should dedup)", seen["proj.D"])
	}
	if len(ancestors) != 3 {
		t.Errorf("ancestors = %v, want 3 entries (B, C, D)", ancestors)
	}
}

func TestFirstParentWinsOnTie(t *testing.T) {
	m := New()
	m.AddParents("proj.Dog", []string{"proj.First", "proj.Second"})

	defined := map[string]bool{"proj.First.speak": true, "proj.Second.speak": true}
	got := m.ResolveInheritedMethod("proj.Dog", "speak", func(qn string) bool { return defined[qn] })
	if got != "proj.First.speak" {
		t.Errorf("got %q, want proj.First.speak (first parent should win)", got)
	}
}
