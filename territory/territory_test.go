package territory

import (
	"errors"
	"math"
	"testing"

	"influencemap/typedef"
)

type member struct {
	name string
	pop  float64
}

func regions(members ...member) []*typedef.Region {
	out := make([]*typedef.Region, len(members))
	for i, s := range members {
		out[i] = &typedef.Region{ID: i, Name: s.name, Population: s.pop, PixelCount: 10}
	}
	return out
}

func mustGroup(t *testing.T, rs []*typedef.Region) *Registry {
	t.Helper()
	reg, err := Group(rs)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	return reg
}

func TestGroupFirstSeenOrder(t *testing.T) {
	rs := regions(member{"B", 1}, member{"A", 2}, member{"B", 1}, member{"C", 3})
	reg := mustGroup(t, rs)
	if reg.Len() != 3 {
		t.Fatalf("Len = %d, want 3", reg.Len())
	}
	want := []string{"B", "A", "C"}
	for i, tr := range reg.Territories() {
		if tr.Name != want[i] {
			t.Errorf("territory %d = %q, want %q", i, tr.Name, want[i])
		}
	}
	b, _ := reg.Lookup("B")
	if len(b.Members) != 2 || reg.Of(rs[2]) != b {
		t.Fatalf("B members wrong")
	}
}

func TestApplyInfluenceKeepsGroupEqual(t *testing.T) {
	rs := regions(member{"Japan", 126}, member{"Japan", 126}, member{"Japan", 126}, member{"Korea", 78})
	reg := mustGroup(t, rs)

	got, err := reg.ApplyInfluence("Japan", 15)
	if err != nil || got != 15 {
		t.Fatalf("ApplyInfluence = %v, %v", got, err)
	}
	for _, r := range rs[:3] {
		if r.Influence() != 15 {
			t.Errorf("region %d influence %v, want 15", r.ID, r.Influence())
		}
	}
	if rs[3].Influence() != 0 {
		t.Errorf("Korea changed to %v", rs[3].Influence())
	}

	if _, err := reg.ApplyToRegion(1, 10); err != nil {
		t.Fatalf("ApplyToRegion: %v", err)
	}
	for _, r := range rs[:3] {
		if r.Influence() != 25 {
			t.Errorf("region %d influence %v after region apply, want 25", r.ID, r.Influence())
		}
	}
}

func TestApplyInfluenceClamps(t *testing.T) {
	reg := mustGroup(t, regions(member{"A", 1}))
	if v, _ := reg.ApplyInfluence("A", 250); v != 100 {
		t.Fatalf("upper clamp = %v", v)
	}
	if v, _ := reg.ApplyInfluence("A", -1000); v != 0 {
		t.Fatalf("lower clamp = %v", v)
	}
	if v, _ := reg.SetInfluence("A", 42); v != 42 {
		t.Fatalf("SetInfluence = %v", v)
	}
}

func TestApplyInfluenceUnknown(t *testing.T) {
	reg := mustGroup(t, regions(member{"A", 1}))
	if _, err := reg.ApplyInfluence("Atlantis", 5); !errors.Is(err, ErrUnknownTerritory) {
		t.Fatalf("got %v", err)
	}
	if _, err := reg.ApplyToRegion(9, 5); !errors.Is(err, ErrUnknownRegion) {
		t.Fatalf("got %v", err)
	}
}

func TestGlobalInfluence(t *testing.T) {
	// Duplicates of A must not double its weight.
	rs := regions(member{"A", 100}, member{"A", 100}, member{"B", 300})
	reg := mustGroup(t, rs)
	if _, err := reg.ApplyInfluence("A", 50); err != nil {
		t.Fatal(err)
	}
	if g := reg.GlobalInfluence(); math.Abs(g-12.5) > 1e-9 {
		t.Fatalf("GlobalInfluence = %v, want 12.5", g)
	}
}

func TestGlobalInfluenceZeroPopulation(t *testing.T) {
	reg := mustGroup(t, regions(member{"Empty", 0}))
	reg.ApplyInfluence("Empty", 80)
	if g := reg.GlobalInfluence(); g != 0 {
		t.Fatalf("GlobalInfluence = %v, want 0", g)
	}
	empty := mustGroup(t, nil)
	if g := empty.GlobalInfluence(); g != 0 || math.IsNaN(g) {
		t.Fatalf("empty registry GlobalInfluence = %v", g)
	}
}

func TestGroupRejectsUnnamed(t *testing.T) {
	if _, err := Group(regions(member{"", 1})); !errors.Is(err, typedef.ErrTerritoryNameEmpty) {
		t.Fatalf("got %v", err)
	}
}
