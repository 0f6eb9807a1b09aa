package territory

import (
	"errors"
	"fmt"

	"influencemap/typedef"
)

var (
	ErrUnknownTerritory = errors.New("unknown territory")
	ErrUnknownRegion    = errors.New("unknown region")
)

// Registry holds the territories of one map. Groups are built once after
// identity resolution and never change membership afterwards.
type Registry struct {
	order   []*typedef.Territory
	byName  map[string]*typedef.Territory
	regions []*typedef.Region
}

// Group partitions regions by resolved name. Territories keep the order in
// which their first member was discovered.
func Group(regions []*typedef.Region) (*Registry, error) {
	members := make(map[string][]*typedef.Region)
	var names []string
	for _, r := range regions {
		if _, ok := members[r.Name]; !ok {
			names = append(names, r.Name)
		}
		members[r.Name] = append(members[r.Name], r)
	}

	reg := &Registry{
		order:   make([]*typedef.Territory, 0, len(names)),
		byName:  make(map[string]*typedef.Territory, len(names)),
		regions: regions,
	}
	for _, name := range names {
		t, err := typedef.NewTerritory(name, members[name])
		if err != nil {
			return nil, fmt.Errorf("failed to group regions: %w", err)
		}
		reg.order = append(reg.order, t)
		reg.byName[name] = t
	}

	fmt.Printf("[GROUP] Grouped %d regions into %d territories\n", len(regions), len(reg.order))
	return reg, nil
}

// Len returns the number of territories.
func (r *Registry) Len() int { return len(r.order) }

// Territories returns the territories in first-seen order.
func (r *Registry) Territories() []*typedef.Territory {
	out := make([]*typedef.Territory, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup finds a territory by name.
func (r *Registry) Lookup(name string) (*typedef.Territory, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Of returns the territory a region belongs to.
func (r *Registry) Of(region *typedef.Region) *typedef.Territory {
	if region == nil {
		return nil
	}
	return region.Territory()
}

// ApplyInfluence adds delta to every member of the named territory and returns
// the new clamped value. It is the only way gameplay changes influence.
func (r *Registry) ApplyInfluence(name string, delta float64) (float64, error) {
	t, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownTerritory)
	}
	return t.Apply(delta), nil
}

// ApplyToRegion applies delta to the territory that owns region id.
func (r *Registry) ApplyToRegion(id int, delta float64) (float64, error) {
	if id < 0 || id >= len(r.regions) {
		return 0, fmt.Errorf("region %d: %w", id, ErrUnknownRegion)
	}
	return r.ApplyInfluence(r.regions[id].Name, delta)
}

// SetInfluence assigns an absolute value to every member of the territory.
func (r *Registry) SetInfluence(name string, value float64) (float64, error) {
	t, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownTerritory)
	}
	return t.Set(value), nil
}

// GlobalInfluence is the population-weighted mean influence over territories.
// Each territory is counted once regardless of how many regions it has.
func (r *Registry) GlobalInfluence() float64 {
	var weighted, total float64
	for _, t := range r.order {
		p := t.Population()
		weighted += t.Influence() * p
		total += p
	}
	if total <= 0 {
		return 0
	}
	return weighted / total
}
