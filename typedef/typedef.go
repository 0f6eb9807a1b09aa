package typedef

import (
	"errors"
	"image"
	"image/color"
)

var (
	ErrTerritoryNameEmpty = errors.New("territory name cannot be empty")
)

// NoRegion is the owner-index sentinel for pixels that belong to no region.
const NoRegion = -1

// Influence bounds shared by every territory.
const (
	MinInfluence = 0.0
	MaxInfluence = 100.0
)

// Region is one flood-filled landmass. Identity fields are written once during
// map construction; influence is only ever written through Territory.
type Region struct {
	ID         int             // Dense, 0-based, in discovery order
	Seed       color.NRGBA     // Colour of the first pixel of the fill
	Bounds     image.Rectangle // Max is exclusive
	PixelCount int
	CentroidX  float64 // Mean of member pixel x coordinates
	CentroidY  float64 // Mean of member pixel y coordinates
	Name       string
	Population float64

	influence float64
	territory *Territory
}

// Influence returns the current influence in [0,100].
func (r *Region) Influence() float64 { return r.influence }

// Territory returns the group the region belongs to, or nil before grouping.
func (r *Region) Territory() *Territory { return r.territory }

// Resolved reports whether the identity resolver has named the region.
func (r *Region) Resolved() bool { return r.Name != "" }

// View returns the read model handed to HUD, API and script collaborators.
func (r *Region) View() RegionView {
	return RegionView{
		ID:         r.ID,
		Name:       r.Name,
		Population: r.Population,
		Influence:  r.influence,
		CentroidX:  r.CentroidX,
		CentroidY:  r.CentroidY,
		PixelCount: r.PixelCount,
	}
}

// Territory is every region sharing one resolved name. All members always hold
// the same influence because the only writers update them together.
type Territory struct {
	Name    string
	Members []*Region
}

// NewTerritory binds members to a new territory. Members keep their current
// influence only if they already agree; otherwise the maximum is adopted once
// so the group starts consistent.
func NewTerritory(name string, members []*Region) (*Territory, error) {
	if name == "" {
		return nil, ErrTerritoryNameEmpty
	}
	t := &Territory{Name: name, Members: members}
	start := 0.0
	for _, r := range members {
		if r.influence > start {
			start = r.influence
		}
	}
	for _, r := range members {
		r.territory = t
	}
	t.write(start)
	return t, nil
}

// Influence returns the shared influence of the group.
func (t *Territory) Influence() float64 {
	if len(t.Members) == 0 {
		return 0
	}
	return t.Members[0].influence
}

// Population is the population of the territory, taken from its first member.
// Duplicate regions name the same real-world place, so it is counted once.
func (t *Territory) Population() float64 {
	if len(t.Members) == 0 {
		return 0
	}
	return t.Members[0].Population
}

// PixelCount sums the member pixel counts.
func (t *Territory) PixelCount() int {
	n := 0
	for _, r := range t.Members {
		n += r.PixelCount
	}
	return n
}

// Apply adds delta to the group and returns the resulting clamped value.
func (t *Territory) Apply(delta float64) float64 {
	return t.write(t.Influence() + delta)
}

// Set assigns an absolute influence to the group and returns the clamped value.
func (t *Territory) Set(value float64) float64 {
	return t.write(value)
}

func (t *Territory) write(v float64) float64 {
	v = ClampInfluence(v)
	for _, r := range t.Members {
		r.influence = v
	}
	return v
}

// View returns the read model of the territory.
func (t *Territory) View() TerritoryView {
	ids := make([]int, len(t.Members))
	for i, r := range t.Members {
		ids[i] = r.ID
	}
	return TerritoryView{
		Name:       t.Name,
		Population: t.Population(),
		Influence:  t.Influence(),
		RegionIDs:  ids,
		PixelCount: t.PixelCount(),
	}
}

// ClampInfluence limits v to [MinInfluence, MaxInfluence].
func ClampInfluence(v float64) float64 {
	if v < MinInfluence {
		return MinInfluence
	}
	if v > MaxInfluence {
		return MaxInfluence
	}
	return v
}

// RegionView is a copy of the externally visible region state.
type RegionView struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Population float64 `json:"population"`
	Influence  float64 `json:"influence"`
	CentroidX  float64 `json:"centroid_x"`
	CentroidY  float64 `json:"centroid_y"`
	PixelCount int     `json:"pixel_count"`
}

// TerritoryView is a copy of the externally visible territory state.
type TerritoryView struct {
	Name       string  `json:"name"`
	Population float64 `json:"population"`
	Influence  float64 `json:"influence"`
	RegionIDs  []int   `json:"region_ids"`
	PixelCount int     `json:"pixel_count"`
}
