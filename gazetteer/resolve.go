package gazetteer

import (
	"fmt"
	"math"

	"influencemap/typedef"
)

// Options tune how regions are matched against a gazetteer.
type Options struct {
	Threshold          float64 `json:"threshold"`          // Nearest matches must be strictly closer than this (normalised units)
	FallbackName       string  `json:"fallbackName"`       // fmt pattern taking the region id
	FallbackPopulation float64 `json:"fallbackPopulation"` // Population given to unmatched regions
}

// DefaultOptions returns the matching rules used for the world map.
func DefaultOptions() Options {
	return Options{
		Threshold:          0.03,
		FallbackName:       "Region %d",
		FallbackPopulation: 10,
	}
}

// Report counts how each region got its identity.
type Report struct {
	Exact    int `json:"exact"`
	Nearest  int `json:"nearest"`
	Fallback int `json:"fallback"`
}

// Resolve names every region in two passes. The exact pass runs over all
// regions first so that a nearest match for one region can never take an entry
// whose key another region hits exactly. Each entry is claimed at most once.
// Regions left over get a synthetic name and population.
func Resolve(regions []*typedef.Region, w, h int, g *Gazetteer, opts Options) Report {
	var rep Report
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	if opts.FallbackName == "" {
		opts.FallbackName = DefaultOptions().FallbackName
	}

	claimed := make([]bool, g.Len())
	pending := make([]*typedef.Region, 0, len(regions))

	for _, r := range regions {
		nx, ny := r.CentroidX/float64(w), r.CentroidY/float64(h)
		if i, ok := g.Lookup(Key(nx, ny, g.precision)); ok && !claimed[i] {
			claimed[i] = true
			assign(r, g.entries[i])
			rep.Exact++
			continue
		}
		pending = append(pending, r)
	}

	for _, r := range pending {
		nx, ny := r.CentroidX/float64(w), r.CentroidY/float64(h)
		best, bestDist := -1, opts.Threshold
		for i, e := range g.entries {
			if claimed[i] {
				continue
			}
			if d := math.Hypot(nx-e.X, ny-e.Y); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 {
			claimed[best] = true
			assign(r, g.entries[best])
			rep.Nearest++
			continue
		}
		r.Name = fmt.Sprintf(opts.FallbackName, r.ID)
		r.Population = opts.FallbackPopulation
		rep.Fallback++
		fmt.Printf("[IDENTITY] Region %d at %s not identified (%d px)\n",
			r.ID, Key(nx, ny, g.precision), r.PixelCount)
	}

	fmt.Printf("[IDENTITY] Resolved %d regions: %d exact, %d nearest, %d fallback\n",
		len(regions), rep.Exact, rep.Nearest, rep.Fallback)
	return rep
}

func assign(r *typedef.Region, e Entry) {
	r.Name = e.Name
	r.Population = e.Population
}
