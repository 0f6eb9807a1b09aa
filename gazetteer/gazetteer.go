package gazetteer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var (
	ErrDuplicateKey = errors.New("duplicate gazetteer key")
	ErrInvalidEntry = errors.New("invalid gazetteer entry")
	ErrEmpty        = errors.New("gazetteer has no entries")
)

// DefaultPrecision is the number of decimals kept in a position key.
const DefaultPrecision = 2

// Entry is one reference point: a normalised map position with the name and
// population (in millions) of the place found there.
type Entry struct {
	Key        string  `json:"key,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Name       string  `json:"name"`
	Population float64 `json:"population"`
}

// Gazetteer is an immutable table of entries, indexed by position key.
type Gazetteer struct {
	entries   []Entry
	byKey     map[string]int
	precision int
}

// Key discretises a normalised position, e.g. (0.171, 0.428) -> "0.17,0.43".
func Key(nx, ny float64, precision int) string {
	return strconv.FormatFloat(round(nx, precision), 'f', precision, 64) + "," +
		strconv.FormatFloat(round(ny, precision), 'f', precision, 64)
}

func round(v float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}

// New validates entries and builds an immutable gazetteer. Entry keys are
// recomputed from X/Y at the given precision.
func New(entries []Entry, precision int) (*Gazetteer, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}
	g := &Gazetteer{
		entries:   make([]Entry, 0, len(entries)),
		byKey:     make(map[string]int, len(entries)),
		precision: precision,
	}
	for i, e := range entries {
		if e.Name == "" || e.Population < 0 || e.X < 0 || e.X > 1 || e.Y < 0 || e.Y > 1 {
			return nil, fmt.Errorf("entry %d (%q at %.3f,%.3f): %w", i, e.Name, e.X, e.Y, ErrInvalidEntry)
		}
		e.Key = Key(e.X, e.Y, precision)
		if prev, ok := g.byKey[e.Key]; ok {
			return nil, fmt.Errorf("entry %d (%q) and entry %d (%q) at %s: %w",
				prev, g.entries[prev].Name, i, e.Name, e.Key, ErrDuplicateKey)
		}
		g.byKey[e.Key] = len(g.entries)
		g.entries = append(g.entries, e)
	}
	return g, nil
}

// Load reads a JSON array of entries.
func Load(r io.Reader, precision int) (*Gazetteer, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode gazetteer: %w", err)
	}
	return New(entries, precision)
}

// Len returns the number of entries.
func (g *Gazetteer) Len() int { return len(g.entries) }

// Precision returns the key precision the table was built with.
func (g *Gazetteer) Precision() int { return g.precision }

// Entry returns the i-th entry in table order.
func (g *Gazetteer) Entry(i int) Entry { return g.entries[i] }

// Lookup returns the index of the entry with the given key.
func (g *Gazetteer) Lookup(key string) (int, bool) {
	i, ok := g.byKey[key]
	return i, ok
}

// Entries returns a copy of all entries.
func (g *Gazetteer) Entries() []Entry {
	out := make([]Entry, len(g.entries))
	copy(out, g.entries)
	return out
}
