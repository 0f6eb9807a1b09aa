package engine

// Dispatcher runs fn on the goroutine that owns a Map and returns once fn has
// finished. Collaborators on other goroutines reach the map only through it.
type Dispatcher interface {
	Do(fn func(*Map))
}

type direct struct{ m *Map }

func (d direct) Do(fn func(*Map)) { fn(d.m) }

// Direct returns a Dispatcher for callers already on the owning goroutine.
func Direct(m *Map) Dispatcher { return direct{m: m} }
