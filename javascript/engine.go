package javascript

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"influencemap/engine"
	"influencemap/typedef"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 60 * time.Second

// Influence is the object scripts see as `influence`. Every call goes through
// the dispatcher so the map is only touched on its owning goroutine.
type Influence struct {
	d engine.Dispatcher
}

func (in *Influence) Regions() []typedef.RegionView {
	var out []typedef.RegionView
	in.d.Do(func(m *engine.Map) { out = m.Regions() })
	return out
}

func (in *Influence) Territories() []typedef.TerritoryView {
	var out []typedef.TerritoryView
	in.d.Do(func(m *engine.Map) { out = m.Territories() })
	return out
}

func (in *Influence) ApplyInfluence(name string, delta float64) (float64, error) {
	var (
		v   float64
		err error
	)
	in.d.Do(func(m *engine.Map) { v, err = m.ApplyInfluence(name, delta) })
	return v, err
}

func (in *Influence) GlobalInfluence() float64 {
	var g float64
	in.d.Do(func(m *engine.Map) { g = m.GlobalInfluence() })
	return g
}

// QueryAt returns the region under a screen point, or null.
func (in *Influence) QueryAt(x, y float64) *typedef.RegionView {
	var out *typedef.RegionView
	in.d.Do(func(m *engine.Map) {
		if r, ok := m.QueryAt(x, y); ok {
			v := r.View()
			out = &v
		}
	})
	return out
}

// RegionAtPixel returns the region owning a raster pixel, or null.
func (in *Influence) RegionAtPixel(px, py int) *typedef.RegionView {
	var out *typedef.RegionView
	in.d.Do(func(m *engine.Map) {
		if r, ok := m.RegionAtPixel(px, py); ok {
			v := r.View()
			out = &v
		}
	})
	return out
}

// Selected returns the name of the selected territory, or "".
func (in *Influence) Selected() string {
	var name string
	in.d.Do(func(m *engine.Map) {
		if t := m.Selected(); t != nil {
			name = t.Name
		}
	})
	return name
}

func newVM(d engine.Dispatcher) *goja.Runtime {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	// Utility functions
	vm.Set("sprintf", fmt.Sprintf)
	vm.Set("printf", fmt.Printf)
	vm.Set("println", fmt.Println)
	vm.Set("influence", &Influence{d: d})
	return vm
}

type result struct {
	val goja.Value
	err error
}

// Execute runs src to completion and returns its completion value. A script
// still running after timeout is interrupted; Execute returns only after the
// script goroutine has stopped.
func Execute(ctx context.Context, src, scriptName string, d engine.Dispatcher, timeout time.Duration) (goja.Value, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	vm := newVM(d)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan result, 1)
	go func() {
		val, err := vm.RunString(src)
		resultCh <- result{val, err}
	}()

	select {
	case <-ctx.Done():
		vm.Interrupt("timeout")
		<-resultCh
		return nil, fmt.Errorf("script %s timed out: %w", scriptName, ctx.Err())
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("failed to run script %s: %w", scriptName, res.err)
		}
		fmt.Printf("[SCRIPT] %s finished\n", scriptName)
		return res.val, nil
	}
}

var ErrNoTick = errors.New("script does not define init() and tick()")

// Run loads src, calls init() once and then tick() on every value from ticks
// until stop is called or ticks is closed. Calls reach the map through d, so
// the script may run alongside the render loop. stop does not wait for a tick
// in progress and is safe to call from the dispatcher's own goroutine.
func Run(src, scriptName string, d engine.Dispatcher, ticks <-chan time.Time) (stop func(), err error) {
	vm := newVM(d)
	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", scriptName, err)
	}

	initFn, ok := goja.AssertFunction(vm.Get("init"))
	if !ok {
		return nil, fmt.Errorf("script %s: %w", scriptName, ErrNoTick)
	}
	tickFn, ok := goja.AssertFunction(vm.Get("tick"))
	if !ok {
		return nil, fmt.Errorf("script %s: %w", scriptName, ErrNoTick)
	}

	done := make(chan struct{})
	go func() {
		if _, err := initFn(goja.Undefined()); err != nil {
			fmt.Printf("[SCRIPT] %s init failed: %v\n", scriptName, err)
			return
		}
		for {
			select {
			case _, ok := <-ticks:
				if !ok {
					return
				}
				if _, err := tickFn(goja.Undefined()); err != nil {
					fmt.Printf("[SCRIPT] %s tick failed: %v\n", scriptName, err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			close(done)
			vm.Interrupt("stopped")
		})
	}
	return stop, nil
}
