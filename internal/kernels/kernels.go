// Package kernels holds the numeric kernel variants and the process-wide
// dispatch table that selects among them.
//
// Implementation variants register themselves from init functions. The first
// call to Active resolves the best variant for the detected CPU and caches
// it; every later call is a plain read. The scalar variant implements every
// operation, so resolution cannot fail.
package kernels

import (
	"errors"
	"sort"
	"sync"

	"github.com/cyrup-ai/kodegen-simd/internal/cpu"
)

// ErrBackendUnavailable is returned by backend probes whose hardware or
// driver is not usable on this host. The failure stays inside the registry;
// callers of Active always get a working table.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Ops is a dispatch table of primitive numeric operations over float64
// buffers. Each field is filled by the selected variant; operations the
// variant does not accelerate fall back to the scalar implementation.
type Ops struct {
	// Dot returns the dot product of a and b. Lengths must match.
	Dot func(a, b []float64) float64

	// SquaredNorm returns the sum of squares of x.
	SquaredNorm func(x []float64) float64

	// Max returns the maximum value in x. x must be non-empty.
	Max func(x []float64) float64

	// DivScalar divides every element of x by t in place.
	DivScalar func(x []float64, t float64)

	// MulScalar multiplies every element of x by s in place.
	MulScalar func(x []float64, s float64)

	// ExpSumShifted replaces x[i] with exp(x[i]-shift) and returns the sum
	// of the results. Entries equal to -Inf become exactly 0.
	ExpSumShifted func(x []float64, shift float64) float64
}

type variant struct {
	name     string
	level    cpu.Level
	priority int
	ops      Ops
}

var (
	mu       sync.Mutex
	variants []variant
	resolved bool

	resolveOnce sync.Once
	active      Ops
	activeName  string
)

// register adds a built-in variant. Called from init functions only.
func register(name string, level cpu.Level, priority int, ops Ops) {
	mu.Lock()
	variants = append(variants, variant{name: name, level: level, priority: priority, ops: ops})
	mu.Unlock()
}

// RegisterBackend installs an external hardware backend ahead of the
// built-in variants. The probe runs immediately; if it fails, or if the
// dispatch table has already been resolved, the registration is dropped and
// the built-ins continue to serve. Returns whether the backend was accepted.
func RegisterBackend(name string, ops Ops, probe func() error) bool {
	if probe != nil {
		if err := probe(); err != nil {
			return false
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if resolved {
		return false
	}
	variants = append(variants, variant{name: name, level: cpu.LevelScalar, priority: 100, ops: ops})
	return true
}

// Active returns the dispatch table for this process, resolving it from the
// detected CPU capabilities on first use. Safe for unsynchronized concurrent
// reads afterwards.
func Active() *Ops {
	resolveOnce.Do(resolve)
	return &active
}

// ActiveName returns the name of the selected variant ("scalar", "avx2", ...).
func ActiveName() string {
	resolveOnce.Do(resolve)
	return activeName
}

func resolve() {
	features := cpu.Detect()

	// Registration and resolution share this critical section, so an
	// accepted backend is always part of the candidate set.
	mu.Lock()
	defer mu.Unlock()
	resolved = true

	candidates := make([]variant, len(variants))
	copy(candidates, variants)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority > candidates[j].priority
	})

	chosen := variant{name: "scalar", ops: scalarOps()}
	for _, v := range candidates {
		if v.level <= features.Best {
			chosen = v
			break
		}
	}

	// Backfill unaccelerated slots from scalar so every op is callable.
	scalar := scalarOps()
	if chosen.ops.Dot == nil {
		chosen.ops.Dot = scalar.Dot
	}
	if chosen.ops.SquaredNorm == nil {
		chosen.ops.SquaredNorm = scalar.SquaredNorm
	}
	if chosen.ops.Max == nil {
		chosen.ops.Max = scalar.Max
	}
	if chosen.ops.DivScalar == nil {
		chosen.ops.DivScalar = scalar.DivScalar
	}
	if chosen.ops.MulScalar == nil {
		chosen.ops.MulScalar = scalar.MulScalar
	}
	if chosen.ops.ExpSumShifted == nil {
		chosen.ops.ExpSumShifted = scalar.ExpSumShifted
	}

	active = chosen.ops
	activeName = chosen.name
}

func init() {
	register("scalar", cpu.LevelScalar, 0, scalarOps())
}
