// Package cpu detects the SIMD capabilities of the host processor.
//
// Detection runs at most once per process, on the first call to Detect, and
// the result is cached for the process lifetime. Concurrent first callers
// block until detection completes; nobody ever observes a partial result.
package cpu

import (
	"os"
	"runtime"
	"strconv"
	"sync"
)

// Level identifies the widest kernel variant the host can execute.
type Level int

const (
	// LevelScalar means no vector kernels are available.
	LevelScalar Level = iota
	// LevelNEON means ARM Advanced SIMD (128-bit vectors).
	LevelNEON
	// LevelAVX2 means x86 AVX2 (256-bit vectors).
	LevelAVX2
	// LevelAVX512 means x86 AVX-512 (512-bit vectors).
	LevelAVX512
)

func (l Level) String() string {
	switch l {
	case LevelScalar:
		return "scalar"
	case LevelNEON:
		return "neon"
	case LevelAVX2:
		return "avx2"
	case LevelAVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// Width returns the vector register width in bytes for the level.
func (l Level) Width() int {
	switch l {
	case LevelNEON:
		return 16
	case LevelAVX2:
		return 32
	case LevelAVX512:
		return 64
	default:
		return 8
	}
}

// Features describes the capabilities detected on this host. The value is
// immutable once published by Detect.
type Features struct {
	// Best is the widest vector level usable by the kernel set in this
	// build. It can be narrower than what the silicon supports when the
	// build lacks vector kernel support.
	Best Level

	// Raw instruction-set flags, reported for diagnostics regardless of
	// whether the build can use them.
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool

	// ForceScalar is set when KODEGEN_NO_SIMD disabled vector dispatch.
	ForceScalar bool

	// Arch is runtime.GOARCH at detection time.
	Arch string
}

var (
	detectOnce sync.Once
	detected   Features

	forcedMu sync.RWMutex
	forced   *Features
)

// Detect returns the host capability descriptor, probing the CPU on the
// first call only. Safe for concurrent use; never fails. A host with no
// SIMD support simply reports LevelScalar.
func Detect() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()
	if f != nil {
		return *f
	}

	detectOnce.Do(func() {
		detected = probe()
		detected.Arch = runtime.GOARCH
		if noSimdEnv() {
			detected.ForceScalar = true
			detected.Best = LevelScalar
		}
	})
	return detected
}

// SetForced overrides detection with a fixed descriptor. Testing only.
func SetForced(f Features) {
	forcedMu.Lock()
	v := f
	forced = &v
	forcedMu.Unlock()
}

// ResetForced clears a SetForced override. Testing only.
func ResetForced() {
	forcedMu.Lock()
	forced = nil
	forcedMu.Unlock()
}

// noSimdEnv reports whether KODEGEN_NO_SIMD requests scalar-only dispatch.
func noSimdEnv() bool {
	val := os.Getenv("KODEGEN_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}
