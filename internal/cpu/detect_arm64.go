//go:build arm64

package cpu

// NEON is baseline on arm64, but the kernel set in this build has no NEON
// float64 variants, so dispatch stays scalar.
func probe() Features {
	return Features{
		Best:    LevelScalar,
		HasNEON: true,
	}
}
