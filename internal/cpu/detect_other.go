//go:build !amd64 && !arm64

package cpu

func probe() Features {
	return Features{Best: LevelScalar}
}
