package logits

import (
	"math"
	"sort"
)

// TopK masks every entry of buf except the k largest. Ties at the k-th
// boundary keep the lowest indices, matching the Argmax tie-break. k >= the
// buffer length is a no-op; k < 1 fails with ErrInvalidTopK.
func TopK(buf []float64, k int) error {
	if k < 1 {
		return ErrInvalidTopK
	}
	if k >= len(buf) {
		return nil
	}
	idx := unmaskedIndices(buf)
	if k >= len(idx) {
		return nil
	}
	sortByValueDesc(buf, idx)
	for _, i := range idx[k:] {
		buf[i] = Masked
	}
	return nil
}

// TopP masks the tail of the nucleus: entries are ranked by probability mass
// from a softmax snapshot over the unmasked entries, the mass is accumulated
// in rank order, and everything after the entry that first reaches p is
// masked. That boundary entry is always kept, so at least one entry
// survives. p outside (0, 1] fails with ErrInvalidTopP.
func TopP(buf []float64, p float64) error {
	if p <= 0 || p > 1 || math.IsNaN(p) {
		return ErrInvalidTopP
	}
	if p == 1 {
		return nil
	}
	idx := unmaskedIndices(buf)
	if len(idx) <= 1 {
		return nil
	}

	snapshot := make([]float64, len(buf))
	copy(snapshot, buf)
	if err := softmaxInPlace(snapshot); err != nil {
		return err
	}

	sortByValueDesc(snapshot, idx)

	cut := len(idx)
	var cum float64
	for rank, i := range idx {
		cum += snapshot[i]
		if cum >= p {
			cut = rank + 1
			break
		}
	}
	for _, i := range idx[cut:] {
		buf[i] = Masked
	}
	return nil
}

// unmaskedIndices returns the indices of entries still in play.
func unmaskedIndices(buf []float64) []int {
	idx := make([]int, 0, len(buf))
	for i, v := range buf {
		if !math.IsInf(v, -1) {
			idx = append(idx, i)
		}
	}
	return idx
}

// sortByValueDesc orders idx by descending value, breaking ties by ascending
// index so filtering stays deterministic.
func sortByValueDesc(vals []float64, idx []int) {
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := vals[idx[a]], vals[idx[b]]
		if va != vb {
			return va > vb
		}
		return idx[a] < idx[b]
	})
}
