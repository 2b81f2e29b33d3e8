package solver

import "math/bits"

// ways[k][count] enumerates, as k-bit masks, every way to choose exactly
// count of k slots. Indexed by a pivot constraint's cell count (k, at most
// 8) and its required mine count. Built once at init since it depends on
// nothing but k and count.
var ways [9][9][]uint16

func init() {
	for k := 1; k <= 8; k++ {
		for m := 0; m < (1 << k); m++ {
			count := bits.OnesCount(uint(m))
			ways[k][count] = append(ways[k][count], uint16(m))
		}
	}
}
