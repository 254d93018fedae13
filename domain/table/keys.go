package table

import (
	"sort"
	"strconv"
)

// SortKeys orders grouping keys in place: numerically when every key is a
// number, lexically otherwise. MissingKey always sorts last.
func SortKeys(keys []string) []string {
	numeric := true
	for _, k := range keys {
		if k == MissingKey {
			continue
		}
		if _, err := strconv.ParseFloat(k, 64); err != nil {
			numeric = false
			break
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a == MissingKey || b == MissingKey {
			return b == MissingKey && a != MissingKey
		}
		if numeric {
			x, _ := strconv.ParseFloat(a, 64)
			y, _ := strconv.ParseFloat(b, 64)
			return x < y
		}
		return a < b
	})
	return keys
}
