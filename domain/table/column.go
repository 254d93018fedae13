package table

import (
	"math"
	"strconv"
)

// MissingKey is the grouping key used for a missing value.
const MissingKey = "<missing>"

// Column is an immutable, typed column of values.
// Numeric columns mark missing entries with NaN. Categorical columns carry an
// explicit validity mask, so an empty string is a present value.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	strs  []string
	valid []bool
}

// NewNumeric creates a numeric column. NaN entries are missing.
func NewNumeric(name string, values []float64) *Column {
	nums := make([]float64, len(values))
	copy(nums, values)
	return &Column{name: name, kind: KindNumeric, nums: nums}
}

// NewCategorical creates a categorical column. A nil valid mask means every
// entry is present; otherwise valid[i] == false marks row i as missing.
func NewCategorical(name string, values []string, valid []bool) *Column {
	strs := make([]string, len(values))
	copy(strs, values)
	mask := make([]bool, len(values))
	for i := range mask {
		mask[i] = valid == nil || (i < len(valid) && valid[i])
		if !mask[i] {
			strs[i] = ""
		}
	}
	return &Column{name: name, kind: KindCategorical, strs: strs, valid: mask}
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of rows.
func (c *Column) Len() int {
	if c.kind == KindNumeric {
		return len(c.nums)
	}
	return len(c.strs)
}

// IsMissing reports whether row i holds the missing marker.
func (c *Column) IsMissing(i int) bool {
	if c.kind == KindNumeric {
		return math.IsNaN(c.nums[i])
	}
	return !c.valid[i]
}

// MissingCount counts missing entries.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Float returns the numeric value at row i and whether it is present.
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != KindNumeric {
		return math.NaN(), false
	}
	v := c.nums[i]
	return v, !math.IsNaN(v)
}

// Str returns the categorical value at row i and whether it is present.
func (c *Column) Str(i int) (string, bool) {
	if c.kind != KindCategorical {
		return "", false
	}
	return c.strs[i], c.valid[i]
}

// Floats returns a copy of the numeric values, NaN where missing.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.nums))
	copy(out, c.nums)
	return out
}

// Observed returns the present numeric values in row order.
func (c *Column) Observed() []float64 {
	out := make([]float64, 0, len(c.nums))
	for _, v := range c.nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Strings returns copies of the categorical values and validity mask.
func (c *Column) Strings() ([]string, []bool) {
	strs := make([]string, len(c.strs))
	copy(strs, c.strs)
	valid := make([]bool, len(c.valid))
	copy(valid, c.valid)
	return strs, valid
}

// Key renders row i as a grouping key.
func (c *Column) Key(i int) string {
	if c.IsMissing(i) {
		return MissingKey
	}
	if c.kind == KindNumeric {
		return strconv.FormatFloat(c.nums[i], 'g', -1, 64)
	}
	return c.strs[i]
}
