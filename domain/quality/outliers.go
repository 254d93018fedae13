package quality

// OutlierBounds are the IQR fences of one field for one table version.
type OutlierBounds struct {
	Field      string  `json:"field"`
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	SampleSize int     `json:"sample_size"`
	// Degenerate is set when IQR is zero or no finite values exist.
	Degenerate bool `json:"degenerate"`
}

// Contains reports whether v lies inside [Lower, Upper].
func (b OutlierBounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// OutlierSet is the set of rows of a field outside its bounds.
type OutlierSet struct {
	Field        string        `json:"field"`
	TableVersion int           `json:"table_version"`
	Bounds       OutlierBounds `json:"bounds"`
	Rows         []int         `json:"rows"`
}

// Count returns the number of outlier rows.
func (s OutlierSet) Count() int {
	return len(s.Rows)
}

// Fraction returns the outlier share of rowCount.
func (s OutlierSet) Fraction(rowCount int) float64 {
	if rowCount == 0 {
		return 0
	}
	return float64(len(s.Rows)) / float64(rowCount)
}
