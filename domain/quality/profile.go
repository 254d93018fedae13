package quality

import "paxclean/domain/table"

// FieldMissingness is the profile of one field.
type FieldMissingness struct {
	Field          string     `json:"field"`
	Kind           table.Kind `json:"kind"`
	Role           table.Role `json:"role"`
	RowCount       int        `json:"row_count"`
	MissingCount   int        `json:"missing_count"`
	MissingFrac    float64    `json:"missing_fraction"`
	ZeroCount      int        `json:"zero_count"`
	ZeroFrac       float64    `json:"zero_fraction"`
	ZeroValid      bool       `json:"zero_valid"`
	Interpretation string     `json:"interpretation"`

	Text         *TextAnomalies  `json:"text,omitempty"`
	Range        *RangeAnomalies `json:"range,omitempty"`
	Distribution *Distribution   `json:"distribution,omitempty"`
}

// NonMissing is RowCount minus MissingCount.
func (f FieldMissingness) NonMissing() int {
	return f.RowCount - f.MissingCount
}

// TextAnomalies lists suspicious present values of a categorical field.
// Whitespace counts exclude empty strings.
type TextAnomalies struct {
	EmptyCount      int `json:"empty_count"`
	WhitespaceCount int `json:"whitespace_count"`
	UnknownCount    int `json:"unknown_count"`
}

// Any reports whether at least one anomaly was found.
func (a TextAnomalies) Any() bool {
	return a.EmptyCount > 0 || a.WhitespaceCount > 0 || a.UnknownCount > 0
}

// RangeAnomalies summarizes the range of a numeric field. Min and Max cover
// finite values only and are 0 when there are none.
type RangeAnomalies struct {
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	NegativeCount    int     `json:"negative_count"`
	ImplausibleAbove float64 `json:"implausible_above,omitempty"`
	ImplausibleCount int     `json:"implausible_count"`
	OutOfDomainCount int     `json:"out_of_domain_count"`
	NonFiniteCount   int     `json:"non_finite_count"`
}

// Distribution describes the shape of the finite values of a numeric field.
type Distribution struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Median   float64 `json:"median"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"excess_kurtosis"`
}

// Skewed reports whether the absolute skewness exceeds 1.
func (d Distribution) Skewed() bool {
	return d.Skewness > 1 || d.Skewness < -1
}

// MissingnessReport maps each profiled field to its profile, in schema order.
type MissingnessReport struct {
	RowCount int                `json:"row_count"`
	Fields   []FieldMissingness `json:"fields"`
}

// Field looks up a field profile by name.
func (r MissingnessReport) Field(name string) (FieldMissingness, bool) {
	for _, f := range r.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldMissingness{}, false
}

// TotalMissing sums missing counts across fields.
func (r MissingnessReport) TotalMissing() int {
	n := 0
	for _, f := range r.Fields {
		n += f.MissingCount
	}
	return n
}

// ZeroGroup is the zero-value count of one breakdown group.
type ZeroGroup struct {
	Key          string  `json:"key"`
	ZeroCount    int     `json:"zero_count"`
	SurvivalRate float64 `json:"survival_rate"`
	HasSurvival  bool    `json:"has_survival"`
}

// ZeroSummary is the zero-value summary of one numeric field.
type ZeroSummary struct {
	Field          string      `json:"field"`
	ZeroCount      int         `json:"zero_count"`
	ZeroFrac       float64     `json:"zero_fraction"`
	ZeroValid      bool        `json:"zero_valid"`
	Interpretation string      `json:"interpretation"`
	BreakdownBy    string      `json:"breakdown_by,omitempty"`
	Breakdown      []ZeroGroup `json:"breakdown,omitempty"`
}

// Group looks up a breakdown group by key.
func (z ZeroSummary) Group(key string) (ZeroGroup, bool) {
	for _, g := range z.Breakdown {
		if g.Key == key {
			return g, true
		}
	}
	return ZeroGroup{}, false
}

// ProfileResult is the output of the profiling stage.
type ProfileResult struct {
	Missingness MissingnessReport `json:"missingness"`
	Zeros       []ZeroSummary     `json:"zeros"`
}

// Zero looks up the zero summary of a field.
func (p ProfileResult) Zero(field string) (ZeroSummary, bool) {
	for _, z := range p.Zeros {
		if z.Field == field {
			return z, true
		}
	}
	return ZeroSummary{}, false
}
