package quality

// RateGroup is the outcome rate of one group.
type RateGroup struct {
	Key      string  `json:"key"`
	Count    int     `json:"count"`
	Positive int     `json:"positive"`
	Rate     float64 `json:"rate"`
}

// SurvivalBreakdown is the outcome rate per value of one field, with a
// chi-square test of independence when it is defined.
type SurvivalBreakdown struct {
	Field     string      `json:"field"`
	Groups    []RateGroup `json:"groups"`
	ChiSquare float64     `json:"chi_square,omitempty"`
	DF        int         `json:"df,omitempty"`
	PValue    float64     `json:"p_value,omitempty"`
	Tested    bool        `json:"tested"`
}

// Group looks up a group by key.
func (b SurvivalBreakdown) Group(key string) (RateGroup, bool) {
	for _, g := range b.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return RateGroup{}, false
}

// CorrelationPair is the Pearson correlation of two numeric fields over the
// rows where both are finite.
type CorrelationPair struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	R       float64 `json:"r"`
	N       int     `json:"n"`
	PValue  float64 `json:"p_value"`
	Defined bool    `json:"defined"`
}

// AnalysisSummary is the descriptive summary of the cleaned table.
type AnalysisSummary struct {
	Rows            int                 `json:"rows"`
	Outcome         string              `json:"outcome"`
	OverallRate     float64             `json:"overall_rate"`
	OutcomeObserved int                 `json:"outcome_observed"`
	Survival        []SurvivalBreakdown `json:"survival"`
	Correlations    []CorrelationPair   `json:"correlations"`
}

// Breakdown looks up the survival breakdown of a field.
func (s AnalysisSummary) Breakdown(field string) (SurvivalBreakdown, bool) {
	for _, b := range s.Survival {
		if b.Field == field {
			return b, true
		}
	}
	return SurvivalBreakdown{}, false
}

// Correlation looks up the pair of a and b in either order.
func (s AnalysisSummary) Correlation(a, b string) (CorrelationPair, bool) {
	for _, p := range s.Correlations {
		if (p.A == a && p.B == b) || (p.A == b && p.B == a) {
			return p, true
		}
	}
	return CorrelationPair{}, false
}
