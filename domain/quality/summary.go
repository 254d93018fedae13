package quality

// ImputationSummary records what one rule changed.
type ImputationSummary struct {
	Rule          string             `json:"rule"`
	Target        string             `json:"target"`
	ImputedCount  int                `json:"imputed_count"`
	GroupFills    map[string]float64 `json:"group_fills,omitempty"`
	FallbackCount int                `json:"fallback_count"`
	GlobalMedian  float64            `json:"global_median,omitempty"`
	SentinelLabel string             `json:"sentinel_label,omitempty"`
}

// RemediationSummary records the effect of remediating one field.
type RemediationSummary struct {
	Field            string        `json:"field"`
	Policy           Policy        `json:"policy"`
	ProcessedField   string        `json:"processed_field"`
	LogField         string        `json:"log_field,omitempty"`
	ClippedCount     int           `json:"clipped_count"`
	PreCount         int           `json:"pre_count"`
	PostCount        int           `json:"post_count"`
	PostBounds       OutlierBounds `json:"post_bounds"`
	Monotonic        bool          `json:"monotonic"`
	NegativeLogInput int           `json:"negative_log_input,omitempty"`
}
