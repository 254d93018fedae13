// Package features derives the passenger features added to the cleaned table.
package features

import (
	"fmt"
	"math"

	"paxclean/domain/table"
)

// Bin is a half-open age interval [Lower, Upper) with its label.
type Bin struct {
	Lower float64
	Upper float64
	Label string
}

// AgeBins are the default age groups.
var AgeBins = []Bin{
	{Lower: 0, Upper: 12, Label: "Child (0-12)"},
	{Lower: 12, Upper: 18, Label: "Teen (13-18)"},
	{Lower: 18, Upper: 35, Label: "Young (19-35)"},
	{Lower: 35, Upper: 60, Label: "Adult (36-60)"},
	{Lower: 60, Upper: 100, Label: "Senior (60+)"},
}

// ChildAgeLimit is the age below which a passenger is a child.
const ChildAgeLimit = 18

// Labels of the IsChild feature.
const (
	LabelTrue  = "True"
	LabelFalse = "False"
)

// Deriver computes derived feature columns.
type Deriver struct {
	ageField string
	bins     []Bin
}

// NewDeriver creates a deriver reading ages from ageField. Without bins the
// AgeBins are used; custom bins must pass ValidateBins.
func NewDeriver(ageField string, bins ...Bin) (*Deriver, error) {
	if len(bins) == 0 {
		bins = AgeBins
	}
	if err := ValidateBins(bins); err != nil {
		return nil, fmt.Errorf("invalid age bins: %w", err)
	}
	return &Deriver{ageField: ageField, bins: bins}, nil
}

// Derive returns t extended with IsChild, TotalRelatives and AgeGroup.
func (d *Deriver) Derive(t *table.Table) (*table.Table, error) {
	age, err := t.Numeric(d.ageField)
	if err != nil {
		return nil, err
	}
	sibsp, err := t.Numeric(table.FieldSibSp)
	if err != nil {
		return nil, err
	}
	parch, err := t.Numeric(table.FieldParCh)
	if err != nil {
		return nil, err
	}

	return t.Derive("features",
		IsChild(age),
		TotalRelatives(sibsp, parch),
		AgeGroup(age, d.bins),
	)
}

// IsChild labels ages below ChildAgeLimit. Missing ages stay missing.
func IsChild(age *table.Column) *table.Column {
	values := make([]string, age.Len())
	valid := make([]bool, age.Len())
	for i := range values {
		v, ok := age.Float(i)
		if !ok {
			continue
		}
		valid[i] = true
		values[i] = LabelFalse
		if v < ChildAgeLimit {
			values[i] = LabelTrue
		}
	}
	return table.NewCategorical(table.FieldIsChild, values, valid)
}

// TotalRelatives sums the two relative counts. Missing if either is missing.
func TotalRelatives(sibsp, parch *table.Column) *table.Column {
	values := make([]float64, sibsp.Len())
	for i := range values {
		a, okA := sibsp.Float(i)
		b, okB := parch.Float(i)
		if !okA || !okB {
			values[i] = math.NaN()
			continue
		}
		values[i] = a + b
	}
	return table.NewNumeric(table.FieldTotalRelatives, values)
}

// AgeGroup bins ages. Ages outside every bin are missing.
func AgeGroup(age *table.Column, bins []Bin) *table.Column {
	values := make([]string, age.Len())
	valid := make([]bool, age.Len())
	for i := range values {
		v, ok := age.Float(i)
		if !ok {
			continue
		}
		if label, ok := binLabel(v, bins); ok {
			values[i] = label
			valid[i] = true
		}
	}
	return table.NewCategorical(table.FieldAgeGroup, values, valid)
}

func binLabel(v float64, bins []Bin) (string, bool) {
	for _, b := range bins {
		if v >= b.Lower && v < b.Upper {
			return b.Label, true
		}
	}
	return "", false
}

// ValidateBins checks that every bin is labelled, non-empty and starts at or
// after the end of the previous one.
func ValidateBins(bins []Bin) error {
	for i, b := range bins {
		if b.Label == "" {
			return fmt.Errorf("bin %d has no label", i)
		}
		if !(b.Lower < b.Upper) {
			return fmt.Errorf("bin %q: lower %g must be below upper %g", b.Label, b.Lower, b.Upper)
		}
		if i > 0 && b.Lower < bins[i-1].Upper {
			return fmt.Errorf("bin %q overlaps %q", b.Label, bins[i-1].Label)
		}
	}
	return nil
}
