package testkit

import (
	"paxclean/domain/table"
)

// PassengerColumns holds raw column slices of a passenger table. Nil slices
// are filled with defaults sized to the longest provided slice.
type PassengerColumns struct {
	Survived []float64
	Pclass   []float64
	Sex      []string
	SexValid []bool
	Age      []float64
	SibSp    []float64
	ParCh    []float64
	Fare     []float64
}

// Table builds a raw passenger table from the columns.
func (pc PassengerColumns) Table() (*table.Table, error) {
	n := pc.rows()
	sex := pc.Sex
	if sex == nil {
		sex = fillStrings(n, "male")
	}
	return table.New("raw",
		table.NewNumeric(table.FieldSurvived, orFill(pc.Survived, n, 0)),
		table.NewNumeric(table.FieldPclass, orFill(pc.Pclass, n, 3)),
		table.NewCategorical(table.FieldSex, sex, pc.SexValid),
		table.NewNumeric(table.FieldAge, orFill(pc.Age, n, 30)),
		table.NewNumeric(table.FieldSibSp, orFill(pc.SibSp, n, 0)),
		table.NewNumeric(table.FieldParCh, orFill(pc.ParCh, n, 0)),
		table.NewNumeric(table.FieldFare, orFill(pc.Fare, n, 7.25)),
	)
}

// MustTable builds the table and panics on error. For tests only.
func MustTable(pc PassengerColumns) *table.Table {
	t, err := pc.Table()
	if err != nil {
		panic(err)
	}
	return t
}

func (pc PassengerColumns) rows() int {
	n := 0
	for _, l := range []int{len(pc.Survived), len(pc.Pclass), len(pc.Sex), len(pc.Age), len(pc.SibSp), len(pc.ParCh), len(pc.Fare)} {
		if l > n {
			n = l
		}
	}
	return n
}

func orFill(values []float64, n int, v float64) []float64 {
	if values != nil {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func fillStrings(n int, s string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
