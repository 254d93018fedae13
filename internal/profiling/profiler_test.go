package profiling

import (
	"math"
	"testing"

	"paxclean/domain/core"
	"paxclean/domain/table"
	"paxclean/internal/logging"
	"paxclean/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfiler(opts ...Option) *Profiler {
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return NewProfiler(table.PassengerSchema(), opts...)
}

func TestProfile_ZeroFareBreakdown(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Fare:     []float64{0, 0, 0, 10, 80},
		Pclass:   []float64{3, 3, 3, 2, 1},
		Survived: []float64{1, 0, 0, 1, 1},
	})

	result, err := newTestProfiler().Profile(tbl)
	require.NoError(t, err)

	zs, ok := result.Zero(table.FieldFare)
	require.True(t, ok)
	assert.Equal(t, 3, zs.ZeroCount)
	assert.InDelta(t, 0.6, zs.ZeroFrac, 1e-12)
	assert.Equal(t, table.FieldPclass, zs.BreakdownBy)

	want := map[string]int{"3": 3, "2": 0, "1": 0}
	require.Len(t, zs.Breakdown, len(want))
	for key, count := range want {
		g, ok := zs.Group(key)
		require.True(t, ok, key)
		assert.Equal(t, count, g.ZeroCount, key)
	}
	assert.Equal(t, []string{"1", "2", "3"}, []string{zs.Breakdown[0].Key, zs.Breakdown[1].Key, zs.Breakdown[2].Key})

	third, _ := zs.Group("3")
	assert.True(t, third.HasSurvival)
	assert.InDelta(t, 1.0/3.0, third.SurvivalRate, 1e-12)
	first, _ := zs.Group("1")
	assert.False(t, first.HasSurvival)
}

func TestProfile_MissingPlusPresentEqualsRows(t *testing.T) {
	config := testkit.DefaultPassengerConfig()
	config.Rows = 150
	tbl, err := testkit.NewPassengerDataGenerator(config).Generate()
	require.NoError(t, err)

	result, err := newTestProfiler().Profile(tbl)
	require.NoError(t, err)

	require.Len(t, result.Missingness.Fields, 7)
	for _, f := range result.Missingness.Fields {
		assert.Equal(t, tbl.Rows(), f.MissingCount+f.NonMissing(), f.Field)
		assert.Equal(t, tbl.Rows(), f.RowCount, f.Field)
	}
}

func TestProfile_EmptyTable(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{})
	require.Equal(t, 0, tbl.Rows())

	result, err := newTestProfiler().Profile(tbl)
	require.NoError(t, err)

	for _, f := range result.Missingness.Fields {
		assert.Zero(t, f.MissingCount)
		assert.Zero(t, f.ZeroCount)
		assert.False(t, math.IsNaN(f.MissingFrac), f.Field)
		assert.Equal(t, 0.0, f.MissingFrac)
		assert.Equal(t, 0.0, f.ZeroFrac)
	}
	for _, z := range result.Zeros {
		assert.Equal(t, 0.0, z.ZeroFrac)
	}
}

func TestProfile_TextAnomalies(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Sex:      []string{"male", "", "   ", "Unknown", "n/a", "female", ""},
		SexValid: []bool{true, true, true, true, true, true, false},
	})

	result, err := newTestProfiler().Profile(tbl)
	require.NoError(t, err)

	sex, ok := result.Missingness.Field(table.FieldSex)
	require.True(t, ok)
	assert.Equal(t, 1, sex.MissingCount)
	require.NotNil(t, sex.Text)
	assert.Equal(t, 1, sex.Text.EmptyCount)
	assert.Equal(t, 1, sex.Text.WhitespaceCount)
	assert.Equal(t, 2, sex.Text.UnknownCount)
	assert.True(t, sex.Text.Any())
	assert.Nil(t, sex.Range)
}

func TestProfile_RangeAnomalies(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Age:  []float64{-1, 0, 30, 101, math.NaN(), math.Inf(1)},
		Fare: []float64{5, 5, 5, 5, 5, 5},
	})

	result, err := newTestProfiler().Profile(tbl)
	require.NoError(t, err)

	age, ok := result.Missingness.Field(table.FieldAge)
	require.True(t, ok)
	require.NotNil(t, age.Range)
	assert.Equal(t, -1.0, age.Range.Min)
	assert.Equal(t, 101.0, age.Range.Max)
	assert.Equal(t, 1, age.Range.NegativeCount)
	assert.Equal(t, 2, age.Range.ImplausibleCount)
	assert.Equal(t, 1, age.Range.NonFiniteCount)
	assert.Equal(t, 1, age.ZeroCount)
	assert.Equal(t, 1, age.MissingCount)
	assert.Equal(t, "0 = invalid value (age cannot be 0)", age.Interpretation)

	require.NotNil(t, age.Distribution)
	assert.Equal(t, 4, age.Distribution.Count)

	fare, _ := result.Missingness.Field(table.FieldFare)
	require.NotNil(t, fare.Distribution)
	assert.Equal(t, 0.0, fare.Distribution.StdDev)
	assert.Equal(t, 0.0, fare.Distribution.Skewness)
}

func TestProfile_SchemaErrors(t *testing.T) {
	tbl, err := table.New("raw", table.NewNumeric(table.FieldSurvived, []float64{1}))
	require.NoError(t, err)

	_, err = newTestProfiler().Profile(tbl)
	require.Error(t, err)
	assert.True(t, core.IsSchemaError(err))

	wrongKind, err := table.New("raw",
		table.NewCategorical(table.FieldSurvived, []string{"yes"}, nil),
	)
	require.NoError(t, err)
	_, err = newTestProfiler().Profile(wrongKind)
	assert.ErrorIs(t, err, core.ErrWrongKind)
}

func TestProfile_NoBreakdown(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{Fare: []float64{0, 1}})

	result, err := newTestProfiler(WithBreakdown("")).Profile(tbl)
	require.NoError(t, err)

	zs, ok := result.Zero(table.FieldFare)
	require.True(t, ok)
	assert.Equal(t, 1, zs.ZeroCount)
	assert.Empty(t, zs.Breakdown)
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		field string
		want  string
		valid bool
	}{
		{table.FieldSurvived, "0 = did not survive (valid value)", true},
		{table.FieldPclass, "0 = invalid value (classes: 1,2,3)", false},
		{table.FieldAge, "0 = invalid value (age cannot be 0)", false},
		{table.FieldSibSp, "0 = none aboard (valid value)", true},
		{table.FieldFare, "0 = free ticket (needs review)", false},
	}
	schema := table.PassengerSchema()
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			desc, ok := schema.Field(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.want, Interpret(desc))
			assert.Equal(t, tt.valid, ZeroIsValid(desc.Role))
		})
	}
}

func TestProfile_NegativesAndZeroValidity(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Age:  []float64{-5, 20, 30},
		Fare: []float64{-10, 0, 5},
	})

	result, err := newTestProfiler().Profile(tbl)
	require.NoError(t, err)

	tests := []struct {
		field     string
		negatives int
		zeroValid bool
	}{
		{table.FieldAge, 1, false},
		{table.FieldFare, 1, false},
		{table.FieldSibSp, 0, true},
		{table.FieldSurvived, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			fm, ok := result.Missingness.Field(tt.field)
			require.True(t, ok)
			require.NotNil(t, fm.Range)
			assert.Equal(t, tt.negatives, fm.Range.NegativeCount)
			assert.Equal(t, tt.zeroValid, fm.ZeroValid)

			zs, ok := result.Zero(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.zeroValid, zs.ZeroValid)
		})
	}
}

func TestProfile_NegativesIgnoredWithoutFlag(t *testing.T) {
	schema, err := table.NewSchema(table.FieldDescriptor{Name: "Balance", Kind: table.KindNumeric, Role: table.RoleCurrency})
	require.NoError(t, err)
	tbl, err := table.New("raw", table.NewNumeric("Balance", []float64{-3, 4}))
	require.NoError(t, err)

	result, err := NewProfiler(schema, WithBreakdown(""), WithLogger(logging.Discard())).Profile(tbl)
	require.NoError(t, err)
	fm, ok := result.Missingness.Field("Balance")
	require.True(t, ok)
	assert.Zero(t, fm.Range.NegativeCount)
	assert.Equal(t, -3.0, fm.Range.Min)
}
