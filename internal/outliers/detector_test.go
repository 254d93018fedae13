package outliers

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/logging"
	"paxclean/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector() *Detector {
	return NewDetector(logging.Discard())
}

func TestDetect_AgeScenario(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Age: []float64{22, 25, 24, 900, 26},
	})

	set, warns, err := newTestDetector().Detect(tbl, table.FieldAge)
	require.NoError(t, err)
	assert.Empty(t, warns)

	b := set.Bounds
	assert.Equal(t, 24.0, b.Q1)
	assert.Equal(t, 26.0, b.Q3)
	assert.Equal(t, 2.0, b.IQR)
	assert.Equal(t, 21.0, b.Lower)
	assert.Equal(t, 29.0, b.Upper)
	assert.Equal(t, 5, b.SampleSize)
	assert.False(t, b.Degenerate)
	assert.Equal(t, []int{3}, set.Rows)
	assert.Equal(t, tbl.Version(), set.TableVersion)
	assert.InDelta(t, 0.2, set.Fraction(tbl.Rows()), 1e-12)
}

func TestDetect_BoundsInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(40)
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.ExpFloat64() * 30
			if rng.Float64() < 0.1 {
				values[i] = math.NaN()
			}
		}
		b := ComputeBounds("x", values, DefaultFenceFactor)
		if b.SampleSize == 0 {
			continue
		}
		assert.LessOrEqual(t, b.Lower, b.Q1)
		assert.LessOrEqual(t, b.Q1, b.Q3)
		assert.LessOrEqual(t, b.Q3, b.Upper)
		assert.LessOrEqual(t, b.Lower, b.Upper)
	}
}

func TestDetect_ConstantField(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Fare: []float64{8, 8, 8, 8},
	})

	set, warns, err := newTestDetector().Detect(tbl, table.FieldFare)
	require.NoError(t, err)
	assert.Zero(t, set.Count())
	assert.True(t, set.Bounds.Degenerate)
	assert.Equal(t, 8.0, set.Bounds.Lower)
	assert.Equal(t, 8.0, set.Bounds.Upper)
	require.Len(t, warns, 1)
	assert.Equal(t, quality.WarnDegenerateDist, warns[0].Code)
}

func TestDetect_ZeroIQRFlagsDifferentValues(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Fare: []float64{8, 8, 8, 8, 8, 100},
	})

	set, _, err := newTestDetector().Detect(tbl, table.FieldFare)
	require.NoError(t, err)
	assert.True(t, set.Bounds.Degenerate)
	assert.Equal(t, []int{5}, set.Rows)
}

func TestDetect_MissingAndInfinite(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Fare: []float64{1, 2, math.NaN(), 3, 4, math.Inf(1)},
	})

	set, warns, err := newTestDetector().Detect(tbl, table.FieldFare)
	require.NoError(t, err)
	assert.Equal(t, 5-1, set.Bounds.SampleSize)
	assert.Equal(t, []int{5}, set.Rows)
	require.Len(t, warns, 1)
	assert.Equal(t, quality.WarnNonFiniteValues, warns[0].Code)
}

func TestDetect_AllMissing(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Age: []float64{math.NaN(), math.NaN()},
	})

	set, warns, err := newTestDetector().Detect(tbl, table.FieldAge)
	require.NoError(t, err)
	assert.Zero(t, set.Count())
	assert.True(t, set.Bounds.Degenerate)
	require.Len(t, warns, 1)
}

func TestDetect_Errors(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{Age: []float64{1}})

	_, _, err := newTestDetector().Detect(tbl, "Cabin")
	assert.True(t, core.IsSchemaError(err))

	_, _, err = newTestDetector().Detect(tbl, table.FieldSex)
	assert.ErrorIs(t, err, core.ErrWrongKind)
}

func TestDetectAll(t *testing.T) {
	config := testkit.DefaultPassengerConfig()
	config.Rows = 200
	config.MissingAgeRate = 0
	tbl, err := testkit.NewPassengerDataGenerator(config).Generate()
	require.NoError(t, err)

	fields := []string{table.FieldAge, table.FieldFare, table.FieldSibSp}
	d := newTestDetector()

	sets, _, err := d.DetectAll(context.Background(), tbl, fields, 2)
	require.NoError(t, err)
	require.Len(t, sets, len(fields))
	for i, field := range fields {
		assert.Equal(t, field, sets[i].Field)
		single, _, err := d.Detect(tbl, field)
		require.NoError(t, err)
		assert.Equal(t, single, sets[i])
	}

	_, _, err = d.DetectAll(context.Background(), tbl, []string{table.FieldAge, "Cabin"}, 0)
	assert.True(t, core.IsSchemaError(err))
}

func TestDetectAll_Canceled(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{Age: []float64{1, 2, 3}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestDetector().DetectAll(ctx, tbl, []string{table.FieldAge}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
