package outliers

import (
	"math"
	"testing"

	"paxclean/domain/core"
	"paxclean/domain/quality"
	"paxclean/domain/table"
	"paxclean/internal/logging"
	"paxclean/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRemediator() *Remediator {
	return NewRemediator(newTestDetector(), logging.Discard())
}

func TestRemediate_ClipAgeScenario(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{
		Age: []float64{22, 25, 24, 900, 26},
	})
	pre, _, err := newTestDetector().Detect(tbl, table.FieldAge)
	require.NoError(t, err)

	rem, err := newTestRemediator().Remediate(tbl, pre, quality.PolicyClip)
	require.NoError(t, err)

	processed, err := rem.Table.Numeric(table.FieldAgeProcessed)
	require.NoError(t, err)
	assert.Equal(t, []float64{22, 25, 24, 29, 26}, processed.Floats())

	original, _ := rem.Table.Numeric(table.FieldAge)
	assert.Equal(t, []float64{22, 25, 24, 900, 26}, original.Floats())
	assert.False(t, rem.Table.Has(table.LogName(table.FieldAge)))

	s := rem.Summary
	assert.Equal(t, 1, s.ClippedCount)
	assert.Equal(t, 1, s.PreCount)
	assert.Equal(t, 0, s.PostCount)
	assert.True(t, s.Monotonic)
	assert.Equal(t, rem.Table.Version(), rem.Post.TableVersion)
	assert.Equal(t, table.FieldAgeProcessed, rem.Post.Field)
}

func TestRemediate_ClipLog(t *testing.T) {
	fares := []float64{0, 7.25, 8.05, 13, 26, 512.3292}
	tbl := testkit.MustTable(testkit.PassengerColumns{Fare: fares})
	pre, _, err := newTestDetector().Detect(tbl, table.FieldFare)
	require.NoError(t, err)

	rem, err := newTestRemediator().Remediate(tbl, pre, quality.PolicyClipLog)
	require.NoError(t, err)

	logged, err := rem.Table.Numeric(table.FieldFareLog)
	require.NoError(t, err)
	for i, v := range logged.Floats() {
		assert.InDelta(t, fares[i], math.Expm1(v), 1e-9)
	}

	processed, err := rem.Table.Numeric(table.FieldFareProcessed)
	require.NoError(t, err)
	for _, v := range processed.Floats() {
		assert.LessOrEqual(t, v, pre.Bounds.Upper)
		assert.GreaterOrEqual(t, v, pre.Bounds.Lower)
	}
	assert.Equal(t, table.FieldFareLog, rem.Summary.LogField)
	assert.LessOrEqual(t, rem.Summary.PostCount, rem.Summary.PreCount)
}

func TestRemediate_NegativeLogInput(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{Fare: []float64{-2, 1, 2, 3}})
	pre, _, err := newTestDetector().Detect(tbl, table.FieldFare)
	require.NoError(t, err)

	rem, err := newTestRemediator().Remediate(tbl, pre, quality.PolicyClipLog)
	require.NoError(t, err)

	logged, _ := rem.Table.Numeric(table.FieldFareLog)
	assert.True(t, logged.IsMissing(0))
	assert.Equal(t, 1, rem.Summary.NegativeLogInput)

	var codes []quality.WarningCode
	for _, w := range rem.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, quality.WarnNegativeLogInput)
}

func TestRemediate_KeepsMissing(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{Age: []float64{1, math.NaN(), 2, 3, 50}})
	pre, _, err := newTestDetector().Detect(tbl, table.FieldAge)
	require.NoError(t, err)

	rem, err := newTestRemediator().Remediate(tbl, pre, quality.PolicyClip)
	require.NoError(t, err)

	processed, _ := rem.Table.Numeric(table.FieldAgeProcessed)
	assert.True(t, processed.IsMissing(1))
	assert.Equal(t, 1, processed.MissingCount())
}

func TestRemediate_ClipsInfinite(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{Fare: []float64{1, 2, 3, 4, math.Inf(1)}})
	pre, _, err := newTestDetector().Detect(tbl, table.FieldFare)
	require.NoError(t, err)
	require.Equal(t, []int{4}, pre.Rows)

	rem, err := newTestRemediator().Remediate(tbl, pre, quality.PolicyClip)
	require.NoError(t, err)

	processed, _ := rem.Table.Numeric(table.FieldFareProcessed)
	v, _ := processed.Float(4)
	assert.Equal(t, pre.Bounds.Upper, v)
	assert.Zero(t, rem.Summary.PostCount)
}

func TestRemediate_Monotonic(t *testing.T) {
	config := testkit.DefaultPassengerConfig()
	config.Rows = 400
	config.MissingAgeRate = 0
	config.OutlierRate = 0.05
	tbl, err := testkit.NewPassengerDataGenerator(config).Generate()
	require.NoError(t, err)

	d := newTestDetector()
	pre, _, err := d.Detect(tbl, table.FieldAge)
	require.NoError(t, err)
	require.NotZero(t, pre.Count())

	rem, err := newTestRemediator().Remediate(tbl, pre, quality.PolicyClip)
	require.NoError(t, err)
	assert.LessOrEqual(t, rem.Summary.PostCount, rem.Summary.PreCount)
	assert.Equal(t, pre.Count(), rem.Summary.ClippedCount)
}

func TestRemediate_Errors(t *testing.T) {
	tbl := testkit.MustTable(testkit.PassengerColumns{Age: []float64{1, 2, 3}})
	pre, _, err := newTestDetector().Detect(tbl, table.FieldAge)
	require.NoError(t, err)

	_, err = newTestRemediator().Remediate(tbl, pre, "winsorize")
	assert.ErrorIs(t, err, core.ErrUnknownPolicy)

	next, err := tbl.Derive("other")
	require.NoError(t, err)
	_, err = newTestRemediator().Remediate(next, pre, quality.PolicyClip)
	assert.ErrorIs(t, err, core.ErrStaleBounds)
}

func TestClipAndLog1p(t *testing.T) {
	clipped, changed := Clip([]float64{-5, 0, 5, 10, math.NaN()}, 0, 6)
	assert.Equal(t, 2, changed)
	assert.Equal(t, []float64{0, 0, 5, 6}, clipped[:4])
	assert.True(t, math.IsNaN(clipped[4]))

	logged, negative := Log1p([]float64{0, math.E - 1, -0.5})
	assert.Equal(t, 1, negative)
	assert.Equal(t, 0.0, logged[0])
	assert.InDelta(t, 1.0, logged[1], 1e-12)
	assert.True(t, math.IsNaN(logged[2]))
}

func TestRemediate_ZeroIQRLeavesValues(t *testing.T) {
	fares := []float64{8, 8, 8, 8, 8, 100}
	tbl := testkit.MustTable(testkit.PassengerColumns{Fare: fares})
	pre, _, err := newTestDetector().Detect(tbl, table.FieldFare)
	require.NoError(t, err)
	require.True(t, pre.Bounds.Degenerate)

	for _, policy := range []quality.Policy{quality.PolicyClip, quality.PolicyClipLog} {
		t.Run(string(policy), func(t *testing.T) {
			rem, err := newTestRemediator().Remediate(tbl, pre, policy)
			require.NoError(t, err)

			processed, err := rem.Table.Numeric(table.FieldFareProcessed)
			require.NoError(t, err)
			assert.Equal(t, fares, processed.Floats())

			s := rem.Summary
			assert.Zero(t, s.ClippedCount)
			assert.Equal(t, s.PreCount, s.PostCount)
			assert.True(t, s.Monotonic)

			var degenerate []quality.Warning
			for _, w := range rem.Warnings {
				if w.Code == quality.WarnDegenerateDist {
					degenerate = append(degenerate, w)
				}
			}
			assert.NotEmpty(t, degenerate)
		})
	}
}
