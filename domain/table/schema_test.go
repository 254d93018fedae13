package table

import (
	"math"
	"testing"

	"paxclean/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passengerTable(t *testing.T, pclass []float64) *Table {
	t.Helper()
	n := len(pclass)
	zeros := make([]float64, n)
	sex := make([]string, n)
	for i := range sex {
		sex[i] = "male"
	}
	tbl, err := New("raw",
		NewNumeric(FieldSurvived, zeros),
		NewNumeric(FieldPclass, pclass),
		NewCategorical(FieldSex, sex, nil),
		NewNumeric(FieldAge, zeros),
		NewNumeric(FieldSibSp, zeros),
		NewNumeric(FieldParCh, zeros),
		NewNumeric(FieldFare, zeros),
	)
	require.NoError(t, err)
	return tbl
}

func TestPassengerSchemaValidates(t *testing.T) {
	schema := PassengerSchema()
	assert.Len(t, schema.Fields(), 7)

	require.NoError(t, schema.Validate(passengerTable(t, []float64{1, 2, 3, math.NaN()})))
}

func TestSchemaRejectsOutOfDomainClass(t *testing.T) {
	err := PassengerSchema().Validate(passengerTable(t, []float64{1, 4}))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValueDomain)
	assert.True(t, core.IsSchemaError(err))
}

func TestSchemaRejectsMissingField(t *testing.T) {
	tbl, err := New("raw", NewNumeric(FieldAge, []float64{1}))
	require.NoError(t, err)

	err = PassengerSchema().Validate(tbl)
	assert.ErrorIs(t, err, core.ErrFieldNotFound)
}

func TestSchemaRejectsWrongKind(t *testing.T) {
	schema, err := NewSchema(FieldDescriptor{Name: "Sex", Kind: KindCategorical, Role: RoleLabel})
	require.NoError(t, err)
	tbl, _ := New("raw", NewNumeric("Sex", []float64{1}))

	assert.ErrorIs(t, schema.Validate(tbl), core.ErrWrongKind)
}

func TestNewSchemaChecksDescriptors(t *testing.T) {
	tests := []struct {
		name   string
		fields []FieldDescriptor
	}{
		{"missing name", []FieldDescriptor{{Kind: KindNumeric, Role: RoleAge}}},
		{"duplicate", []FieldDescriptor{
			{Name: "Age", Kind: KindNumeric, Role: RoleAge},
			{Name: "Age", Kind: KindNumeric, Role: RoleAge},
		}},
		{"invalid kind", []FieldDescriptor{{Name: "Age", Role: RoleAge}}},
		{"unknown role", []FieldDescriptor{{Name: "Age", Kind: KindNumeric, Role: "weird"}}},
		{"role kind mismatch", []FieldDescriptor{{Name: "Sex", Kind: KindNumeric, Role: RoleLabel}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.fields...)
			assert.Error(t, err)
		})
	}
}

func TestKindText(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("Categorical")))
	assert.Equal(t, KindCategorical, k)

	b, err := KindNumeric.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "numeric", string(b))

	assert.Error(t, k.UnmarshalText([]byte("text")))
}

func TestSchemaCountDomain(t *testing.T) {
	tests := []struct {
		name    string
		sibsp   []float64
		wantErr bool
	}{
		{"integers", []float64{0, 1, 8, math.NaN()}, false},
		{"negative", []float64{0, -3}, true},
		{"fractional", []float64{1.5, 0}, true},
		{"infinite", []float64{math.Inf(1), 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.sibsp)
			zeros := make([]float64, n)
			ones := make([]float64, n)
			sex := make([]string, n)
			for i := range ones {
				ones[i] = 1
			}
			tbl, err := New("raw",
				NewNumeric(FieldSurvived, zeros),
				NewNumeric(FieldPclass, ones),
				NewCategorical(FieldSex, sex, nil),
				NewNumeric(FieldAge, zeros),
				NewNumeric(FieldSibSp, tt.sibsp),
				NewNumeric(FieldParCh, zeros),
				NewNumeric(FieldFare, zeros),
			)
			require.NoError(t, err)

			err = PassengerSchema().Validate(tbl)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, core.ErrValueDomain)
			assert.Contains(t, err.Error(), FieldSibSp)
		})
	}
}

func TestSchemaAllowsNegativeAgeAndFare(t *testing.T) {
	tbl, err := New("raw",
		NewNumeric(FieldSurvived, []float64{0}),
		NewNumeric(FieldPclass, []float64{3}),
		NewCategorical(FieldSex, []string{"male"}, nil),
		NewNumeric(FieldAge, []float64{-5}),
		NewNumeric(FieldSibSp, []float64{0}),
		NewNumeric(FieldParCh, []float64{0}),
		NewNumeric(FieldFare, []float64{-10}),
	)
	require.NoError(t, err)

	// negatives here are range anomalies for the profiler, not schema errors
	assert.NoError(t, PassengerSchema().Validate(tbl))
}
