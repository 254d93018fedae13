package table

// Passenger dataset field names.
const (
	FieldSurvived = "Survived"
	FieldPclass   = "Pclass"
	FieldSex      = "Sex"
	FieldAge      = "Age"
	FieldSibSp    = "Siblings/Spouses Aboard"
	FieldParCh    = "Parents/Children Aboard"
	FieldFare     = "Fare"
)

// Derived field names.
const (
	FieldAgeProcessed   = "Age_processed"
	FieldFareProcessed  = "Fare_processed"
	FieldFareLog        = "Fare_log"
	FieldIsChild        = "IsChild"
	FieldTotalRelatives = "TotalRelatives"
	FieldAgeGroup       = "AgeGroup"
)

// ProcessedName is the derived clipped field for a source field.
func ProcessedName(field string) string { return field + "_processed" }

// LogName is the derived ln(1+x) field for a source field.
func LogName(field string) string { return field + "_log" }

// PassengerFields returns the descriptor table of the passenger dataset.
func PassengerFields() []FieldDescriptor {
	return []FieldDescriptor{
		{Name: FieldSurvived, Kind: KindNumeric, Role: RoleBinaryOutcome, AllowedValues: []float64{0, 1}},
		{Name: FieldPclass, Kind: KindNumeric, Role: RoleOrdinalClass, AllowedValues: []float64{1, 2, 3}},
		{Name: FieldSex, Kind: KindCategorical, Role: RoleLabel},
		{Name: FieldAge, Kind: KindNumeric, Role: RoleAge, NonNegative: true, ImplausibleAbove: 100},
		{Name: FieldSibSp, Kind: KindNumeric, Role: RoleCountLike, NonNegative: true},
		{Name: FieldParCh, Kind: KindNumeric, Role: RoleCountLike, NonNegative: true},
		{Name: FieldFare, Kind: KindNumeric, Role: RoleCurrency, NonNegative: true},
	}
}

// PassengerSchema builds the fixed passenger schema.
func PassengerSchema() *Schema {
	s, err := NewSchema(PassengerFields()...)
	if err != nil {
		panic("passenger schema: " + err.Error())
	}
	return s
}
