package table

import (
	"fmt"
	"math"

	"paxclean/domain/core"
)

// Role is the semantic role of a field. It drives anomaly interpretation and
// is configured, never inferred.
type Role string

const (
	RoleBinaryOutcome Role = "binary-outcome"
	RoleOrdinalClass  Role = "ordinal-class"
	RoleLabel         Role = "label"
	RoleAge           Role = "age-years"
	RoleCountLike     Role = "count-like"
	RoleCurrency      Role = "currency"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBinaryOutcome, RoleOrdinalClass, RoleLabel, RoleAge, RoleCountLike, RoleCurrency:
		return true
	}
	return false
}

// Kind returns the storage kind a role requires.
func (r Role) Kind() Kind {
	if r == RoleLabel {
		return KindCategorical
	}
	return KindNumeric
}

// FieldDescriptor declares one field of the schema.
type FieldDescriptor struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
	Role Role   `json:"role" yaml:"role"`
	// AllowedValues enumerates the value domain of a numeric field; empty
	// means any value.
	AllowedValues []float64 `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
	// ImplausibleAbove flags values greater than it; 0 disables the check.
	ImplausibleAbove float64 `json:"implausible_above,omitempty" yaml:"implausible_above,omitempty"`
	// NonNegative marks negative values as range anomalies.
	NonNegative bool `json:"non_negative,omitempty" yaml:"non_negative,omitempty"`
}

// Allows reports whether v is inside the field's value domain: one of
// AllowedValues when set, and a non-negative integer for count-like fields.
func (d FieldDescriptor) Allows(v float64) bool {
	if d.Role == RoleCountLike && (v < 0 || v != math.Trunc(v)) {
		return false
	}
	if len(d.AllowedValues) == 0 {
		return true
	}
	for _, a := range d.AllowedValues {
		if a == v {
			return true
		}
	}
	return false
}

// Schema is the ordered descriptor table, checked once at startup.
type Schema struct {
	fields []FieldDescriptor
	index  map[string]int
}

// NewSchema validates the descriptors and builds a schema.
func NewSchema(fields ...FieldDescriptor) (*Schema, error) {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field descriptor without name")
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field descriptor %q", f.Name)
		}
		if !f.Kind.Valid() {
			return nil, fmt.Errorf("field %q: invalid kind %s", f.Name, f.Kind)
		}
		if !f.Role.Valid() {
			return nil, fmt.Errorf("field %q: unknown role %q", f.Name, f.Role)
		}
		if f.Role.Kind() != f.Kind {
			return nil, fmt.Errorf("field %q: role %s requires a %s field", f.Name, f.Role, f.Role.Kind())
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Fields returns the descriptors in declaration order.
func (s *Schema) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a descriptor by name.
func (s *Schema) Field(name string) (FieldDescriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.fields[i], true
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks that every declared field is present with the declared kind
// and that enumerated and count domains hold. Missing values are allowed.
func (s *Schema) Validate(t *Table) error {
	for _, f := range s.fields {
		col, ok := t.Column(f.Name)
		if !ok {
			return core.NewFieldNotFoundError(f.Name)
		}
		if col.Kind() != f.Kind {
			return core.NewWrongKindError(f.Name, f.Kind.String(), col.Kind().String())
		}
		if f.Kind != KindNumeric || (len(f.AllowedValues) == 0 && f.Role != RoleCountLike) {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			v, ok := col.Float(i)
			if !ok {
				continue
			}
			if math.IsInf(v, 0) || !f.Allows(v) {
				return core.NewValueDomainError(f.Name, i, v)
			}
		}
	}
	return nil
}
