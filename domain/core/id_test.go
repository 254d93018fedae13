package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()

	tests := []struct {
		input    string
		hasError bool
	}{
		{valid, false},
		{"  " + valid + " ", false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseRunID(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for input %q: %v", tt.input, err)
			}
			if result.String() != valid {
				t.Errorf("Expected %q, got %q", valid, result)
			}
		})
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a, err := NewFingerprint([]byte("Age,Fare"))
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	b, _ := NewFingerprint([]byte("Age,Fare"))
	c, _ := NewFingerprint([]byte("Age,Fare "))

	if a != b {
		t.Errorf("Expected identical fingerprints, got %s and %s", a, b)
	}
	if a == c {
		t.Errorf("Expected different fingerprints for different content")
	}
	if len(a.String()) != 16 {
		t.Errorf("Expected 16 hex chars, got %q", a)
	}
}

func TestSchemaErrorClassification(t *testing.T) {
	if !IsSchemaError(NewFieldNotFoundError("Age")) {
		t.Error("Expected missing field to be a schema error")
	}
	if !IsSchemaError(NewValueDomainError("Pclass", 3, 4)) {
		t.Error("Expected domain violation to be a schema error")
	}
	if IsSchemaError(NewImputationGapError("Age", "no observed values")) {
		t.Error("Imputation gap must not be a schema error")
	}
	if !IsImputationGap(NewImputationGapError("Age", "no observed values")) {
		t.Error("Expected imputation gap classification")
	}
}
