package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortKeys(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"numeric", []string{"3", "10", "2", MissingKey, "1"}, []string{"1", "2", "3", "10", MissingKey}},
		{"lexical", []string{"male", MissingKey, "female"}, []string{"female", "male", MissingKey}},
		{"mixed falls back to lexical", []string{"b", "2", "a"}, []string{"2", "a", "b"}},
		{"empty", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SortKeys(tt.in))
		})
	}
}
