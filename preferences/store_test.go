package preferences

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSportColumn(t *testing.T) {
	tests := []struct {
		sport   string
		column  string
		wantErr bool
	}{
		{"football", "default_football", false},
		{"baseball", "default_baseball", false},
		{"basketball", "default_basketball", false},
		{"hockey", "default_hockey", false},
		{"curling", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		got, err := sportColumn(tc.sport)
		if tc.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tc.column, got)
	}
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	got := nullIfEmpty("x")
	if assert.NotNil(t, got) {
		assert.Equal(t, "x", *got)
	}
}
