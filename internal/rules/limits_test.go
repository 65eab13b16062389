package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitsIsUnset(t *testing.T) {
	assert.True(t, Limits{}.IsUnset())
	assert.False(t, Limits{Ratio: ptrF(0)}.IsUnset())
	assert.False(t, Limits{Minutes: ptrI(0)}.IsUnset())
}

func TestLimitsNeedsUpdate(t *testing.T) {
	tests := []struct {
		name       string
		limits     Limits
		curRatio   float64
		curMinutes int64
		want       bool
	}{
		{"both unset never updates", Limits{}, 5, 500, false},
		{"ratio differs", Limits{Ratio: ptrF(2)}, 1, 0, true},
		{"ratio matches", Limits{Ratio: ptrF(2)}, 2, 500, false},
		{"minutes differ", Limits{Minutes: ptrI(60)}, 0, 120, true},
		{"minutes match", Limits{Minutes: ptrI(60)}, 9, 60, false},
		{"both set one differs", Limits{Ratio: ptrF(2), Minutes: ptrI(60)}, 2, 61, true},
		{"both set both match", Limits{Ratio: ptrF(2), Minutes: ptrI(60)}, 2, 60, false},
		{"zero ratio is a real value", Limits{Ratio: ptrF(0)}, -2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.limits.NeedsUpdate(tt.curRatio, tt.curMinutes))
		})
	}
}

func TestLimitsString(t *testing.T) {
	assert.Equal(t, "ratio global, global minutes", Limits{}.String())
	assert.Equal(t, "ratio 20, 129600 minutes", Limits{Ratio: ptrF(20), Minutes: ptrI(129600)}.String())
}
