package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTagSet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want TagSet
	}{
		{"empty string", "", NewTagSet()},
		{"single tag", "linux", NewTagSet("linux")},
		{"comma separated", "a,b,c", NewTagSet("a", "b", "c")},
		{"space after comma", "tv, 4k", NewTagSet("tv", "4k")},
		{"duplicates collapse", "a,a,b", NewTagSet("a", "b")},
		{"trailing comma", "a,b,", NewTagSet("a", "b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ParseTagSet(tt.in).Equal(tt.want))
		})
	}
}

func TestTagSetEqual(t *testing.T) {
	assert.True(t, NewTagSet("a", "b").Equal(NewTagSet("b", "a")))
	assert.True(t, NewTagSet().Equal(NewTagSet()))
	assert.False(t, NewTagSet("a").Equal(NewTagSet("a", "b")))
	assert.False(t, NewTagSet("a", "b").Equal(NewTagSet("a", "c")))
	assert.False(t, NewTagSet().Equal(NewTagSet("a")))
}

func TestTagSetString(t *testing.T) {
	assert.Equal(t, "[a, b, c]", NewTagSet("c", "a", "b").String())
	assert.Equal(t, "[]", NewTagSet().String())
}

func TestSnapshotNumeric(t *testing.T) {
	s := Snapshot{Numerics: map[string]float64{FieldRatio: 1.5}}

	v, ok := s.Numeric(FieldRatio)
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = s.Numeric(FieldSeedingTime)
	assert.False(t, ok)
}
