package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	testCases := []struct {
		name   string
		in     string
		want   Tier
		wantOk bool
	}{
		{name: "display label", in: "Top-Tier", want: TOP_TIER, wantOk: true},
		{name: "lower middle label", in: "Lower Middle-Tier", want: LOWER_MIDDLE_TIER, wantOk: true},
		{name: "short key", in: "upper", want: UPPER_TIER, wantOk: true},
		{name: "snake key", in: "lower_middle", want: LOWER_MIDDLE_TIER, wantOk: true},
		{name: "empty is untiered", in: "", want: UNTIERED, wantOk: true},
		{name: "unknown", in: "platinum", want: UNTIERED, wantOk: false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTier(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierRoundTripLabels(t *testing.T) {
	for _, tier := range TierPriority {
		got, ok := ParseTier(tier.String())
		assert.True(t, ok)
		assert.Equal(t, tier, got)
		assert.True(t, tier.Ranked())
	}
	assert.False(t, UNTIERED.Ranked())
}

func TestParseRoadStatus(t *testing.T) {
	s, ok := ParseRoadStatus(" flooded ")
	assert.True(t, ok)
	assert.Equal(t, FLOODED, s)

	s, ok = ParseRoadStatus("BLOCKED")
	assert.True(t, ok)
	assert.Equal(t, BLOCKED, s)

	_, ok = ParseRoadStatus("MUDDY")
	assert.False(t, ok)
}
