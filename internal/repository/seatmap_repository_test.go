package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavehz/movie-booking/internal/booking"
)

func TestBuildSeatMapGrid(t *testing.T) {
	show := &Show{
		ID:                9,
		ClassicPriceCents: 20000,
		PremiumPriceCents: 35000,
		SeatRows:          3,
		SeatCols:          4,
		PremiumRows:       1,
	}
	taken := map[string]bool{"A2": true, "C4": true}

	m := BuildSeatMap(show, taken)

	assert.Equal(t, uint64(9), m.ShowID)
	assert.Equal(t, uint32(3), m.Rows)
	assert.Equal(t, uint32(4), m.Cols)
	require.Len(t, m.Seats, 12)

	a1, ok := m.Seat("A1")
	require.True(t, ok)
	assert.Equal(t, booking.TierClassic, a1.Tier)
	assert.Equal(t, uint32(20000), a1.PriceCents)
	assert.True(t, a1.IsAvailable)

	a2, ok := m.Seat("A2")
	require.True(t, ok)
	assert.False(t, a2.IsAvailable)

	// the last row is premium
	c1, ok := m.Seat("C1")
	require.True(t, ok)
	assert.Equal(t, booking.TierPremium, c1.Tier)
	assert.Equal(t, uint32(35000), c1.PriceCents)

	c4, ok := m.Seat("C4")
	require.True(t, ok)
	assert.False(t, c4.IsAvailable)
}

func TestBuildSeatMapWithoutPremiumRows(t *testing.T) {
	show := &Show{ID: 3, ClassicPriceCents: 15000, PremiumPriceCents: 30000, SeatRows: 2, SeatCols: 2}

	m := BuildSeatMap(show, nil)

	for _, s := range m.Seats {
		assert.Equal(t, booking.TierClassic, s.Tier)
		assert.Equal(t, uint32(15000), s.PriceCents)
		assert.True(t, s.IsAvailable)
	}
}

func TestIndexToRowLabel(t *testing.T) {
	cases := map[int]string{
		0:  "A",
		1:  "B",
		25: "Z",
		26: "AA",
		27: "AB",
		51: "AZ",
		52: "BA",
	}
	for idx, want := range cases {
		assert.Equal(t, want, indexToRowLabel(idx), "index %d", idx)
	}
}
