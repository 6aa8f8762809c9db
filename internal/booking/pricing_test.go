package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classicSeat(label string, priceCents uint32) Seat {
	return Seat{Label: label, Tier: TierClassic, PriceCents: priceCents, IsAvailable: true}
}

func TestPriceSeats_TwoClassicSeats(t *testing.T) {
	// Two classic seats at 200.00 each: subtotal 400.00, fee 60.00,
	// tax 72.00, total 532.00.
	seats := []Seat{classicSeat("A1", 20000), classicSeat("A2", 20000)}

	bd, err := PriceSeats(seats, DefaultPricing)
	require.NoError(t, err)

	assert.Equal(t, uint32(40000), bd.SubtotalCents)
	assert.Equal(t, uint32(6000), bd.ConvenienceFeeCents)
	assert.Equal(t, uint32(7200), bd.TaxCents)
	assert.Equal(t, uint32(53200), bd.TotalCents)
}

func TestPriceSeats_SinglePremiumSeat(t *testing.T) {
	// One premium seat at 350.00: subtotal 350.00, fee 30.00, tax 63.00,
	// total 443.00.
	seats := []Seat{{Label: "H5", Tier: TierPremium, PriceCents: 35000, IsAvailable: true}}

	bd, err := PriceSeats(seats, DefaultPricing)
	require.NoError(t, err)

	assert.Equal(t, uint32(35000), bd.SubtotalCents)
	assert.Equal(t, uint32(3000), bd.ConvenienceFeeCents)
	assert.Equal(t, uint32(6300), bd.TaxCents)
	assert.Equal(t, uint32(44300), bd.TotalCents)
}

func TestPriceSeats_TaxExcludesConvenienceFee(t *testing.T) {
	// With a price chosen so that 18% of subtotal+fee differs from 18% of
	// the subtotal, the tax must follow the subtotal only.
	seats := []Seat{classicSeat("B1", 10000)}

	bd, err := PriceSeats(seats, DefaultPricing)
	require.NoError(t, err)

	assert.Equal(t, uint32(1800), bd.TaxCents, "tax must be computed on the subtotal, not subtotal+fee")
}

func TestPriceSeats_RoundsTaxHalfUp(t *testing.T) {
	// 18% of 125.25 is 22.545, which rounds to 22.55.
	seats := []Seat{classicSeat("C3", 12525)}

	bd, err := PriceSeats(seats, DefaultPricing)
	require.NoError(t, err)

	assert.Equal(t, uint32(2255), bd.TaxCents)
}

func TestPriceSeats_TotalNeverBelowSubtotal(t *testing.T) {
	prices := []uint32{1, 9900, 20000, 35000, 49999}
	for _, p := range prices {
		bd, err := PriceSeats([]Seat{classicSeat("A1", p)}, DefaultPricing)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, bd.TotalCents, bd.SubtotalCents)
		assert.Equal(t, bd.SubtotalCents+bd.ConvenienceFeeCents+bd.TaxCents, bd.TotalCents)
	}
}

func TestPriceSeats_Deterministic(t *testing.T) {
	seats := []Seat{classicSeat("A1", 20000), classicSeat("A2", 20000), classicSeat("A3", 20000)}

	first, err := PriceSeats(seats, DefaultPricing)
	require.NoError(t, err)
	second, err := PriceSeats(seats, DefaultPricing)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPriceSeats_EmptySelection(t *testing.T) {
	_, err := PriceSeats(nil, DefaultPricing)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestPriceSeats_TooManySeats(t *testing.T) {
	seats := make([]Seat, 11)
	for i := range seats {
		seats[i] = classicSeat("A1", 20000)
	}
	_, err := PriceSeats(seats, DefaultPricing)
	assert.ErrorIs(t, err, ErrSelectionTooLarge)
}
