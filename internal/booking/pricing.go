package booking

// PricingConfig holds the constants of the price computation.  All amounts
// are integer cents so that rounding to two decimal places is exact.
type PricingConfig struct {
	ConvenienceFeeCents uint32 // flat fee charged per seat
	TaxRatePercent      uint32 // tax rate applied to the ticket subtotal only
	MaxSeats            int    // maximum seats allowed in one booking
}

// DefaultPricing mirrors the production constants: 30 currency units of
// convenience fee per seat, 18% tax, at most 10 seats per booking.
var DefaultPricing = PricingConfig{
	ConvenienceFeeCents: 3000,
	TaxRatePercent:      18,
	MaxSeats:            10,
}

// Breakdown is the monetary result of pricing a seat selection.  Totals are
// always recomputed from the chosen seats and the show's prices; they are
// never stored independently so they cannot drift out of sync.
type Breakdown struct {
	SubtotalCents       uint32 `json:"subtotal_cents"`        // sum of unit prices over chosen seats
	ConvenienceFeeCents uint32 `json:"convenience_fee_cents"` // seat count x per-seat fee
	TaxCents            uint32 `json:"tax_cents"`             // tax on the subtotal, rounded to the cent
	TotalCents          uint32 `json:"total_cents"`           // subtotal + fee + tax
}

// PriceSeats computes the breakdown for a non-empty, single-tier seat
// selection.  The function is referentially transparent: identical inputs
// always produce identical outputs and no I/O is performed.
//
// Tax is levied on the ticket subtotal only, never on the convenience fee.
// That is a business rule, not an implementation convenience.
func PriceSeats(seats []Seat, cfg PricingConfig) (Breakdown, error) {
	if len(seats) == 0 {
		return Breakdown{}, ErrInvalidSelection
	}
	if cfg.MaxSeats > 0 && len(seats) > cfg.MaxSeats {
		return Breakdown{}, ErrSelectionTooLarge
	}
	var subtotal uint64
	for _, s := range seats {
		subtotal += uint64(s.PriceCents)
	}
	fee := uint64(len(seats)) * uint64(cfg.ConvenienceFeeCents)
	// Round half up to the nearest cent.
	tax := (subtotal*uint64(cfg.TaxRatePercent) + 50) / 100
	return Breakdown{
		SubtotalCents:       uint32(subtotal),
		ConvenienceFeeCents: uint32(fee),
		TaxCents:            uint32(tax),
		TotalCents:          uint32(subtotal + fee + tax),
	}, nil
}
