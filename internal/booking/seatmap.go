package booking

// Tier is the pricing category of a seat.  A show carries one price per
// tier; a booking is priced against exactly one tier.
type Tier string

const (
	TierClassic Tier = "CLASSIC" // standard seating, priced at the show's classic rate
	TierPremium Tier = "PREMIUM" // premium rows, priced at the show's premium rate
)

// Seat is one cell of a show's seat map snapshot.  The label is the stable
// row-letter + column-number identifier users see on screen (e.g. "C7").
// Availability is a point-in-time hint; the authoritative check happens at
// order creation.
type Seat struct {
	Label       string `json:"label"`        // row letter + column number, e.g. "A1"
	Row         string `json:"row"`          // row letter(s)
	Number      uint32 `json:"number"`       // 1-based column number within the row
	Tier        Tier   `json:"tier"`         // CLASSIC or PREMIUM
	PriceCents  uint32 `json:"price_cents"`  // unit price for this seat, from the show's tier price
	IsAvailable bool   `json:"is_available"` // snapshot availability; may be stale
}

// SeatMap is the rectangular grid of seats for a show, fetched once per
// checkout attempt from the seat map collaborator.
type SeatMap struct {
	ShowID uint64 `json:"show_id"`
	Rows   uint32 `json:"rows"`
	Cols   uint32 `json:"cols"`
	Seats  []Seat `json:"seats"`
}

// Seat returns the seat with the given label and whether it exists.
func (m SeatMap) Seat(label string) (Seat, bool) {
	for _, s := range m.Seats {
		if s.Label == label {
			return s, true
		}
	}
	return Seat{}, false
}

// markTaken returns a copy of the seat map with the given labels flagged
// unavailable.  Used when the order processor reports seats taken so the
// stale snapshot reflects reality without a refetch.
func (m SeatMap) markTaken(labels []string) SeatMap {
	taken := make(map[string]bool, len(labels))
	for _, l := range labels {
		taken[l] = true
	}
	seats := make([]Seat, len(m.Seats))
	copy(seats, m.Seats)
	for i := range seats {
		if taken[seats[i].Label] {
			seats[i].IsAvailable = false
		}
	}
	m.Seats = seats
	return m
}
