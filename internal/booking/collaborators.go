package booking

import "context"

// UserIdentity describes the authenticated user driving the checkout.  It
// is produced by the identity collaborator; the booking package never
// inspects credentials itself.
type UserIdentity struct {
	ID    uint64
	Email string
	Role  string
}

// PaymentProof is the opaque evidence of a completed payment handed to the
// order processor.  The booking package does not interpret it.
type PaymentProof struct {
	Method      string // RAZORPAY, UPI, CARD, NETBANKING or WALLET
	ProviderRef string // transaction reference from the payment gateway
}

// Receipt is returned by the order processor once a payment is confirmed.
type Receipt struct {
	BookingID       uint64
	ConfirmationRef string
	AmountCents     uint32
}

// SeatMapProvider supplies the availability and pricing snapshot for a show.
// Implementations may fail with a not-found or transient error; the caller
// treats any failure as "cannot start selecting seats" and surfaces it.
type SeatMapProvider interface {
	FetchSeatMap(ctx context.Context, showID uint64) (SeatMap, error)
}

// OrderProcessor creates orders and confirms payments.  CreateOrder must
// perform the authoritative seat-availability check; when seats were taken
// by another buyer it returns a *SeatsTakenError naming them.
// ConfirmPayment returns a *PaymentError on rejection, or a *SeatsTakenError
// when the order's hold expired and the seats were resold.
type OrderProcessor interface {
	CreateOrder(ctx context.Context, user UserIdentity, showID uint64, seatLabels []string, tier Tier, totalCents uint32) (orderRef string, err error)
	ConfirmPayment(ctx context.Context, orderRef string, proof PaymentProof) (Receipt, error)
}

// IdentityProvider resolves the current user, if any.  A nil identity with
// a nil error means nobody is authenticated.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*UserIdentity, error)
}
