package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSeatMap builds a 2-row grid: row A is classic at 200.00, row B is
// premium at 350.00.  A4 is already taken.
func testSeatMap() SeatMap {
	m := SeatMap{ShowID: 42, Rows: 2, Cols: 12}
	for col := uint32(1); col <= 12; col++ {
		m.Seats = append(m.Seats, Seat{
			Label:       fmt.Sprintf("A%d", col),
			Row:         "A",
			Number:      col,
			Tier:        TierClassic,
			PriceCents:  20000,
			IsAvailable: col != 4,
		})
	}
	for col := uint32(1); col <= 12; col++ {
		m.Seats = append(m.Seats, Seat{
			Label:       fmt.Sprintf("B%d", col),
			Row:         "B",
			Number:      col,
			Tier:        TierPremium,
			PriceCents:  35000,
			IsAvailable: true,
		})
	}
	return m
}

// fakeProvider returns a fixed seat map or a configured error.
type fakeProvider struct {
	m   SeatMap
	err error
}

func (f *fakeProvider) FetchSeatMap(ctx context.Context, showID uint64) (SeatMap, error) {
	if f.err != nil {
		return SeatMap{}, f.err
	}
	return f.m, nil
}

// fakeIdentity returns a fixed user; nil means unauthenticated.
type fakeIdentity struct {
	user *UserIdentity
}

func (f *fakeIdentity) CurrentUser(ctx context.Context) (*UserIdentity, error) {
	return f.user, nil
}

// fakeOrders records calls and can be programmed to fail either step.
type fakeOrders struct {
	createErr  error
	confirmErr error

	createdSeats []string
	createdTier  Tier
	createdTotal uint32
}

func (f *fakeOrders) CreateOrder(ctx context.Context, user UserIdentity, showID uint64, seatLabels []string, tier Tier, totalCents uint32) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdSeats = seatLabels
	f.createdTier = tier
	f.createdTotal = totalCents
	return "ord-123", nil
}

func (f *fakeOrders) ConfirmPayment(ctx context.Context, orderRef string, proof PaymentProof) (Receipt, error) {
	if f.confirmErr != nil {
		return Receipt{}, f.confirmErr
	}
	return Receipt{BookingID: 7, ConfirmationRef: "conf-" + orderRef, AmountCents: 53200}, nil
}

func openTestCheckout(t *testing.T) Checkout {
	t.Helper()
	co, err := Open(context.Background(), &fakeProvider{m: testSeatMap()}, 42)
	require.NoError(t, err)
	require.Equal(t, StageSelectingSeats, co.Stage)
	return co
}

func TestOpen_ProviderFailure(t *testing.T) {
	boom := errors.New("show not found")
	_, err := Open(context.Background(), &fakeProvider{err: boom}, 42)
	assert.ErrorIs(t, err, boom)
}

func TestToggleSeat_AddAndRemove(t *testing.T) {
	co := openTestCheckout(t)

	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, co.ChosenSeats)
	assert.Equal(t, TierClassic, co.Tier())

	// Toggling the same seat again restores the prior selection.
	co, err = co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	assert.Empty(t, co.ChosenSeats)
	assert.Equal(t, Tier(""), co.Tier())
}

func TestToggleSeat_UnavailableSeat(t *testing.T) {
	co := openTestCheckout(t)

	next, err := co.ToggleSeat("A4", DefaultPricing)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	assert.Equal(t, co.ChosenSeats, next.ChosenSeats, "failed toggle must not change the selection")
}

func TestToggleSeat_UnknownLabel(t *testing.T) {
	co := openTestCheckout(t)

	_, err := co.ToggleSeat("Z99", DefaultPricing)
	assert.ErrorIs(t, err, ErrSeatUnknown)
}

func TestToggleSeat_SeatLimit(t *testing.T) {
	co := openTestCheckout(t)

	// The 10th seat succeeds, the 11th fails. Row A has 11 free seats
	// (A4 is taken), so walk past it.
	var err error
	added := 0
	for col := 1; col <= 12 && added < 10; col++ {
		label := fmt.Sprintf("A%d", col)
		if label == "A4" {
			continue
		}
		co, err = co.ToggleSeat(label, DefaultPricing)
		require.NoError(t, err)
		added++
	}
	require.Len(t, co.ChosenSeats, 10)

	_, err = co.ToggleSeat("A12", DefaultPricing)
	assert.ErrorIs(t, err, ErrSelectionLimitReached)
}

func TestToggleSeat_MixedTierRejected(t *testing.T) {
	co := openTestCheckout(t)

	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)

	next, err := co.ToggleSeat("B1", DefaultPricing)
	assert.ErrorIs(t, err, ErrMixedTierNotAllowed)
	assert.Equal(t, []string{"A1"}, next.ChosenSeats)
}

func TestToggleSeat_WrongStage(t *testing.T) {
	co := openTestCheckout(t)
	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	co, _, err = co.FinalizeSeats(DefaultPricing)
	require.NoError(t, err)

	_, err = co.ToggleSeat("A2", DefaultPricing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestClearSelection(t *testing.T) {
	co := openTestCheckout(t)
	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	co, err = co.ToggleSeat("A2", DefaultPricing)
	require.NoError(t, err)

	co = co.ClearSelection()
	assert.Empty(t, co.ChosenSeats)
	assert.Equal(t, StageSelectingSeats, co.Stage)
}

func TestFinalizeSeats_EmptySelection(t *testing.T) {
	co := openTestCheckout(t)

	next, _, err := co.FinalizeSeats(DefaultPricing)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, StageSelectingSeats, next.Stage)
}

func TestFinalizeSeats_AdvancesWithBreakdown(t *testing.T) {
	co := openTestCheckout(t)
	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	co, err = co.ToggleSeat("A2", DefaultPricing)
	require.NoError(t, err)

	co, bd, err := co.FinalizeSeats(DefaultPricing)
	require.NoError(t, err)
	assert.Equal(t, StageReviewingSummary, co.Stage)
	assert.Equal(t, uint32(40000), bd.SubtotalCents)
	assert.Equal(t, uint32(6000), bd.ConvenienceFeeCents)
	assert.Equal(t, uint32(7200), bd.TaxCents)
	assert.Equal(t, uint32(53200), bd.TotalCents)
}

func TestRestartSelection(t *testing.T) {
	co := openTestCheckout(t)
	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	co, _, err = co.FinalizeSeats(DefaultPricing)
	require.NoError(t, err)

	co, err = co.RestartSelection()
	require.NoError(t, err)
	assert.Equal(t, StageSelectingSeats, co.Stage)
	assert.Empty(t, co.ChosenSeats)
}

func TestConfirmSummary_RequiresAuth(t *testing.T) {
	co := openTestCheckout(t)
	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	co, _, err = co.FinalizeSeats(DefaultPricing)
	require.NoError(t, err)

	next, err := co.ConfirmSummary(context.Background(), &fakeIdentity{}, &fakeOrders{}, DefaultPricing)
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, StageReviewingSummary, next.Stage)
	assert.Equal(t, co.ChosenSeats, next.ChosenSeats, "auth failure must not lose the selection")
}

func TestConfirmSummary_CreatesOrder(t *testing.T) {
	co := openTestCheckout(t)
	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	co, err = co.ToggleSeat("A2", DefaultPricing)
	require.NoError(t, err)
	co, _, err = co.FinalizeSeats(DefaultPricing)
	require.NoError(t, err)

	ident := &fakeIdentity{user: &UserIdentity{ID: 9, Email: "c@example.com", Role: "USER"}}
	orders := &fakeOrders{}
	co, err = co.ConfirmSummary(context.Background(), ident, orders, DefaultPricing)
	require.NoError(t, err)

	assert.Equal(t, StageAwaitingPayment, co.Stage)
	assert.Equal(t, "ord-123", co.OrderRef)
	assert.Equal(t, []string{"A1", "A2"}, orders.createdSeats)
	assert.Equal(t, TierClassic, orders.createdTier)
	assert.Equal(t, uint32(53200), orders.createdTotal)
}

func TestConfirmSummary_SeatsTaken(t *testing.T) {
	co := openTestCheckout(t)
	co, err := co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	co, err = co.ToggleSeat("A2", DefaultPricing)
	require.NoError(t, err)
	co, _, err = co.FinalizeSeats(DefaultPricing)
	require.NoError(t, err)

	ident := &fakeIdentity{user: &UserIdentity{ID: 9}}
	orders := &fakeOrders{createErr: &SeatsTakenError{Labels: []string{"A2"}}}
	co, err = co.ConfirmSummary(context.Background(), ident, orders, DefaultPricing)

	assert.ErrorIs(t, err, ErrSeatsNoLongerAvailable)
	assert.Equal(t, StageReviewingSummary, co.Stage)
	assert.Equal(t, []string{"A1"}, co.ChosenSeats, "taken seats must be deselected")
	if s, ok := co.SeatMap.Seat("A2"); assert.True(t, ok) {
		assert.False(t, s.IsAvailable, "snapshot must reflect the taken seat")
	}
}

func TestConfirmSummary_WrongStage(t *testing.T) {
	co := openTestCheckout(t)

	_, err := co.ConfirmSummary(context.Background(), &fakeIdentity{user: &UserIdentity{ID: 9}}, &fakeOrders{}, DefaultPricing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// reviewedCheckout walks a checkout through selection and summary up to
// AwaitingPayment with seats A1+A2.
func reviewedCheckout(t *testing.T) (Checkout, *fakeOrders) {
	t.Helper()
	co := openTestCheckout(t)
	var err error
	co, err = co.ToggleSeat("A1", DefaultPricing)
	require.NoError(t, err)
	co, err = co.ToggleSeat("A2", DefaultPricing)
	require.NoError(t, err)
	co, _, err = co.FinalizeSeats(DefaultPricing)
	require.NoError(t, err)
	orders := &fakeOrders{}
	co, err = co.ConfirmSummary(context.Background(), &fakeIdentity{user: &UserIdentity{ID: 9}}, orders, DefaultPricing)
	require.NoError(t, err)
	return co, orders
}

func TestRecordPaymentSuccess_Completes(t *testing.T) {
	co, orders := reviewedCheckout(t)

	co, rcpt, err := co.RecordPaymentSuccess(context.Background(), orders, PaymentProof{Method: "UPI", ProviderRef: "upi-1"})
	require.NoError(t, err)

	assert.Equal(t, StageCompleted, co.Stage)
	assert.Empty(t, co.ChosenSeats, "selection resets after completion")
	assert.Empty(t, co.OrderRef)
	assert.Equal(t, "conf-ord-123", rcpt.ConfirmationRef)
}

func TestRecordPaymentSuccess_SeatsResold(t *testing.T) {
	co, orders := reviewedCheckout(t)
	orders.confirmErr = &SeatsTakenError{Labels: []string{"A1", "A2"}}

	co, _, err := co.RecordPaymentSuccess(context.Background(), orders, PaymentProof{Method: "CARD"})

	assert.ErrorIs(t, err, ErrSeatsNoLongerAvailable)
	assert.Equal(t, StageReviewingSummary, co.Stage)
	assert.Empty(t, co.ChosenSeats)
	assert.Empty(t, co.OrderRef)
}

func TestRecordPaymentSuccess_PaymentError(t *testing.T) {
	co, orders := reviewedCheckout(t)
	orders.confirmErr = &PaymentError{Code: "DECLINED", Message: "card declined"}

	next, _, err := co.RecordPaymentSuccess(context.Background(), orders, PaymentProof{Method: "CARD"})

	var pe *PaymentError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "DECLINED", pe.Code)
	assert.Equal(t, StageAwaitingPayment, next.Stage, "payment errors do not move the stage")
	assert.Equal(t, co.OrderRef, next.OrderRef)
}

func TestAbort(t *testing.T) {
	co, _ := reviewedCheckout(t)

	co, err := co.Abort()
	require.NoError(t, err)
	assert.Equal(t, StageCancelled, co.Stage)
	assert.Empty(t, co.ChosenSeats)

	// Terminal stages reject everything.
	_, err = co.Abort()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = co.RestartSelection()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StageSelectingSeats, StageReviewingSummary))
	assert.True(t, CanTransition(StageReviewingSummary, StageAwaitingPayment))
	assert.True(t, CanTransition(StageAwaitingPayment, StageReviewingSummary))
	assert.False(t, CanTransition(StageSelectingSeats, StageAwaitingPayment))
	assert.False(t, CanTransition(StageCompleted, StageSelectingSeats))
	assert.True(t, StageCancelled.Terminal())
	assert.False(t, StageReviewingSummary.Terminal())
}
