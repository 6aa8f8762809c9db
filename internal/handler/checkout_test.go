package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavehz/movie-booking/internal/booking"
	"github.com/kavehz/movie-booking/internal/config"
	"github.com/kavehz/movie-booking/internal/store"
)

// memSessions is an in-memory SessionStore for tests.
type memSessions struct {
	items map[uint64]booking.Checkout
}

func newMemSessions() *memSessions {
	return &memSessions{items: map[uint64]booking.Checkout{}}
}

func (s *memSessions) Load(ctx context.Context, userID uint64) (booking.Checkout, error) {
	co, ok := s.items[userID]
	if !ok {
		return booking.Checkout{}, store.ErrNoCheckout
	}
	return co, nil
}

func (s *memSessions) Save(ctx context.Context, userID uint64, co booking.Checkout) error {
	s.items[userID] = co
	return nil
}

func (s *memSessions) Delete(ctx context.Context, userID uint64) error {
	delete(s.items, userID)
	return nil
}

type stubProvider struct {
	m booking.SeatMap
}

func (p stubProvider) FetchSeatMap(ctx context.Context, showID uint64) (booking.SeatMap, error) {
	return p.m, nil
}

type stubOrders struct {
	createErr  error
	confirmErr error
	ref        string
	receipt    booking.Receipt
}

func (o *stubOrders) CreateOrder(ctx context.Context, user booking.UserIdentity, showID uint64, seatLabels []string, tier booking.Tier, totalCents uint32) (string, error) {
	if o.createErr != nil {
		return "", o.createErr
	}
	return o.ref, nil
}

func (o *stubOrders) ConfirmPayment(ctx context.Context, orderRef string, proof booking.PaymentProof) (booking.Receipt, error) {
	if o.confirmErr != nil {
		return booking.Receipt{}, o.confirmErr
	}
	return o.receipt, nil
}

func gridSeatMap() booking.SeatMap {
	return booking.SeatMap{
		ShowID: 5,
		Rows:   1,
		Cols:   3,
		Seats: []booking.Seat{
			{Label: "A1", Row: "A", Number: 1, Tier: booking.TierClassic, PriceCents: 20000, IsAvailable: true},
			{Label: "A2", Row: "A", Number: 2, Tier: booking.TierClassic, PriceCents: 20000, IsAvailable: true},
			{Label: "A3", Row: "A", Number: 3, Tier: booking.TierClassic, PriceCents: 20000, IsAvailable: false},
		},
	}
}

func testHandler(sessions SessionStore, orders booking.OrderProcessor) *CheckoutHandler {
	cfg := config.Config{ConvenienceFeeCents: 3000, TaxRatePercent: 18, MaxSeatsPerBooking: 10}
	return NewCheckoutHandler(cfg, sessions, stubProvider{m: gridSeatMap()}, orders, nil, nil, nil)
}

// call builds an echo context with authenticated claims and runs the handler.
func call(t *testing.T, h echo.HandlerFunc, method, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	c.Set("user_id", uint64(7))
	c.Set("role", "USER")
	require.NoError(t, h(c))
	return rec
}

func TestCheckoutOpenStartsSelecting(t *testing.T) {
	sessions := newMemSessions()
	h := testHandler(sessions, &stubOrders{ref: "ref-1"})

	rec := call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	co, ok := sessions.items[7]
	require.True(t, ok)
	assert.Equal(t, booking.StageSelectingSeats, co.Stage)
	assert.Equal(t, uint64(5), co.ShowID)
}

func TestCheckoutCurrentWithoutSession(t *testing.T) {
	h := testHandler(newMemSessions(), &stubOrders{})

	rec := call(t, h.Current, http.MethodGet, "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutToggleAddsSeatAndPrices(t *testing.T) {
	sessions := newMemSessions()
	h := testHandler(sessions, &stubOrders{})
	call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})

	rec := call(t, h.ToggleSeat, http.MethodPost, `{"seat":"a1"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Item struct {
			ChosenSeats []string `json:"chosen_seats"`
			Breakdown   *struct {
				SubtotalCents uint32 `json:"subtotal_cents"`
				TotalCents    uint32 `json:"total_cents"`
			} `json:"breakdown"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"A1"}, resp.Item.ChosenSeats)
	require.NotNil(t, resp.Item.Breakdown)
	assert.Equal(t, uint32(20000), resp.Item.Breakdown.SubtotalCents)
	assert.Equal(t, uint32(26600), resp.Item.Breakdown.TotalCents)
}

func TestCheckoutToggleTakenSeat(t *testing.T) {
	sessions := newMemSessions()
	h := testHandler(sessions, &stubOrders{})
	call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})

	rec := call(t, h.ToggleSeat, http.MethodPost, `{"seat":"A3"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sessions.items[7].ChosenSeats)
}

func TestCheckoutFinalizeEmptySelection(t *testing.T) {
	sessions := newMemSessions()
	h := testHandler(sessions, &stubOrders{})
	call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})

	rec := call(t, h.Finalize, http.MethodPost, "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, booking.StageSelectingSeats, sessions.items[7].Stage)
}

func TestCheckoutFullFlow(t *testing.T) {
	sessions := newMemSessions()
	orders := &stubOrders{
		ref:     "ord-1",
		receipt: booking.Receipt{BookingID: 11, ConfirmationRef: "ord-1", AmountCents: 26600},
	}
	h := testHandler(sessions, orders)

	call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})
	call(t, h.ToggleSeat, http.MethodPost, `{"seat":"A1"}`, nil)

	rec := call(t, h.Finalize, http.MethodPost, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, booking.StageReviewingSummary, sessions.items[7].Stage)

	rec = call(t, h.Confirm, http.MethodPost, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, booking.StageAwaitingPayment, sessions.items[7].Stage)
	assert.Equal(t, "ord-1", sessions.items[7].OrderRef)

	rec = call(t, h.Payment, http.MethodPost, `{"method":"UPI","provider_ref":"pay_1"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Receipt booking.Receipt `json:"receipt"`
		Stage   booking.Stage   `json:"stage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(11), resp.Receipt.BookingID)
	assert.Equal(t, booking.StageCompleted, resp.Stage)

	// the session ends with the purchase
	_, ok := sessions.items[7]
	assert.False(t, ok)
}

func TestCheckoutConfirmSeatsTaken(t *testing.T) {
	sessions := newMemSessions()
	orders := &stubOrders{createErr: &booking.SeatsTakenError{Labels: []string{"A1"}}}
	h := testHandler(sessions, orders)

	call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})
	call(t, h.ToggleSeat, http.MethodPost, `{"seat":"A1"}`, nil)
	call(t, h.ToggleSeat, http.MethodPost, `{"seat":"A2"}`, nil)
	call(t, h.Finalize, http.MethodPost, "", nil)

	rec := call(t, h.Confirm, http.MethodPost, "", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	// the corrected snapshot was saved: A1 deselected and marked taken
	co := sessions.items[7]
	assert.Equal(t, booking.StageReviewingSummary, co.Stage)
	assert.Equal(t, []string{"A2"}, co.ChosenSeats)
	seat, ok := co.SeatMap.Seat("A1")
	require.True(t, ok)
	assert.False(t, seat.IsAvailable)
}

func TestCheckoutPaymentRejected(t *testing.T) {
	sessions := newMemSessions()
	orders := &stubOrders{
		ref:        "ord-2",
		confirmErr: &booking.PaymentError{Code: "DECLINED", Message: "card declined"},
	}
	h := testHandler(sessions, orders)

	call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})
	call(t, h.ToggleSeat, http.MethodPost, `{"seat":"A1"}`, nil)
	call(t, h.Finalize, http.MethodPost, "", nil)
	call(t, h.Confirm, http.MethodPost, "", nil)

	rec := call(t, h.Payment, http.MethodPost, `{"method":"CARD"}`, nil)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	// the order stays open so the payment can be retried
	assert.Equal(t, booking.StageAwaitingPayment, sessions.items[7].Stage)
}

func TestCheckoutPaymentUnknownMethod(t *testing.T) {
	sessions := newMemSessions()
	h := testHandler(sessions, &stubOrders{ref: "ord-3"})

	call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})
	call(t, h.ToggleSeat, http.MethodPost, `{"seat":"A1"}`, nil)
	call(t, h.Finalize, http.MethodPost, "", nil)
	call(t, h.Confirm, http.MethodPost, "", nil)

	rec := call(t, h.Payment, http.MethodPost, `{"method":"CASH"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutAbortDropsSession(t *testing.T) {
	sessions := newMemSessions()
	h := testHandler(sessions, &stubOrders{})

	call(t, h.Open, http.MethodPost, "", map[string]string{"id": "5"})
	rec := call(t, h.Abort, http.MethodDelete, "", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := sessions.items[7]
	assert.False(t, ok)
}
