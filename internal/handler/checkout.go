package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavehz/movie-booking/internal/booking"
	"github.com/kavehz/movie-booking/internal/config"
	"github.com/kavehz/movie-booking/internal/queue"
	"github.com/kavehz/movie-booking/internal/repository"
	"github.com/kavehz/movie-booking/internal/service/queue_publisher"
	"github.com/kavehz/movie-booking/internal/store"
)

// SessionStore persists one in-progress checkout per user.  It is
// implemented by store.CheckoutStore.
type SessionStore interface {
	Load(ctx context.Context, userID uint64) (booking.Checkout, error)
	Save(ctx context.Context, userID uint64, co booking.Checkout) error
	Delete(ctx context.Context, userID uint64) error
}

// paymentMethods lists the methods accepted at the payment step.
var paymentMethods = map[string]bool{
	"RAZORPAY":   true,
	"UPI":        true,
	"CARD":       true,
	"NETBANKING": true,
	"WALLET":     true,
}

// CheckoutHandler drives the seat-selection and payment flow.  The flow
// state itself lives in the booking package; this handler only loads the
// checkout from the session store, applies one transition and saves the
// result.  Repositories for shows, movies and theaters are optional and
// only enrich the confirmation event; when any is nil the event is not
// published.
type CheckoutHandler struct {
	Sessions SessionStore
	SeatMaps booking.SeatMapProvider
	Orders   booking.OrderProcessor
	Shows    *repository.ShowRepo
	Movies   *repository.MovieRepo
	Theaters *repository.TheaterRepo
	Pricing  booking.PricingConfig
}

// NewCheckoutHandler constructs a CheckoutHandler.  Sessions, seatMaps and
// orders must be non-nil; the catalog repositories may be nil.
func NewCheckoutHandler(cfg config.Config, sessions SessionStore, seatMaps booking.SeatMapProvider, orders booking.OrderProcessor, shows *repository.ShowRepo, movies *repository.MovieRepo, theaters *repository.TheaterRepo) *CheckoutHandler {
	if sessions == nil || seatMaps == nil || orders == nil {
		panic("nil dependency passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{
		Sessions: sessions,
		SeatMaps: seatMaps,
		Orders:   orders,
		Shows:    shows,
		Movies:   movies,
		Theaters: theaters,
		Pricing: booking.PricingConfig{
			ConvenienceFeeCents: uint32(cfg.ConvenienceFeeCents),
			TaxRatePercent:      uint32(cfg.TaxRatePercent),
			MaxSeats:            cfg.MaxSeatsPerBooking,
		},
	}
}

// ----- DTOs -----

type toggleReq struct {
	Seat string `json:"seat"`
}
type paymentReq struct {
	Method      string `json:"method"`
	ProviderRef string `json:"provider_ref"`
}

// checkoutView is the state returned after every checkout operation.  The
// breakdown is recomputed from the current selection on each response and
// omitted while the selection is empty.
type checkoutView struct {
	ShowID      uint64             `json:"show_id"`
	Stage       booking.Stage      `json:"stage"`
	ChosenSeats []string           `json:"chosen_seats"`
	Tier        booking.Tier       `json:"tier,omitempty"`
	OrderRef    string             `json:"order_ref,omitempty"`
	SeatMap     booking.SeatMap    `json:"seat_map"`
	Breakdown   *booking.Breakdown `json:"breakdown,omitempty"`
}

func (h *CheckoutHandler) view(co booking.Checkout) checkoutView {
	v := checkoutView{
		ShowID:      co.ShowID,
		Stage:       co.Stage,
		ChosenSeats: co.ChosenSeats,
		Tier:        co.Tier(),
		OrderRef:    co.OrderRef,
		SeatMap:     co.SeatMap,
	}
	if len(co.ChosenSeats) > 0 {
		if bd, err := co.Breakdown(h.Pricing); err == nil {
			v.Breakdown = &bd
		}
	}
	return v
}

// ctxIdentity adapts the JWT claims already resolved by middleware to the
// identity collaborator of the booking package.
type ctxIdentity struct {
	user *booking.UserIdentity
}

func (i ctxIdentity) CurrentUser(ctx context.Context) (*booking.UserIdentity, error) {
	return i.user, nil
}

func identityFrom(c echo.Context) ctxIdentity {
	uid, err := getUserID(c)
	if err != nil {
		return ctxIdentity{}
	}
	role, _ := c.Get("role").(string)
	return ctxIdentity{user: &booking.UserIdentity{ID: uid, Role: role}}
}

// writeCheckoutError maps booking package errors to HTTP responses.
func writeCheckoutError(c echo.Context, err error) error {
	var taken *booking.SeatsTakenError
	if errors.As(err, &taken) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "seats no longer available",
			"seats": taken.Labels,
		})
	}
	var pay *booking.PaymentError
	if errors.As(err, &pay) {
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": pay.Message, "code": pay.Code})
	}
	switch {
	case errors.Is(err, booking.ErrAuthRequired):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrSeatUnknown),
		errors.Is(err, booking.ErrSeatUnavailable),
		errors.Is(err, booking.ErrSelectionLimitReached),
		errors.Is(err, booking.ErrMixedTierNotAllowed),
		errors.Is(err, booking.ErrInvalidSelection),
		errors.Is(err, booking.ErrSelectionTooLarge):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
}

// load fetches the current user's checkout or writes the error response.
func (h *CheckoutHandler) load(c echo.Context) (uint64, booking.Checkout, bool) {
	uid, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return 0, booking.Checkout{}, false
	}
	co, err := h.Sessions.Load(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, store.ErrNoCheckout) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "no checkout in progress"})
		} else if errors.Is(err, store.ErrStoreUnavailable) {
			_ = c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "checkout unavailable"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load checkout"})
		}
		return 0, booking.Checkout{}, false
	}
	return uid, co, true
}

// save persists the checkout or writes the error response.
func (h *CheckoutHandler) save(c echo.Context, uid uint64, co booking.Checkout) bool {
	if err := h.Sessions.Save(c.Request().Context(), uid, co); err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			_ = c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "checkout unavailable"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save checkout"})
		}
		return false
	}
	return true
}

// Open handles POST /v1/checkout/shows/:id.  It snapshots the show's seat
// map and starts a fresh checkout in the seat-selection stage.  Any
// previous unfinished checkout for the user is replaced.
func (h *CheckoutHandler) Open(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	co, err := booking.Open(c.Request().Context(), h.SeatMaps, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to open checkout"})
	}
	if !h.save(c, uid, co) {
		return nil
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": h.view(co)})
}

// Current handles GET /v1/checkout.  It returns the stored state without
// applying any transition.
func (h *CheckoutHandler) Current(c echo.Context) error {
	_, co, ok := h.load(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{"item": h.view(co)})
}

// ToggleSeat handles POST /v1/checkout/seats/toggle.  The body names one
// seat label; chosen seats are removed, free seats are added.
func (h *CheckoutHandler) ToggleSeat(c echo.Context) error {
	uid, co, ok := h.load(c)
	if !ok {
		return nil
	}
	var req toggleReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Seat) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat is required"})
	}
	next, err := co.ToggleSeat(strings.ToUpper(strings.TrimSpace(req.Seat)), h.Pricing)
	if err != nil {
		return writeCheckoutError(c, err)
	}
	if !h.save(c, uid, next) {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{"item": h.view(next)})
}

// ClearSeats handles POST /v1/checkout/seats/clear.
func (h *CheckoutHandler) ClearSeats(c echo.Context) error {
	uid, co, ok := h.load(c)
	if !ok {
		return nil
	}
	next := co.ClearSelection()
	if !h.save(c, uid, next) {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{"item": h.view(next)})
}

// Finalize handles POST /v1/checkout/finalize.  It prices the selection
// and advances the checkout to the summary review stage.
func (h *CheckoutHandler) Finalize(c echo.Context) error {
	uid, co, ok := h.load(c)
	if !ok {
		return nil
	}
	next, bd, err := co.FinalizeSeats(h.Pricing)
	if err != nil {
		return writeCheckoutError(c, err)
	}
	if !h.save(c, uid, next) {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{"item": h.view(next), "breakdown": bd})
}

// Confirm handles POST /v1/checkout/confirm.  It places the order, which
// performs the authoritative seat availability check.  When seats were
// taken in the meantime the corrected state is saved and returned with a
// 409 so the client can re-review the selection.
func (h *CheckoutHandler) Confirm(c echo.Context) error {
	uid, co, ok := h.load(c)
	if !ok {
		return nil
	}
	next, err := co.ConfirmSummary(c.Request().Context(), identityFrom(c), h.Orders, h.Pricing)
	if err != nil {
		// The corrected snapshot must survive a seats-taken rejection.
		if errors.Is(err, booking.ErrSeatsNoLongerAvailable) {
			if !h.save(c, uid, next) {
				return nil
			}
		}
		return writeCheckoutError(c, err)
	}
	if !h.save(c, uid, next) {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{"item": h.view(next)})
}

// Payment handles POST /v1/checkout/payment.  On success the booking is
// confirmed, the session is discarded and a receipt is returned.  When the
// held seats were resold before the payment settled, the checkout drops
// back to summary review and a 409 is returned.
func (h *CheckoutHandler) Payment(c echo.Context) error {
	uid, co, ok := h.load(c)
	if !ok {
		return nil
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if !paymentMethods[method] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment method"})
	}
	proof := booking.PaymentProof{Method: method, ProviderRef: strings.TrimSpace(req.ProviderRef)}
	next, rcpt, err := co.RecordPaymentSuccess(c.Request().Context(), h.Orders, proof)
	if err != nil {
		if errors.Is(err, booking.ErrSeatsNoLongerAvailable) {
			if !h.save(c, uid, next) {
				return nil
			}
		}
		return writeCheckoutError(c, err)
	}
	// One checkout, one purchase: the session ends with the receipt.
	_ = h.Sessions.Delete(c.Request().Context(), uid)
	h.publishConfirmed(uid, co, rcpt)
	return c.JSON(http.StatusOK, echo.Map{
		"receipt": rcpt,
		"stage":   next.Stage,
	})
}

// Restart handles POST /v1/checkout/restart.  It returns the checkout from
// summary review to seat selection with an empty selection.
func (h *CheckoutHandler) Restart(c echo.Context) error {
	uid, co, ok := h.load(c)
	if !ok {
		return nil
	}
	next, err := co.RestartSelection()
	if err != nil {
		return writeCheckoutError(c, err)
	}
	if !h.save(c, uid, next) {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{"item": h.view(next)})
}

// Abort handles DELETE /v1/checkout.  It cancels the checkout and drops
// the session.
func (h *CheckoutHandler) Abort(c echo.Context) error {
	uid, co, ok := h.load(c)
	if !ok {
		return nil
	}
	if _, err := co.Abort(); err != nil {
		return writeCheckoutError(c, err)
	}
	if err := h.Sessions.Delete(c.Request().Context(), uid); err != nil && !errors.Is(err, store.ErrNoCheckout) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to discard checkout"})
	}
	return c.NoContent(http.StatusNoContent)
}

// publishConfirmed emits a booking.confirmed event enriched with catalog
// details.  Publishing is best effort and never blocks the response.
func (h *CheckoutHandler) publishConfirmed(uid uint64, co booking.Checkout, rcpt booking.Receipt) {
	if h.Shows == nil || h.Movies == nil || h.Theaters == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:   rcpt.BookingID,
		OrderRef:    rcpt.ConfirmationRef,
		UserID:      uid,
		ShowID:      co.ShowID,
		SeatLabels:  append([]string(nil), co.ChosenSeats...),
		TotalCents:  rcpt.AmountCents,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if show, err := h.Shows.GetByID(ctx, co.ShowID); err == nil {
			ev.Screen = show.Screen
			ev.StartsAt = show.StartsAt
			ev.EndsAt = show.EndsAt
			if movie, err := h.Movies.GetByID(ctx, show.MovieID); err == nil {
				ev.MovieTitle = movie.Title
			}
			if theater, err := h.Theaters.GetByID(ctx, show.TheaterID); err == nil {
				ev.TheaterID = theater.ID
				ev.TheaterName = theater.Name
			}
		}
		_ = queue_publisher.PublishBookingConfirmed(ctx, ev)
	}()
}
