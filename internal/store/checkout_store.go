// Package store keeps in-progress checkout state in Redis.  A checkout
// lives at most one session: it is written on every transition with a
// sliding TTL and deleted on completion or abort, so nothing survives a
// finished or abandoned purchase.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kavehz/movie-booking/internal/booking"
)

// ErrNoCheckout is returned when the user has no checkout in progress.
var ErrNoCheckout = errors.New("no checkout in progress")

// ErrStoreUnavailable is returned when Redis is not configured or not
// reachable.  The checkout API cannot operate without its session store.
var ErrStoreUnavailable = errors.New("checkout store unavailable")

// CheckoutStore persists one checkout per user under a TTL.
type CheckoutStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCheckoutStore builds a store around the given Redis client.  The
// client may be nil (Redis down at startup); operations then fail with
// ErrStoreUnavailable instead of panicking.
func NewCheckoutStore(rdb *redis.Client, ttl time.Duration) *CheckoutStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CheckoutStore{rdb: rdb, ttl: ttl}
}

func checkoutKey(userID uint64) string {
	return fmt.Sprintf("checkout:%d", userID)
}

// Load returns the user's in-progress checkout.  A missing or expired key
// yields ErrNoCheckout.
func (s *CheckoutStore) Load(ctx context.Context, userID uint64) (booking.Checkout, error) {
	if s.rdb == nil {
		return booking.Checkout{}, ErrStoreUnavailable
	}
	bs, err := s.rdb.Get(ctx, checkoutKey(userID)).Bytes()
	if err == redis.Nil {
		return booking.Checkout{}, ErrNoCheckout
	}
	if err != nil {
		return booking.Checkout{}, err
	}
	var co booking.Checkout
	if err := json.Unmarshal(bs, &co); err != nil {
		// A corrupt entry is unrecoverable; treat it as absent.
		return booking.Checkout{}, ErrNoCheckout
	}
	return co, nil
}

// Save writes the checkout and resets the session TTL.
func (s *CheckoutStore) Save(ctx context.Context, userID uint64, co booking.Checkout) error {
	if s.rdb == nil {
		return ErrStoreUnavailable
	}
	bs, err := json.Marshal(co)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, checkoutKey(userID), bs, s.ttl).Err()
}

// Delete removes the user's checkout.  Deleting a missing key is not an
// error.
func (s *CheckoutStore) Delete(ctx context.Context, userID uint64) error {
	if s.rdb == nil {
		return ErrStoreUnavailable
	}
	return s.rdb.Del(ctx, checkoutKey(userID)).Err()
}
