package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kavehz/movie-booking/internal/booking"
)

func TestCheckoutStoreWithoutRedis(t *testing.T) {
	s := NewCheckoutStore(nil, 30*time.Minute)
	ctx := context.Background()

	_, err := s.Load(ctx, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = s.Save(ctx, 1, booking.Checkout{ShowID: 2})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = s.Delete(ctx, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestCheckoutKeyPerUser(t *testing.T) {
	assert.Equal(t, "checkout:42", checkoutKey(42))
	assert.NotEqual(t, checkoutKey(1), checkoutKey(2))
}
