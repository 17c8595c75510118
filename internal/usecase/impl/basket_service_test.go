package impl

import (
	"context"
	"testing"

	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasketService_AddAndLines(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	_, err := f.baskets.Add(ctx, customerID, "siber_oil")
	require.NoError(t, err)
	basket, err := f.baskets.Add(ctx, customerID, "siber_oil")
	require.NoError(t, err)
	assert.Equal(t, 2, basket.Items["siber_oil"])

	_, err = f.baskets.Add(ctx, customerID, "missing")
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))

	lines, err := f.baskets.Lines(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Siber Oil", lines[0].Name)
	assert.Equal(t, "120,000 UZS", lines[0].UnitPrice)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestBasketService_LinesSkipDeletedProducts(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	for _, id := range []string{"siber_oil", "bio_tribesteron"} {
		_, err := f.baskets.Add(ctx, customerID, id)
		require.NoError(t, err)
	}
	require.NoError(t, f.catalog.Delete(ctx, "siber_oil"))

	lines, err := f.baskets.Lines(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "bio_tribesteron", lines[0].ProductID)
}

func TestBasketService_Clear(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()

	_, err := f.baskets.Add(ctx, customerID, "siber_oil")
	require.NoError(t, err)
	require.NoError(t, f.baskets.Clear(ctx, customerID))

	lines, err := f.baskets.Lines(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCheckoutService_EmptyBasket(t *testing.T) {
	f := newFixture(t, fixtureOptions{})

	_, err := f.checkout.StartBasketCheckout(context.Background(), customer)
	assert.True(t, errors.Is(err, domainerrors.ErrEmptyBasket))
}
