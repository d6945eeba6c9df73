package cart

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/inventory"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
)

func newTestWishlist(t *testing.T) (*WishlistService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.ProductImage{}, &models.Review{}, &models.Variant{}, &models.WishlistItem{}))

	r := repo.New(db)
	return NewWishlist(r, inventory.New(r)), db
}

func TestWishlistAdd_RefreshesInsteadOfMerging(t *testing.T) {
	svc, db := newTestWishlist(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 10, PriceModifier: 2})
	ctx := context.Background()

	first, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	// reprice, then re-add the same line
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("base_price", 25).Error)

	again, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 3, again.Quantity)
	assert.InDelta(t, 27, again.PriceAtTime, 0.001)

	items, err := svc.List(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWishlistAdd_DefaultsQuantityToOne(t *testing.T) {
	svc, db := newTestWishlist(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 10})

	item, err := svc.Add(context.Background(), testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black"})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestWishlistRemoveAndClear(t *testing.T) {
	svc, db := newTestWishlist(t)
	p := seedProduct(t, db,
		models.Variant{Size: "M", Color: "black", Quantity: 10},
		models.Variant{Size: "S", Color: "black", Quantity: 10},
	)
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "S", Color: "black", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, testUserID, p.ID, "M", "black"))
	require.ErrorIs(t, svc.Remove(ctx, testUserID, p.ID, "M", "black"), ErrItemNotFound)

	require.NoError(t, svc.Clear(ctx, testUserID))

	items, err := svc.List(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
