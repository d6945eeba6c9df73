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

const testUserID = uint(1)

func newTestCart(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.ProductImage{}, &models.Review{}, &models.Variant{}, &models.CartItem{}))

	r := repo.New(db)
	return New(r, inventory.New(r)), db
}

func seedProduct(t *testing.T, db *gorm.DB, variants ...models.Variant) *models.Product {
	t.Helper()

	p := models.Product{
		Name:      "Trail Runner",
		BasePrice: 20,
		Variants:  variants,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func TestAdd_NewLine(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 10, PriceModifier: 2})
	ctx := context.Background()

	item, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, item.Quantity)
	assert.InDelta(t, 22, item.PriceAtTime, 0.001)
	assert.False(t, item.AddedAt.IsZero())
}

func TestAdd_MergesSameLine(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 10})
	ctx := context.Background()

	first, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 2})
	require.NoError(t, err)

	merged, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 5, merged.Quantity)

	items, err := svc.List(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAdd_DifferentVariantsAreSeparateLines(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db,
		models.Variant{Size: "M", Color: "black", Quantity: 10},
		models.Variant{Size: "M", Color: "white", Quantity: 10},
	)
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "white", Quantity: 1})
	require.NoError(t, err)

	items, err := svc.List(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAdd_QuantityBounds(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 200})
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 0})
	require.ErrorIs(t, err, ErrQuantity)

	_, err = svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 100})
	require.ErrorIs(t, err, ErrQuantity)

	// merge pushing a line past the cap is rejected too
	_, err = svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 99})
	require.NoError(t, err)
	_, err = svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 1})
	require.ErrorIs(t, err, ErrQuantity)
}

func TestAdd_PriceMismatch(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 10, PriceModifier: 2})
	ctx := context.Background()

	stale := 20.0
	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 1, ExpectedPrice: &stale})
	require.ErrorIs(t, err, ErrPriceMismatch)

	current := 22.0
	_, err = svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 1, ExpectedPrice: &current})
	require.NoError(t, err)
}

func TestAdd_UnknownProduct(t *testing.T) {
	svc, _ := newTestCart(t)

	_, err := svc.Add(context.Background(), testUserID, AddRequest{ProductID: 42, Size: "M", Color: "black", Quantity: 1})
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestAdjustQuantity(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 5})
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 2})
	require.NoError(t, err)

	item, err := svc.AdjustQuantity(ctx, testUserID, p.ID, "M", "black", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)

	item, err = svc.AdjustQuantity(ctx, testUserID, p.ID, "M", "black", -3)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestAdjustQuantity_DecrementAtOneRejected(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 5})
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.AdjustQuantity(ctx, testUserID, p.ID, "M", "black", -1)
	require.ErrorIs(t, err, ErrQuantity)

	// line untouched
	items, err := svc.List(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAdjustQuantity_IncrementChecksStock(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 3})
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 3})
	require.NoError(t, err)

	_, err = svc.AdjustQuantity(ctx, testUserID, p.ID, "M", "black", 1)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestAdjustQuantity_ZeroDeltaRejected(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 5})
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.AdjustQuantity(ctx, testUserID, p.ID, "M", "black", 0)
	require.ErrorIs(t, err, ErrQuantity)
}

func TestRemove(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db, models.Variant{Size: "M", Color: "black", Quantity: 5})
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, testUserID, p.ID, "M", "black"))
	require.ErrorIs(t, svc.Remove(ctx, testUserID, p.ID, "M", "black"), ErrItemNotFound)
}

func TestClearAndTotal(t *testing.T) {
	svc, db := newTestCart(t)
	p := seedProduct(t, db,
		models.Variant{Size: "M", Color: "black", Quantity: 10, PriceModifier: 2},
		models.Variant{Size: "S", Color: "black", Quantity: 10},
	)
	ctx := context.Background()

	_, err := svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "M", Color: "black", Quantity: 3})
	require.NoError(t, err)
	_, err = svc.Add(ctx, testUserID, AddRequest{ProductID: p.ID, Size: "S", Color: "black", Quantity: 1})
	require.NoError(t, err)

	total, err := svc.Total(ctx, testUserID)
	require.NoError(t, err)
	assert.InDelta(t, 3*22+20, total, 0.001)

	require.NoError(t, svc.Clear(ctx, testUserID))

	total, err = svc.Total(ctx, testUserID)
	require.NoError(t, err)
	assert.Zero(t, total)
}
