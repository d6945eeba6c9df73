package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/auth"
	"github.com/mkrasov/fitshop/internal/cart"
	"github.com/mkrasov/fitshop/internal/inventory"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/order"
	"github.com/mkrasov/fitshop/internal/repo"
)

// testEnv wires the handlers against an in-memory DB and no kafka producer;
// publish is a no-op with a nil producer.
type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Repo *repo.GormRepo

	Cart     *CartHandler
	Wishlist *WishlistHandler
	Order    *OrderHandler
	Product  *ProductHandler
	Review   *ReviewHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.ProductImage{}, &models.Variant{}, &models.Review{},
		&models.User{}, &models.RefreshToken{},
		&models.CartItem{}, &models.WishlistItem{},
		&models.Order{}, &models.OrderItem{},
	))

	r := repo.New(db)
	inv := inventory.New(r)

	return &testEnv{
		T:    t,
		E:    echo.New(),
		DB:   db,
		Repo: r,

		Cart:     &CartHandler{Svc: cart.New(r, inv)},
		Wishlist: &WishlistHandler{Svc: cart.NewWishlist(r, inv)},
		Order:    &OrderHandler{Svc: order.New(r, inv)},
		Product:  &ProductHandler{Repo: r},
		Review:   &ReviewHandler{Repo: r},
	}
}

func (env *testEnv) doJSONRequest(method, target string, body any, p *auth.Principal) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := env.E.NewContext(req, rec)
	if p != nil {
		auth.SetPrincipal(c, *p)
	}
	return rec, c
}

func (env *testEnv) seedProduct(variants ...models.Variant) *models.Product {
	env.T.Helper()

	p := models.Product{
		Name:      "Trail Runner",
		BasePrice: 20,
		Variants:  variants,
	}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return &p
}

func asHTTPError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he
}

var userPrincipal = auth.Principal{ID: 1, Role: "user"}
