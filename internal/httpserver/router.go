package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkrasov/fitshop/internal/auth"
)

type Deps struct {
	AuthMW          *auth.Middleware
	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	ImageHandler    *ImageHandler
	CartHandler     *CartHandler
	WishlistHandler *WishlistHandler
	OrderHandler    *OrderHandler
	ReviewHandler   *ReviewHandler
	SearchHandler   *SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/refresh", d.AuthHandler.Refresh)
	v1.POST("/logout", d.AuthHandler.Logout)

	if d.SearchHandler != nil && d.SearchHandler.ES != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/reviews", d.ReviewHandler.ListReviews)
	products.POST("/:id/reviews", d.ReviewHandler.CreateReview, d.AuthMW.RequireAuth)

	v1.DELETE("/reviews/:id", d.ReviewHandler.DeleteReview, d.AuthMW.RequireAuth)

	cartGrp := v1.Group("/cart", d.AuthMW.RequireAuth)
	cartGrp.GET("", d.CartHandler.GetCart)
	cartGrp.POST("", d.CartHandler.AddToCart)
	cartGrp.PATCH("", d.CartHandler.AdjustQuantity)
	cartGrp.DELETE("/item", d.CartHandler.RemoveFromCart)
	cartGrp.DELETE("", d.CartHandler.ClearCart)

	wishlist := v1.Group("/wishlist", d.AuthMW.RequireAuth)
	wishlist.GET("", d.WishlistHandler.GetWishlist)
	wishlist.POST("", d.WishlistHandler.AddToWishlist)
	wishlist.DELETE("/item", d.WishlistHandler.RemoveFromWishlist)
	wishlist.DELETE("", d.WishlistHandler.ClearWishlist)

	orders := v1.Group("/orders", d.AuthMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListMyOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)

	admin := v1.Group("/admin", d.AuthMW.RequireAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.POST("/products/:id/images", d.ImageHandler.UploadImages)
	admin.DELETE("/products/:id/images/:imageID", d.ImageHandler.DeleteImage)
	admin.GET("/orders", d.OrderHandler.ListAllOrders)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateOrderStatus)
	admin.PATCH("/orders/:id/payment", d.OrderHandler.UpdatePaymentStatus)
}
