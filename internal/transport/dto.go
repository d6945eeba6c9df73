package transport

import "github.com/mkrasov/fitshop/internal/models"

type OrderItemRequest struct {
	ProductID uint   `json:"product"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"order_items"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
	ShippingCharge  float64                `json:"shipping_charge"`
	Discount        float64                `json:"discount"`
	Notes           string                 `json:"notes"`

	// Optional client-computed totals; when present the server rejects the
	// order if they drift from its own computation.
	TotalAmount *float64 `json:"total_amount"`
	FinalAmount *float64 `json:"final_amount"`
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

type PaymentStatusRequest struct {
	Status string `json:"status"`
}

type AddCartItemRequest struct {
	ProductID uint     `json:"product_id"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price"`
}

type AdjustCartItemRequest struct {
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Delta     int    `json:"delta"`
}

type RemoveLineRequest struct {
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type VariantRequest struct {
	Size          string  `json:"size"`
	Color         string  `json:"color"`
	Quantity      int     `json:"quantity"`
	PriceModifier float64 `json:"price_modifier"`
}

type CreateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	BasePrice   float64          `json:"base_price"`
	Category    string           `json:"category"`
	Brand       string           `json:"brand"`
	Variants    []VariantRequest `json:"variants"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	BasePrice   *float64         `json:"base_price"`
	Category    *string          `json:"category"`
	Brand       *string          `json:"brand"`
	Variants    []VariantRequest `json:"variants"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ProductResponse struct {
	models.Product
	TotalStock    int     `json:"total_stock"`
	AverageRating float64 `json:"average_rating"`
}
