package models

import (
	"time"
)

type Product struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string         `gorm:"not null"                  json:"name"`
	Description string         `gorm:"not null"                  json:"description"`
	BasePrice   float64        `gorm:"not null"                  json:"base_price"`
	Category    string         `gorm:"index"                     json:"category"`
	Brand       string         `gorm:"index"                     json:"brand"`
	CreatedBy   uint           `json:"created_by"`
	Images      []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Variants    []Variant      `gorm:"constraint:OnDelete:CASCADE" json:"variants"`
	Reviews     []Review       `gorm:"constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
}

// TotalStock is the sum over all variants, there is no separate stock column.
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Quantity
	}
	return total
}

func (p *Product) AverageRating() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(p.Reviews))
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"                 json:"id"`
	ProductID uint   `gorm:"index;not null"             json:"product_id"`
	URL       string `gorm:"not null"                   json:"url"`
	PublicID  string `gorm:"not null"                   json:"public_id"`
	Position  int    `json:"position"`
}

type Variant struct {
	ID            uint    `gorm:"primaryKey"                                   json:"id"`
	ProductID     uint    `gorm:"not null;uniqueIndex:idx_variant_sku"         json:"product_id"`
	Size          string  `gorm:"not null;uniqueIndex:idx_variant_sku"         json:"size"`
	Color         string  `gorm:"not null;uniqueIndex:idx_variant_sku"         json:"color"`
	Quantity      int     `gorm:"not null;default:0;check:quantity >= 0"       json:"quantity"`
	PriceModifier float64 `gorm:"not null;default:0"                           json:"price_modifier"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"unique;not null"     json:"token"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
}

type CartItem struct {
	ID          uint      `gorm:"primaryKey"                                  json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_cart_line"          json:"user_id"`
	ProductID   uint      `gorm:"not null;uniqueIndex:idx_cart_line"          json:"product_id"`
	Size        string    `gorm:"not null;uniqueIndex:idx_cart_line"          json:"size"`
	Color       string    `gorm:"not null;uniqueIndex:idx_cart_line"          json:"color"`
	Quantity    int       `gorm:"not null;check:quantity > 0"                 json:"quantity"`
	PriceAtTime float64   `gorm:"not null"                                    json:"price_at_time"`
	AddedAt     time.Time `gorm:"not null"                                    json:"added_at"`
}

type WishlistItem struct {
	ID          uint      `gorm:"primaryKey"                                  json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_wishlist_line"      json:"user_id"`
	ProductID   uint      `gorm:"not null;uniqueIndex:idx_wishlist_line"      json:"product_id"`
	Size        string    `gorm:"not null;uniqueIndex:idx_wishlist_line"      json:"size"`
	Color       string    `gorm:"not null;uniqueIndex:idx_wishlist_line"      json:"color"`
	Quantity    int       `gorm:"not null;default:1"                          json:"quantity"`
	PriceAtTime float64   `gorm:"not null"                                    json:"price_at_time"`
	AddedAt     time.Time `gorm:"not null"                                    json:"added_at"`
}

type ShippingAddress struct {
	FullName   string `gorm:"not null" json:"full_name"`
	Address    string `gorm:"not null" json:"address"`
	City       string `gorm:"not null" json:"city"`
	PostalCode string `gorm:"not null" json:"postal_code"`
	Country    string `gorm:"not null" json:"country"`
	Phone      string `gorm:"not null" json:"phone"`
}

func (a ShippingAddress) Complete() bool {
	return a.FullName != "" && a.Address != "" && a.City != "" &&
		a.PostalCode != "" && a.Country != "" && a.Phone != ""
}

type Order struct {
	ID              uint            `gorm:"primaryKey"       json:"id"`
	UserID          uint            `gorm:"index;not null"   json:"user_id"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentMethod   string          `gorm:"not null"         json:"payment_method"`
	PaymentStatus   string          `gorm:"not null"         json:"payment_status"`
	OrderStatus     string          `gorm:"not null;index"   json:"order_status"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	ShippingCharge  float64         `gorm:"not null;default:0" json:"shipping_charge"`
	Discount        float64         `gorm:"not null;default:0" json:"discount"`
	TotalAmount     float64         `gorm:"not null"         json:"total_amount"`
	FinalAmount     float64         `gorm:"not null"         json:"final_amount"`
	Notes           string          `json:"notes,omitempty"`
	IsDelivered     bool            `gorm:"default:false"    json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem is a snapshot taken at order time. ProductName and Price stay as
// they were even if the product is later renamed or repriced.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey"     json:"id"`
	OrderID     uint    `gorm:"index;not null" json:"order_id"`
	ProductID   uint    `gorm:"not null"       json:"product_id"`
	ProductName string  `gorm:"not null"       json:"product_name"`
	Size        string  `gorm:"not null"       json:"size"`
	Color       string  `gorm:"not null"       json:"color"`
	Quantity    int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price       float64 `gorm:"not null"       json:"price"`
	Subtotal    float64 `gorm:"not null"       json:"subtotal"`
}
