package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/inventory"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
)

var (
	ErrItemNotFound  = errors.New("cart item not found")  // 404
	ErrPriceMismatch = errors.New("price mismatch")       // 409
	ErrQuantity      = errors.New("invalid quantity")     // 400
)

const (
	MinQuantity = 1
	MaxQuantity = 99

	// priceEpsilon bounds the drift tolerated between a client-supplied
	// price and the one computed from the product.
	priceEpsilon = 0.01
)

type AddRequest struct {
	ProductID     uint
	Size          string
	Color         string
	Quantity      int
	ExpectedPrice *float64
}

// Service keeps one user's pending selections, one line per
// (product, size, color).
type Service struct {
	Repo      *repo.GormRepo
	Inventory *inventory.Service
}

func New(r *repo.GormRepo, inv *inventory.Service) *Service {
	return &Service{Repo: r, Inventory: inv}
}

// Add merges into an existing line for the same (product, size, color) or
// appends a new one. The price snapshot is always refreshed to the current
// final price; a caller-supplied expected price guards against stale client
// caches.
func (s *Service) Add(ctx context.Context, userID uint, req AddRequest) (*models.CartItem, error) {
	if req.Quantity < MinQuantity || req.Quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must be between %d and %d", ErrQuantity, MinQuantity, MaxQuantity)
	}

	product, err := s.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrItemNotFound, req.ProductID)
		}
		return nil, err
	}

	price := s.Inventory.FinalPrice(product, req.Size, req.Color)
	if req.ExpectedPrice != nil && math.Abs(*req.ExpectedPrice-price) > priceEpsilon {
		return nil, fmt.Errorf("%w: expected %.2f, current %.2f", ErrPriceMismatch, *req.ExpectedPrice, price)
	}

	item, err := s.Repo.GetCartItem(ctx, userID, req.ProductID, req.Size, req.Color)
	switch {
	case err == nil:
		if item.Quantity+req.Quantity > MaxQuantity {
			return nil, fmt.Errorf("%w: line would exceed %d", ErrQuantity, MaxQuantity)
		}
		item.Quantity += req.Quantity
		item.PriceAtTime = price
		if err := s.Repo.SaveCartItem(ctx, item); err != nil {
			return nil, err
		}
		return item, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		newItem := models.CartItem{
			UserID:      userID,
			ProductID:   req.ProductID,
			Size:        req.Size,
			Color:       req.Color,
			Quantity:    req.Quantity,
			PriceAtTime: price,
			AddedAt:     time.Now().UTC(),
		}
		if err := s.Repo.CreateCartItem(ctx, &newItem); err != nil {
			return nil, err
		}
		return &newItem, nil
	default:
		return nil, err
	}
}

func (s *Service) Remove(ctx context.Context, userID, productID uint, size, color string) error {
	item, err := s.Repo.GetCartItem(ctx, userID, productID, size, color)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return s.Repo.DeleteCartItem(ctx, item.ID)
}

// AdjustQuantity applies a signed delta to an existing line. Dropping to zero
// is rejected, the caller removes the line instead. Raising the quantity is
// capped both by MaxQuantity and by what the variant currently has in stock.
func (s *Service) AdjustQuantity(ctx context.Context, userID, productID uint, size, color string, delta int) (*models.CartItem, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must be non-zero", ErrQuantity)
	}

	item, err := s.Repo.GetCartItem(ctx, userID, productID, size, color)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	next := item.Quantity + delta
	if next < MinQuantity {
		return nil, fmt.Errorf("%w: cannot go below %d, remove the item instead", ErrQuantity, MinQuantity)
	}
	if next > MaxQuantity {
		return nil, fmt.Errorf("%w: cannot exceed %d", ErrQuantity, MaxQuantity)
	}

	if delta > 0 {
		product, err := s.Repo.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrItemNotFound, productID)
			}
			return nil, err
		}
		if !s.Inventory.IsInStock(product, size, color, next) {
			return nil, fmt.Errorf("%w: only %d in stock", inventory.ErrInsufficientStock, stockOf(s.Inventory, product, size, color))
		}
	}

	item.Quantity = next
	if err := s.Repo.SaveCartItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.ListCart(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.Repo.ClearCart(ctx, userID)
}

// Total is the sum of snapshot prices, not of current product prices.
func (s *Service) Total(ctx context.Context, userID uint) (float64, error) {
	items, err := s.Repo.ListCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, it := range items {
		total += it.PriceAtTime * float64(it.Quantity)
	}
	return total, nil
}

func stockOf(inv *inventory.Service, p *models.Product, size, color string) int {
	if v, ok := inv.Variant(p, size, color); ok {
		return v.Quantity
	}
	return 0
}
