package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
)

var (
	ErrVariantNotFound   = errors.New("variant not found")   // 404
	ErrInsufficientStock = errors.New("insufficient stock")  // 409
)

// Service owns per-variant stock and pricing. It is stateless; all state
// lives in the repo.
type Service struct {
	Repo *repo.GormRepo
}

func New(r *repo.GormRepo) *Service {
	return &Service{Repo: r}
}

// WithRepo rebinds the service to another repo, typically one tied to a
// transaction.
func (s *Service) WithRepo(r *repo.GormRepo) *Service {
	return &Service{Repo: r}
}

func (s *Service) Variant(p *models.Product, size, color string) (*models.Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Size == size && p.Variants[i].Color == color {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// IsInStock reports whether a matching variant exists with at least qty
// units. An absent variant is out of stock, not an error.
func (s *Service) IsInStock(p *models.Product, size, color string, qty int) bool {
	v, ok := s.Variant(p, size, color)
	if !ok {
		return false
	}
	return v.Quantity >= qty
}

// FinalPrice is base price plus the variant's modifier. A product without a
// matching variant prices at base alone, which keeps non-variant products
// sellable.
func (s *Service) FinalPrice(p *models.Product, size, color string) float64 {
	if v, ok := s.Variant(p, size, color); ok {
		return p.BasePrice + v.PriceModifier
	}
	return p.BasePrice
}

// DecrementStock takes qty units off the variant with a single conditional
// UPDATE guarded on quantity >= qty. When no row is touched the variant is
// either missing or short on stock; a follow-up read tells which.
func (s *Service) DecrementStock(ctx context.Context, productID uint, size, color string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInsufficientStock)
	}

	rows, err := s.Repo.DecrementVariant(ctx, productID, size, color, qty)
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	if _, err := s.Repo.GetVariant(ctx, productID, size, color); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d size %q color %q", ErrVariantNotFound, productID, size, color)
		}
		return err
	}
	return fmt.Errorf("%w: product %d size %q color %q", ErrInsufficientStock, productID, size, color)
}

// IncrementStock returns qty units to the variant. Cancellation calls this
// best-effort: the variant may have been edited away since the order was
// placed, so ErrVariantNotFound is a warning path for the caller.
func (s *Service) IncrementStock(ctx context.Context, productID uint, size, color string, qty int) error {
	if qty <= 0 {
		return nil
	}

	rows, err := s.Repo.IncrementVariant(ctx, productID, size, color, qty)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: product %d size %q color %q", ErrVariantNotFound, productID, size, color)
	}
	return nil
}
