package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/inventory"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
)

// WishlistService mirrors the cart's line-item semantics, but adding an
// existing (product, size, color) refreshes the price snapshot and timestamp
// instead of merging quantities.
type WishlistService struct {
	Repo      *repo.GormRepo
	Inventory *inventory.Service
}

func NewWishlist(r *repo.GormRepo, inv *inventory.Service) *WishlistService {
	return &WishlistService{Repo: r, Inventory: inv}
}

func (s *WishlistService) Add(ctx context.Context, userID uint, req AddRequest) (*models.WishlistItem, error) {
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	product, err := s.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrItemNotFound, req.ProductID)
		}
		return nil, err
	}
	price := s.Inventory.FinalPrice(product, req.Size, req.Color)

	item, err := s.Repo.GetWishlistItem(ctx, userID, req.ProductID, req.Size, req.Color)
	switch {
	case err == nil:
		item.PriceAtTime = price
		item.Quantity = req.Quantity
		item.AddedAt = time.Now().UTC()
		if err := s.Repo.SaveWishlistItem(ctx, item); err != nil {
			return nil, err
		}
		return item, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		newItem := models.WishlistItem{
			UserID:      userID,
			ProductID:   req.ProductID,
			Size:        req.Size,
			Color:       req.Color,
			Quantity:    req.Quantity,
			PriceAtTime: price,
			AddedAt:     time.Now().UTC(),
		}
		if err := s.Repo.CreateWishlistItem(ctx, &newItem); err != nil {
			return nil, err
		}
		return &newItem, nil
	default:
		return nil, err
	}
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uint, size, color string) error {
	item, err := s.Repo.GetWishlistItem(ctx, userID, productID, size, color)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return s.Repo.DeleteWishlistItem(ctx, item.ID)
}

func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	return s.Repo.ListWishlist(ctx, userID)
}

func (s *WishlistService) Clear(ctx context.Context, userID uint) error {
	return s.Repo.ClearWishlist(ctx, userID)
}
