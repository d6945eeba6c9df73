package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/auth"
	"github.com/mkrasov/fitshop/internal/inventory"
	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
	"github.com/mkrasov/fitshop/internal/transport"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("order not found")    // 404
	ErrProductNotFound   = errors.New("product not found")  // 404
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrInvalidTransition = errors.New("invalid transition") // 409
	ErrAmountMismatch    = errors.New("amount mismatch")    // 409
)

// amountEpsilon bounds the tolerated drift when the stored totals are checked
// against recomputation.
const amountEpsilon = 0.01

// Service drives the order aggregate: the creation protocol and the status
// lifecycle. Orders are never deleted; cancellation is a terminal status.
type Service struct {
	Repo      *repo.GormRepo
	Inventory *inventory.Service
}

func New(r *repo.GormRepo, inv *inventory.Service) *Service {
	return &Service{Repo: r, Inventory: inv}
}

// Create runs the whole creation protocol in one transaction: per item it
// loads the product, snapshots name and price, and decrements the variant
// with a conditional update. Any failure rolls every decrement back, so a
// half-created order can never leak stock. Two concurrent orders racing for
// the last units cannot both pass the conditional update.
func (s *Service) Create(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, fmt.Errorf("%w: order items required", ErrValidation)
	}
	if !req.ShippingAddress.Complete() {
		return nil, fmt.Errorf("%w: shipping address incomplete", ErrValidation)
	}
	if !ValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}
	if req.ShippingCharge < 0 || req.Discount < 0 {
		return nil, fmt.Errorf("%w: shipping charge and discount must be non-negative", ErrValidation)
	}

	var order *models.Order

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		inv := s.Inventory.WithRepo(tx)

		items := make([]models.OrderItem, 0, len(req.OrderItems))
		var total float64

		for _, it := range req.OrderItems {
			if it.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be positive", ErrValidation)
			}

			product, err := tx.GetProduct(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrProductNotFound, it.ProductID)
				}
				return err
			}

			price := inv.FinalPrice(product, it.Size, it.Color)
			if err := inv.DecrementStock(ctx, it.ProductID, it.Size, it.Color, it.Quantity); err != nil {
				if errors.Is(err, inventory.ErrVariantNotFound) {
					// no matching variant means the requested unit
					// cannot be fulfilled at all
					return fmt.Errorf("%w: %v", inventory.ErrInsufficientStock, err)
				}
				return err
			}

			subtotal := price * float64(it.Quantity)
			items = append(items, models.OrderItem{
				ProductID:   it.ProductID,
				ProductName: product.Name,
				Size:        it.Size,
				Color:       it.Color,
				Quantity:    it.Quantity,
				Price:       price,
				Subtotal:    subtotal,
			})
			total += subtotal
		}

		final := total + req.ShippingCharge - req.Discount
		if final <= 0 {
			return fmt.Errorf("%w: final amount must be positive", ErrValidation)
		}

		if req.TotalAmount != nil && math.Abs(*req.TotalAmount-total) > amountEpsilon {
			return fmt.Errorf("%w: submitted total %.2f, computed %.2f", ErrAmountMismatch, *req.TotalAmount, total)
		}
		if req.FinalAmount != nil && math.Abs(*req.FinalAmount-final) > amountEpsilon {
			return fmt.Errorf("%w: submitted final %.2f, computed %.2f", ErrAmountMismatch, *req.FinalAmount, final)
		}

		o := models.Order{
			UserID:          userID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   PaymentPending,
			OrderStatus:     StatusProcessing,
			ShippingCharge:  req.ShippingCharge,
			Discount:        req.Discount,
			TotalAmount:     total,
			FinalAmount:     final,
			Notes:           req.Notes,
			CreatedAt:       time.Now().UTC(),
		}
		if err := validateAmounts(&o); err != nil {
			return err
		}

		created, err := tx.CreateOrder(ctx, &o)
		if err != nil {
			return err
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}

		order = created
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

// validateAmounts re-checks the totals identities on the aggregate itself.
// A violated identity fails the order instead of silently correcting it.
func validateAmounts(o *models.Order) error {
	var sum float64
	for _, it := range o.Items {
		sum += it.Subtotal
	}
	if math.Abs(o.TotalAmount-sum) > amountEpsilon {
		return fmt.Errorf("%w: total %.2f does not match item sum %.2f", ErrAmountMismatch, o.TotalAmount, sum)
	}
	want := o.TotalAmount + o.ShippingCharge - o.Discount
	if math.Abs(o.FinalAmount-want) > amountEpsilon {
		return fmt.Errorf("%w: final %.2f does not match %.2f", ErrAmountMismatch, o.FinalAmount, want)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uint, principal auth.Principal) (*models.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != principal.ID && !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Order, error) {
	return s.Repo.ListOrdersForUser(ctx, userID, offset, limit)
}

func (s *Service) ListAll(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, offset, limit)
}

// UpdateStatus moves the order along the state machine. Admin only, enforced
// at the router. A supplied tracking number is stored whatever the target
// status is.
func (s *Service) UpdateStatus(ctx context.Context, id uint, newStatus, trackingNumber string) (*models.Order, error) {
	if !ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.OrderStatus, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.OrderStatus, newStatus)
	}

	o.OrderStatus = newStatus
	if trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	}
	if newStatus == StatusDelivered {
		now := time.Now().UTC()
		o.IsDelivered = true
		o.DeliveredAt = &now
	}

	if err := s.Repo.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel is callable by the owning user or an admin while the order is still
// processing or confirmed. Stock restoration is best-effort: a variant edited
// away since the order was placed is logged and skipped, the cancellation
// itself still succeeds.
func (s *Service) Cancel(ctx context.Context, id uint, principal auth.Principal) (*models.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != principal.ID && !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if !Cancellable(o.OrderStatus) {
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, o.OrderStatus)
	}

	o.OrderStatus = StatusCancelled
	if err := s.Repo.SaveOrder(ctx, o); err != nil {
		return nil, err
	}

	l := logging.FromContext(ctx).With("order_id", o.ID)
	for _, it := range o.Items {
		if err := s.Inventory.IncrementStock(ctx, it.ProductID, it.Size, it.Color, it.Quantity); err != nil {
			if errors.Is(err, inventory.ErrVariantNotFound) {
				l.Warn("stock_restore_skipped", "product_id", it.ProductID, "size", it.Size, "color", it.Color, "error", err)
				continue
			}
			l.Error("stock_restore_failed", "product_id", it.ProductID, "size", it.Size, "color", it.Color, "error", err)
		}
	}

	return o, nil
}

// SetPaymentStatus moves payment state independently of the order status
// machine.
func (s *Service) SetPaymentStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	if !ValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = status
	if err := s.Repo.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) load(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, err
	}
	return o, nil
}
