package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkrasov/fitshop/internal/cart"
	"github.com/mkrasov/fitshop/internal/events"
	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/transport"
)

type CartHandler struct {
	Svc      *cart.Service
	Producer *events.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	p, err := principal(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.List(ctx, p.ID)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	total, err := h.Svc.Total(ctx, p.ID)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.Add(ctx, p.ID, cart.AddRequest{
		ProductID:     req.ProductID,
		Size:          req.Size,
		Color:         req.Color,
		Quantity:      req.Quantity,
		ExpectedPrice: req.Price,
	})
	if err != nil {
		he := domainError(err)
		l.Warn("add_to_cart_error", "status", he.Code, "product_id", req.ProductID, "error", err)
		return he
	}

	publish(c, h.Producer, events.TopicCartEvents, map[string]any{
		"type":       "cart_item_added",
		"user_id":    p.ID,
		"product_id": item.ProductID,
		"size":       item.Size,
		"color":      item.Color,
		"quantity":   item.Quantity,
	})
	l.Info("add_to_cart_success", "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) AdjustQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.adjust_quantity")

	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.AdjustCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("adjust_quantity_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AdjustQuantity(ctx, p.ID, req.ProductID, req.Size, req.Color, req.Delta)
	if err != nil {
		he := domainError(err)
		l.Warn("adjust_quantity_error", "status", he.Code, "product_id", req.ProductID, "error", err)
		return he
	}

	publish(c, h.Producer, events.TopicCartEvents, map[string]any{
		"type":         "cart_quantity_adjusted",
		"user_id":      p.ID,
		"product_id":   item.ProductID,
		"new_quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_from_cart")

	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.RemoveLineRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Remove(ctx, p.ID, req.ProductID, req.Size, req.Color); err != nil {
		he := domainError(err)
		l.Warn("remove_from_cart_error", "status", he.Code, "product_id", req.ProductID, "error", err)
		return he
	}

	publish(c, h.Producer, events.TopicCartEvents, map[string]any{
		"type":       "cart_item_removed",
		"user_id":    p.ID,
		"product_id": req.ProductID,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear_cart")

	p, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(ctx, p.ID); err != nil {
		l.Error("clear_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, events.TopicCartEvents, map[string]any{
		"type":    "cart_cleared",
		"user_id": p.ID,
	})
	return c.NoContent(http.StatusNoContent)
}
