package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkrasov/fitshop/internal/cart"
	"github.com/mkrasov/fitshop/internal/events"
	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/transport"
)

type WishlistHandler struct {
	Svc      *cart.WishlistService
	Producer *events.Producer
}

func (h *WishlistHandler) GetWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.get_wishlist")

	p, err := principal(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.List(ctx, p.ID)
	if err != nil {
		l.Error("get_wishlist_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *WishlistHandler) AddToWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add_to_wishlist")

	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_wishlist_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.Add(ctx, p.ID, cart.AddRequest{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	})
	if err != nil {
		he := domainError(err)
		l.Warn("add_to_wishlist_error", "status", he.Code, "product_id", req.ProductID, "error", err)
		return he
	}

	publish(c, h.Producer, events.TopicCartEvents, map[string]any{
		"type":       "wishlist_item_added",
		"user_id":    p.ID,
		"product_id": item.ProductID,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *WishlistHandler) RemoveFromWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove_from_wishlist")

	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.RemoveLineRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("remove_from_wishlist_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Remove(ctx, p.ID, req.ProductID, req.Size, req.Color); err != nil {
		he := domainError(err)
		l.Warn("remove_from_wishlist_error", "status", he.Code, "product_id", req.ProductID, "error", err)
		return he
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WishlistHandler) ClearWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.clear_wishlist")

	p, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(ctx, p.ID); err != nil {
		l.Error("clear_wishlist_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}
