package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkrasov/fitshop/internal/events"
	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/middleware/monitoring"
	"github.com/mkrasov/fitshop/internal/order"
	"github.com/mkrasov/fitshop/internal/transport"
	"github.com/mkrasov/fitshop/internal/util"
)

type OrderHandler struct {
	Svc      *order.Service
	Producer *events.Producer
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.Create(ctx, p.ID, req)
	if err != nil {
		he := domainError(err)
		l.Warn("create_order_error", "status", he.Code, "error", err)
		monitoring.RecordOrderOperation("create", false)
		return he
	}

	publish(c, h.Producer, events.TopicOrderEvents, map[string]any{
		"type":         "order_created",
		"user_id":      p.ID,
		"order_id":     o.ID,
		"final_amount": o.FinalAmount,
		"items":        len(o.Items),
	})
	monitoring.RecordOrderOperation("create", true)
	l.Info("create_order_success", "order_id", o.ID)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	o, err := h.Svc.Get(ctx, id, p)
	if err != nil {
		he := domainError(err)
		l.Warn("get_order_error", "status", he.Code, "order_id", id, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_my_orders")

	p, err := principal(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, err := h.Svc.ListForUser(ctx, p.ID, offset, limit)
	if err != nil {
		l.Error("list_my_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	o, err := h.Svc.Cancel(ctx, id, p)
	if err != nil {
		he := domainError(err)
		l.Warn("cancel_order_error", "status", he.Code, "order_id", id, "error", err)
		monitoring.RecordOrderOperation("cancel", false)
		return he
	}

	publish(c, h.Producer, events.TopicOrderEvents, map[string]any{
		"type":     "order_cancelled",
		"user_id":  p.ID,
		"order_id": o.ID,
	})
	monitoring.RecordOrderOperation("cancel", true)
	l.Info("cancel_order_success", "order_id", o.ID)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all_orders")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListAll(ctx, offset, limit)
	if err != nil {
		l.Error("list_all_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req.Status, req.TrackingNumber)
	if err != nil {
		he := domainError(err)
		l.Warn("update_status_error", "status", he.Code, "order_id", id, "error", err)
		return he
	}

	publish(c, h.Producer, events.TopicOrderEvents, map[string]any{
		"type":     "order_status_updated",
		"user_id":  o.UserID,
		"order_id": o.ID,
		"status":   o.OrderStatus,
	})
	l.Info("update_status_success", "order_id", o.ID, "new_status", o.OrderStatus)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) UpdatePaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_payment_status")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req transport.PaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_payment_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.SetPaymentStatus(ctx, id, req.Status)
	if err != nil {
		he := domainError(err)
		l.Warn("update_payment_error", "status", he.Code, "order_id", id, "error", err)
		return he
	}

	l.Info("update_payment_success", "order_id", o.ID, "payment_status", o.PaymentStatus)
	return c.JSON(http.StatusOK, o)
}
