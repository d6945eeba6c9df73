package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/events"
	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
	"github.com/mkrasov/fitshop/internal/transport"
	"github.com/mkrasov/fitshop/internal/util"
)

type ProductHandler struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
}

func productResponse(p *models.Product) transport.ProductResponse {
	return transport.ProductResponse{
		Product:       *p,
		TotalStock:    p.TotalStock(),
		AverageRating: p.AverageRating(),
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, productResponse(product))
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Repo.GetProducts(ctx, offset, limit)
	if err != nil {
		l.Error("get_products_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	data := make([]transport.ProductResponse, len(items))
	for i := range items {
		data[i] = productResponse(&items[i])
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": data,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.BasePrice <= 0 {
		l.Warn("product_create_error", "status", 400, "reason", "name and positive base price required")
		return echo.NewHTTPError(http.StatusBadRequest, "name and positive base price required")
	}

	variants := make([]models.Variant, 0, len(req.Variants))
	for _, v := range req.Variants {
		if v.Quantity < 0 {
			l.Warn("product_create_error", "status", 400, "reason", "negative variant quantity")
			return echo.NewHTTPError(http.StatusBadRequest, "variant quantity must be non-negative")
		}
		variants = append(variants, models.Variant{
			Size:          v.Size,
			Color:         v.Color,
			Quantity:      v.Quantity,
			PriceModifier: v.PriceModifier,
		})
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Category:    req.Category,
		Brand:       req.Brand,
		CreatedBy:   p.ID,
		Variants:    variants,
	}

	if _, err := h.Repo.CreateProduct(ctx, &prod); err != nil {
		l.Error("product_create_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product to db")
	}

	publish(c, h.Producer, events.TopicProductEvents, map[string]any{
		"type":       "product_created",
		"user_id":    p.ID,
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_patch_error", "status", 404, "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("product_patch_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.BasePrice != nil {
		if *req.BasePrice <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "base price must be positive")
		}
		prod.BasePrice = *req.BasePrice
	}
	if req.Category != nil {
		prod.Category = *req.Category
	}
	if req.Brand != nil {
		prod.Brand = *req.Brand
	}

	// administrative variant update: upsert by (size, color)
	for _, v := range req.Variants {
		if v.Quantity < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "variant quantity must be non-negative")
		}
		found := false
		for i := range prod.Variants {
			if prod.Variants[i].Size == v.Size && prod.Variants[i].Color == v.Color {
				prod.Variants[i].Quantity = v.Quantity
				prod.Variants[i].PriceModifier = v.PriceModifier
				found = true
				break
			}
		}
		if !found {
			prod.Variants = append(prod.Variants, models.Variant{
				ProductID:     prod.ID,
				Size:          v.Size,
				Color:         v.Color,
				Quantity:      v.Quantity,
				PriceModifier: v.PriceModifier,
			})
		}
	}

	if err := h.Repo.SaveProduct(ctx, prod); err != nil {
		l.Error("product_patch_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save product")
	}

	publish(c, h.Producer, events.TopicProductEvents, map[string]any{
		"type":       "product_updated",
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	l.Info("patch_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, productResponse(prod))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("product_delete_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product from db")
	}

	publish(c, h.Producer, events.TopicProductEvents, map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
