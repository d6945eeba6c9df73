package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/events"
	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
	"github.com/mkrasov/fitshop/internal/transport"
)

type ReviewHandler struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create_review")

	p, err := principal(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_review_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	if _, err := h.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("create_review_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	review := models.Review{
		ProductID: productID,
		UserID:    p.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Repo.CreateReview(ctx, &review); err != nil {
		l.Error("create_review_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save review")
	}

	publish(c, h.Producer, events.TopicProductEvents, map[string]any{
		"type":       "review_created",
		"user_id":    p.ID,
		"product_id": productID,
		"rating":     review.Rating,
	})
	l.Info("create_review_success", "product_id", productID, "review_id", review.ID)
	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list_reviews")

	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	reviews, err := h.Repo.ListReviews(ctx, productID)
	if err != nil {
		l.Error("list_reviews_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete_review")

	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	review, err := h.Repo.GetReview(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "review not found")
		}
		l.Error("delete_review_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if review.UserID != p.ID && !p.IsAdmin() {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := h.Repo.DeleteReview(ctx, review.ID); err != nil {
		l.Error("delete_review_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete review")
	}
	return c.NoContent(http.StatusNoContent)
}
