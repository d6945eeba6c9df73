package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/logging"
	"github.com/mkrasov/fitshop/internal/mediaclient"
	"github.com/mkrasov/fitshop/internal/models"
	"github.com/mkrasov/fitshop/internal/repo"
)

type ImageHandler struct {
	Repo  *repo.GormRepo
	Media *mediaclient.Client
}

// UploadImages pushes every file of the multipart form to the media store
// and records what stuck. Partial failure is reported, not fatal: the
// request succeeds as long as at least one upload went through.
func (h *ImageHandler) UploadImages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.upload_images")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("upload_images_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	form, err := c.MultipartForm()
	if err != nil {
		l.Warn("upload_images_error", "status", 400, "reason", "invalid multipart form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	fileHeaders := form.File["images"]
	if len(fileHeaders) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no images supplied")
	}

	files := make([]mediaclient.File, 0, len(fileHeaders))
	closers := make([]func() error, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			l.Warn("upload_images_error", "status", 400, "reason", "unreadable file", "file", fh.Filename, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable file: "+fh.Filename)
		}
		closers = append(closers, f.Close)
		files = append(files, mediaclient.File{Name: fh.Filename, Data: f})
	}
	defer func() {
		for _, cl := range closers {
			_ = cl()
		}
	}()

	result, err := h.Media.UploadMany(ctx, files)
	if err != nil {
		l.Error("upload_images_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "media store unavailable")
	}

	position := len(product.Images)
	images := make([]models.ProductImage, 0, len(result.Successful))
	for _, up := range result.Successful {
		images = append(images, models.ProductImage{
			ProductID: product.ID,
			URL:       up.URL,
			PublicID:  up.PublicID,
			Position:  position,
		})
		position++
	}
	if err := h.Repo.AddProductImages(ctx, images); err != nil {
		l.Error("upload_images_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save images")
	}

	l.Info("upload_images_success", "product_id", product.ID, "uploaded", len(result.Successful), "failed", len(result.Failed))
	return c.JSON(http.StatusCreated, result)
}

func (h *ImageHandler) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_image")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := paramID(c, "imageID")
	if err != nil {
		return err
	}

	img, err := h.Repo.GetProductImage(ctx, id, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "image not found")
		}
		l.Error("delete_image_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.Media.Delete(ctx, img.PublicID); err != nil {
		l.Error("delete_image_error", "status", 502, "public_id", img.PublicID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "media store unavailable")
	}

	if err := h.Repo.DeleteProductImage(ctx, img.ID); err != nil {
		l.Error("delete_image_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete image")
	}

	l.Info("delete_image_success", "product_id", id, "image_id", imageID)
	return c.NoContent(http.StatusNoContent)
}
