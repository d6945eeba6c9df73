package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkrasov/fitshop/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).
		Preload("Images").
		Preload("Variants").
		Preload("Reviews").
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Preload("Images").
		Preload("Variants").
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Save(prod).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) GetVariant(ctx context.Context, productID uint, size, color string) (*models.Variant, error) {
	var v models.Variant
	if err := r.DB.WithContext(ctx).
		Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// DecrementVariant is the conditional update closing the read-check-then-write
// stock race: the quantity guard sits inside the UPDATE itself, so two
// competing orders for the last units cannot both pass. Zero rows affected
// means either no such variant or not enough stock; the caller distinguishes.
func (r *GormRepo) DecrementVariant(ctx context.Context, productID uint, size, color string, qty int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Variant{}).
		Where("product_id = ? AND size = ? AND color = ? AND quantity >= ?", productID, size, color, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *GormRepo) IncrementVariant(ctx context.Context, productID uint, size, color string, qty int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Variant{}).
		Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	return res.RowsAffected, res.Error
}

func (r *GormRepo) AddProductImages(ctx context.Context, images []models.ProductImage) error {
	return r.DB.WithContext(ctx).Create(&images).Error
}

func (r *GormRepo) GetProductImage(ctx context.Context, productID, imageID uint) (*models.ProductImage, error) {
	var img models.ProductImage
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND product_id = ?", imageID, productID).
		First(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *GormRepo) DeleteProductImage(ctx context.Context, imageID uint) error {
	return r.DB.WithContext(ctx).Delete(&models.ProductImage{}, imageID).Error
}
