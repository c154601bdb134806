package mysql

import (
	"context"
	"errors"
	"log"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Select("products.*, categories.name AS category_name, categories.slug AS category_slug").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
}

func (r *productRepo) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := r.joined(ctx)
	if filter.FeaturedOnly {
		q = q.Where("products.featured = ?", true)
	}
	if filter.CategoryID != nil {
		q = q.Where("products.category_id = ?", *filter.CategoryID)
	} else if filter.CategorySlug != "" {
		q = q.Where("categories.slug = ?", filter.CategorySlug)
	}

	var out []domain.Product
	if err := q.Order("products.created_at DESC").Order("products.id DESC").Find(&out).Error; err != nil {
		log.Printf("FindAll products error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.joined(ctx).Where("products.id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID product error: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Save(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		log.Printf("Product save error: %v", err)
		return translateError(err)
	}
	log.Printf("Product saved with ID: %d (image %d bytes)", product.ID, len(product.Image))
	return nil
}

func (r *productRepo) Update(ctx context.Context, id uint64, changes domain.ProductChanges) error {
	fields := map[string]any{}
	if changes.Name != nil {
		fields["name"] = *changes.Name
	}
	if changes.Price != nil {
		fields["price"] = *changes.Price
	}
	if len(changes.Image) > 0 {
		fields["image"] = changes.Image
	}
	if changes.Category != nil {
		fields["category"] = changes.Category.Label
		fields["category_id"] = changes.Category.ID
	}
	if changes.Rating != nil {
		fields["rating"] = *changes.Rating
	}
	if changes.Reviews != nil {
		fields["reviews"] = *changes.Reviews
	}
	if changes.InStock != nil {
		fields["in_stock"] = *changes.InStock
	}
	if changes.Featured != nil {
		fields["featured"] = *changes.Featured
	}
	if changes.Description != nil {
		fields["description"] = *changes.Description
	}

	if len(fields) == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return nil
	}

	result := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		log.Printf("Product update error: %v", result.Error)
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		log.Printf("Product delete error: %v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	log.Printf("Product %d deleted", id)
	return nil
}
