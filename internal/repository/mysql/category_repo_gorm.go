package mysql

import (
	"context"
	"errors"
	"log"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) FindAll(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		log.Printf("FindAll categories error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) FindByID(ctx context.Context, id uint64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID category error: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) FindBySlugOrName(ctx context.Context, ref string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Where("slug = ? OR name = ?", ref, ref).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindBySlugOrName error: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) Save(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, repository.ErrDuplicateKey) {
			log.Printf("Category save error: %v", err)
		}
		return err
	}
	log.Printf("Category saved with ID: %d", category.ID)
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, id uint64, changes domain.CategoryChanges) error {
	fields := map[string]any{}
	if changes.Name != nil {
		fields["name"] = *changes.Name
	}
	if changes.Slug != nil {
		fields["slug"] = *changes.Slug
	}
	if changes.Description != nil {
		fields["description"] = *changes.Description
	}
	if len(changes.Image) > 0 {
		fields["image"] = changes.Image
	}

	if len(fields) == 0 {
		return r.exists(ctx, id)
	}

	result := r.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		err := translateError(result.Error)
		if !errors.Is(err, repository.ErrDuplicateKey) {
			log.Printf("Category update error: %v", err)
		}
		return err
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) exists(ctx context.Context, id uint64) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete checks for referencing products and removes the row in the same
// transaction.
func (r *categoryRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dependents int64
		if err := tx.Model(&domain.Product{}).Where("category_id = ?", id).Count(&dependents).Error; err != nil {
			log.Printf("Category dependents count error: %v", err)
			return err
		}
		if dependents > 0 {
			return repository.ErrHasDependents
		}

		result := tx.Delete(&domain.Category{}, id)
		if result.Error != nil {
			log.Printf("Category delete error: %v", result.Error)
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		log.Printf("Category %d deleted", id)
		return nil
	})
}
