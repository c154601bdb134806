package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var maxRating = decimal.NewFromInt(5)

type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	cache      infra.Cache
	cacheTTL   time.Duration
	group      singleflight.Group
}

func NewCatalogService(c repository.CategoryRepository, p repository.ProductRepository) *CatalogService {
	return &CatalogService{
		categories: c,
		products:   p,
		cacheTTL:   time.Minute,
	}
}

// SetRedisClient enables the product read cache. Without it every read goes to
// the database.
func (s *CatalogService) SetRedisClient(client infra.Cache, ttl time.Duration) {
	s.cache = client
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// Categories

type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description *string
	Image       []byte
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Category{}
	}
	return out, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint64) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// CreateCategory derives the slug from the name when none is given.
func (s *CatalogService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "Category name is required")
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = domain.Slugify(name)
		if !domain.ValidSlug(slug) {
			return nil, invalid("slug", "Could not generate a valid slug from category name")
		}
	} else if !domain.ValidSlug(slug) {
		return nil, invalid("slug", "Slug may only contain lowercase letters, numbers and hyphens")
	}

	if err := checkImage(in.Image); err != nil {
		return nil, err
	}

	c := &domain.Category{
		Name:        name,
		Slug:        slug,
		Description: in.Description,
		Image:       in.Image,
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, catalogError(err, ErrCategoryNotFound)
	}
	// Products may already carry this id from an unresolved categoryId.
	s.invalidateCategoryProducts(ctx, c.ID)
	return c, nil
}

// UpdateCategory writes only the supplied fields and returns the stored row.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint64, changes domain.CategoryChanges) (*domain.Category, error) {
	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		if name == "" {
			return nil, invalid("name", "Category name is required")
		}
		changes.Name = &name
	}
	if changes.Slug != nil && !domain.ValidSlug(*changes.Slug) {
		return nil, invalid("slug", "Slug may only contain lowercase letters, numbers and hyphens")
	}
	if err := checkImage(changes.Image); err != nil {
		return nil, err
	}

	if err := s.categories.Update(ctx, id, changes); err != nil {
		return nil, catalogError(err, ErrCategoryNotFound)
	}
	s.invalidateCategoryProducts(ctx, id)
	return s.GetCategory(ctx, id)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return catalogError(err, ErrCategoryNotFound)
	}
	s.invalidateCategoryProducts(ctx, id)
	return nil
}

// invalidateCategoryProducts drops the cached products whose joined category
// name and slug come from category id.
func (s *CatalogService) invalidateCategoryProducts(ctx context.Context, id uint64) {
	if s.cache == nil {
		return
	}

	products, err := s.products.FindAll(ctx, domain.ProductFilter{CategoryID: &id})
	if err != nil {
		log.Printf("Failed to list products of category %d for cache invalidation: %v", id, err)
		return
	}
	if len(products) == 0 {
		return
	}

	keys := make([]string, 0, len(products))
	for i := range products {
		keys = append(keys, productCacheKey(products[i].ID))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Failed to invalidate %d cached products of category %d: %v", len(keys), id, err)
	}
}

// Category resolution

type CategoryResolution int

const (
	CategoryMissing CategoryResolution = iota
	CategoryResolvedByID
	CategoryUnresolvedID
	CategoryResolvedByReference
	CategoryLabelOnly
)

func (r CategoryResolution) String() string {
	switch r {
	case CategoryResolvedByID:
		return "resolved-by-id"
	case CategoryUnresolvedID:
		return "unresolved-id"
	case CategoryResolvedByReference:
		return "resolved-by-reference"
	case CategoryLabelOnly:
		return "label-only"
	default:
		return "missing"
	}
}

type ResolvedCategory struct {
	Kind  CategoryResolution
	ID    *uint64
	Label string
}

// Assignment turns the resolution into the label and id stored on a product.
// It fails with ErrMissingCategory when no label could be determined.
func (r ResolvedCategory) Assignment() (*domain.CategoryAssignment, error) {
	if r.Kind == CategoryMissing || strings.TrimSpace(r.Label) == "" {
		return nil, ErrMissingCategory
	}
	return &domain.CategoryAssignment{Label: r.Label, ID: r.ID}, nil
}

// ResolveCategory decides which category a product write refers to. An id
// wins over the free-text reference. An id that matches no row is kept as
// given with the reference as its label, so products.category_id can dangle.
func (s *CatalogService) ResolveCategory(ctx context.Context, categoryID *uint64, reference string) (ResolvedCategory, error) {
	reference = strings.TrimSpace(reference)

	if categoryID != nil && *categoryID != 0 {
		c, err := s.categories.FindByID(ctx, *categoryID)
		if err != nil {
			return ResolvedCategory{}, err
		}
		if c == nil {
			id := *categoryID
			return ResolvedCategory{Kind: CategoryUnresolvedID, ID: &id, Label: reference}, nil
		}
		return ResolvedCategory{Kind: CategoryResolvedByID, ID: &c.ID, Label: c.Name}, nil
	}

	if reference == "" {
		return ResolvedCategory{Kind: CategoryMissing}, nil
	}

	c, err := s.categories.FindBySlugOrName(ctx, reference)
	if err != nil {
		return ResolvedCategory{}, err
	}
	if c == nil {
		return ResolvedCategory{Kind: CategoryLabelOnly, Label: reference}, nil
	}
	return ResolvedCategory{Kind: CategoryResolvedByReference, ID: &c.ID, Label: c.Name}, nil
}

// Products

type CreateProductInput struct {
	Name        string
	Price       *decimal.Decimal
	Image       []byte
	Category    string
	CategoryID  *uint64
	Rating      *decimal.Decimal
	Reviews     *int
	InStock     *bool
	Featured    *bool
	Description *string
}

// UpdateProductInput leaves every nil field untouched. Setting either
// CategoryID or Category re-runs category resolution.
type UpdateProductInput struct {
	Name        *string
	Price       *decimal.Decimal
	Image       []byte
	Category    *string
	CategoryID  *uint64
	Rating      *decimal.Decimal
	Reviews     *int
	InStock     *bool
	Featured    *bool
	Description *string
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	out, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

// GetProduct reads through the cache. Concurrent misses for one id share a
// single database read.
func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	cacheKey := productCacheKey(id)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var p domain.Product
			if err := json.Unmarshal(cached, &p); err == nil {
				return &p, nil
			}
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		// The read is shared by every waiter, so one caller going away must
		// not fail the others.
		ctx := context.WithoutCancel(ctx)
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrProductNotFound
		}

		if s.cache != nil {
			if data, err := json.Marshal(p); err == nil {
				if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
					log.Printf("Failed to cache product %d: %v", id, err)
				}
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	p := *v.(*domain.Product)
	return &p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == nil {
		return nil, invalid("name", "Missing required fields: name and price are required")
	}
	if in.Price.IsNegative() {
		return nil, invalid("price", "Price must not be negative")
	}
	if len(in.Image) == 0 {
		return nil, ErrMissingImage
	}
	if err := checkImage(in.Image); err != nil {
		return nil, err
	}

	p := &domain.Product{
		Name:        name,
		Price:       *in.Price,
		Image:       in.Image,
		Rating:      decimal.Zero,
		InStock:     true,
		Description: in.Description,
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Reviews != nil {
		p.Reviews = *in.Reviews
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if err := checkScores(&p.Rating, &p.Reviews); err != nil {
		return nil, err
	}

	resolved, err := s.ResolveCategory(ctx, in.CategoryID, in.Category)
	if err != nil {
		return nil, err
	}
	assignment, err := resolved.Assignment()
	if err != nil {
		return nil, err
	}
	p.Category = assignment.Label
	p.CategoryID = assignment.ID

	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("Product %d created in category %q (%s)", p.ID, p.Category, resolved.Kind)

	return s.reloadProduct(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint64, in UpdateProductInput) (*domain.Product, error) {
	changes := domain.ProductChanges{
		Price:       in.Price,
		Image:       in.Image,
		Rating:      in.Rating,
		Reviews:     in.Reviews,
		InStock:     in.InStock,
		Featured:    in.Featured,
		Description: in.Description,
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name", "Product name must not be empty")
		}
		changes.Name = &name
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, invalid("price", "Price must not be negative")
	}
	if err := checkScores(in.Rating, in.Reviews); err != nil {
		return nil, err
	}
	if err := checkImage(in.Image); err != nil {
		return nil, err
	}

	if in.CategoryID != nil || in.Category != nil {
		var reference string
		if in.Category != nil {
			reference = *in.Category
		}
		resolved, err := s.ResolveCategory(ctx, in.CategoryID, reference)
		if err != nil {
			return nil, err
		}
		assignment, err := resolved.Assignment()
		if err != nil {
			return nil, err
		}
		changes.Category = assignment
	}

	if err := s.products.Update(ctx, id, changes); err != nil {
		return nil, catalogError(err, ErrProductNotFound)
	}
	s.invalidateProduct(ctx, id)

	return s.reloadProduct(ctx, id)
}

// DeleteProduct removes the product even when orders reference it; those
// order items keep the id and show no product snapshot afterwards.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return catalogError(err, ErrProductNotFound)
	}
	s.invalidateProduct(ctx, id)
	return nil
}

// WarmupProductCache preloads the featured products, which the storefront
// landing page asks for first.
func (s *CatalogService) WarmupProductCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	featured, err := s.products.FindAll(ctx, domain.ProductFilter{FeaturedOnly: true})
	if err != nil {
		return err
	}

	for i := range featured {
		p := &featured[i]
		data, err := json.Marshal(p)
		if err != nil {
			log.Printf("Failed to warm up cache for product %d: %v", p.ID, err)
			continue
		}
		if err := s.cache.Set(ctx, productCacheKey(p.ID), data, s.cacheTTL).Err(); err != nil {
			return fmt.Errorf("warm up product %d: %w", p.ID, err)
		}
	}
	log.Printf("Warmed product cache with %d featured products", len(featured))
	return nil
}

func (s *CatalogService) reloadProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) invalidateProduct(ctx context.Context, id uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, productCacheKey(id)).Err(); err != nil {
		log.Printf("Failed to invalidate cached product %d: %v", id, err)
	}
}

func productCacheKey(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

func checkScores(rating *decimal.Decimal, reviews *int) error {
	if rating != nil && (rating.IsNegative() || rating.GreaterThan(maxRating)) {
		return invalid("rating", "Rating must be between 0 and 5")
	}
	if reviews != nil && *reviews < 0 {
		return invalid("reviews", "Reviews must not be negative")
	}
	return nil
}

// checkImage accepts an empty payload and anything whose content sniffs as an
// image.
func checkImage(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if mt := mimetype.Detect(b); !strings.HasPrefix(mt.String(), "image/") {
		return invalid("image", fmt.Sprintf("Only image files are allowed, got %s", mt.String()))
	}
	return nil
}

// catalogError maps repository sentinels onto service errors. notFound is the
// error reported for a missing row.
func catalogError(err error, notFound error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrDuplicateKey
	case errors.Is(err, repository.ErrHasDependents):
		return ErrHasDependents
	}
	return err
}
