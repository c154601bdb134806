package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/mocks"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMemoryCatalog() (*CatalogService, *mocks.MemoryStore) {
	store := mocks.NewMemoryStore()
	return NewCatalogService(store.Categories(), store.Products()), store
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr[T any](v T) *T { return &v }

func TestCatalogService_CreateCategory(t *testing.T) {
	tests := []struct {
		name         string
		input        CreateCategoryInput
		expectedSlug string
		expectedMsg  string
	}{
		{name: "slug derived from name", input: CreateCategoryInput{Name: "Home Audio"}, expectedSlug: "home-audio"},
		{name: "punctuation stripped", input: CreateCategoryInput{Name: "TVs & Monitors!"}, expectedSlug: "tvs--monitors"},
		{name: "explicit slug kept", input: CreateCategoryInput{Name: "Audio", Slug: "sound"}, expectedSlug: "sound"},
		{name: "transliterated fallback", input: CreateCategoryInput{Name: "Électronique"}, expectedSlug: "lectronique"},
		{name: "non latin name", input: CreateCategoryInput{Name: "Звук"}, expectedSlug: "zvuk"},
		{name: "name required", input: CreateCategoryInput{Name: "  "}, expectedMsg: "Category name is required"},
		{name: "symbols only", input: CreateCategoryInput{Name: "!!!"}, expectedMsg: "Could not generate a valid slug from category name"},
		{name: "bad explicit slug", input: CreateCategoryInput{Name: "Audio", Slug: "Bad Slug"}, expectedMsg: "Slug may only contain lowercase letters, numbers and hyphens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newMemoryCatalog()

			c, err := svc.CreateCategory(context.Background(), tt.input)

			if tt.expectedMsg != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.expectedMsg, verr.Message)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, c.ID)
			assert.Equal(t, tt.expectedSlug, c.Slug)
		})
	}
}

func TestCatalogService_CategoryUniqueness(t *testing.T) {
	svc, _ := newMemoryCatalog()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio", Slug: "other"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = svc.CreateCategory(ctx, CreateCategoryInput{Name: "Sound", Slug: "audio"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	video, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Video"})
	require.NoError(t, err)
	_, err = svc.UpdateCategory(ctx, video.ID, domain.CategoryChanges{Slug: ptr("audio")})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	all, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogService_UpdateCategory(t *testing.T) {
	svc, _ := newMemoryCatalog()
	ctx := context.Background()
	c, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio", Description: ptr("Speakers"), Image: pngHeader})
	require.NoError(t, err)

	updated, err := svc.UpdateCategory(ctx, c.ID, domain.CategoryChanges{Name: ptr("Hi-Fi")})
	require.NoError(t, err)
	assert.Equal(t, "Hi-Fi", updated.Name)
	assert.Equal(t, "audio", updated.Slug)
	assert.Equal(t, "Speakers", *updated.Description)
	assert.Equal(t, pngHeader, updated.Image, "image kept when none supplied")

	_, err = svc.UpdateCategory(ctx, 404, domain.CategoryChanges{Name: ptr("Ghost")})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.UpdateCategory(ctx, c.ID, domain.CategoryChanges{Image: []byte("plain text")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCatalogService_DeleteCategoryGuard(t *testing.T) {
	svc, _ := newMemoryCatalog()
	ctx := context.Background()

	audio, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	require.NoError(t, err)
	speaker, err := svc.CreateProduct(ctx, CreateProductInput{
		Name: "Speaker", Price: price("99.90"), Image: pngHeader, CategoryID: &audio.ID,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, audio.ID), ErrHasDependents)
	_, err = svc.GetCategory(ctx, audio.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, speaker.ID))
	assert.NoError(t, svc.DeleteCategory(ctx, audio.ID))

	_, err = svc.GetCategory(ctx, audio.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, audio.ID), ErrCategoryNotFound)
}

func TestCatalogService_ResolveCategory(t *testing.T) {
	audio := CreateMockCategory(7, "Audio", "audio")

	tests := []struct {
		name          string
		categoryID    *uint64
		reference     string
		setupMocks    func(*mocks.MockCategoryRepository)
		expectedKind  CategoryResolution
		expectedID    *uint64
		expectedLabel string
		assignErr     error
	}{
		{
			name:       "id found",
			categoryID: ptr(uint64(7)),
			reference:  "ignored",
			setupMocks: func(m *mocks.MockCategoryRepository) {
				m.On("FindByID", mock.Anything, uint64(7)).Return(audio, nil)
			},
			expectedKind:  CategoryResolvedByID,
			expectedID:    ptr(uint64(7)),
			expectedLabel: "Audio",
		},
		{
			name:       "id not found keeps id and label",
			categoryID: ptr(uint64(99)),
			reference:  "Gadgets",
			setupMocks: func(m *mocks.MockCategoryRepository) {
				m.On("FindByID", mock.Anything, uint64(99)).Return(nil, nil)
			},
			expectedKind:  CategoryUnresolvedID,
			expectedID:    ptr(uint64(99)),
			expectedLabel: "Gadgets",
		},
		{
			name:       "id not found without label",
			categoryID: ptr(uint64(99)),
			setupMocks: func(m *mocks.MockCategoryRepository) {
				m.On("FindByID", mock.Anything, uint64(99)).Return(nil, nil)
			},
			expectedKind: CategoryUnresolvedID,
			expectedID:   ptr(uint64(99)),
			assignErr:    ErrMissingCategory,
		},
		{
			name:      "reference matches slug",
			reference: "audio",
			setupMocks: func(m *mocks.MockCategoryRepository) {
				m.On("FindBySlugOrName", mock.Anything, "audio").Return(audio, nil)
			},
			expectedKind:  CategoryResolvedByReference,
			expectedID:    ptr(uint64(7)),
			expectedLabel: "Audio",
		},
		{
			name:      "reference matches nothing",
			reference: "Drones",
			setupMocks: func(m *mocks.MockCategoryRepository) {
				m.On("FindBySlugOrName", mock.Anything, "Drones").Return(nil, nil)
			},
			expectedKind:  CategoryLabelOnly,
			expectedLabel: "Drones",
		},
		{
			name:         "zero id counts as absent",
			categoryID:   ptr(uint64(0)),
			setupMocks:   func(m *mocks.MockCategoryRepository) {},
			expectedKind: CategoryMissing,
			assignErr:    ErrMissingCategory,
		},
		{
			name:         "nothing supplied",
			setupMocks:   func(m *mocks.MockCategoryRepository) {},
			expectedKind: CategoryMissing,
			assignErr:    ErrMissingCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCategories := new(mocks.MockCategoryRepository)
			tt.setupMocks(mockCategories)
			svc := NewCatalogService(mockCategories, new(mocks.MockProductRepository))

			got, err := svc.ResolveCategory(context.Background(), tt.categoryID, tt.reference)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedKind, got.Kind)
			assert.Equal(t, tt.expectedID, got.ID)
			assert.Equal(t, tt.expectedLabel, got.Label)

			assignment, err := got.Assignment()
			if tt.assignErr != nil {
				assert.ErrorIs(t, err, tt.assignErr)
				assert.Nil(t, assignment)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedLabel, assignment.Label)
			}
			mockCategories.AssertExpectations(t)
		})
	}
}

func TestCatalogService_ResolveCategory_StorageFailure(t *testing.T) {
	mockCategories := new(mocks.MockCategoryRepository)
	mockCategories.On("FindBySlugOrName", mock.Anything, "audio").Return(nil, errors.New("connection reset"))
	svc := NewCatalogService(mockCategories, new(mocks.MockProductRepository))

	_, err := svc.ResolveCategory(context.Background(), nil, "audio")
	assert.EqualError(t, err, "connection reset")
}

func TestCatalogService_CreateProduct_ResolvesReference(t *testing.T) {
	svc, _ := newMemoryCatalog()
	ctx := context.Background()

	audio, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	require.NoError(t, err)
	require.Equal(t, "audio", audio.Slug)

	p, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:     "Speaker",
		Price:    price("99.90"),
		Image:    pngHeader,
		Category: "audio",
	})
	require.NoError(t, err)

	assert.Equal(t, "Audio", p.Category)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, audio.ID, *p.CategoryID)
	require.NotNil(t, p.CategorySlug)
	assert.Equal(t, "audio", *p.CategorySlug)
	assert.Equal(t, "Audio", *p.CategoryName)

	assert.True(t, p.InStock, "inStock defaults to true")
	assert.False(t, p.Featured, "featured defaults to false")
	assert.True(t, p.Rating.IsZero())
	assert.Zero(t, p.Reviews)

	bySlug, err := svc.ListProducts(ctx, domain.ProductFilter{CategorySlug: "audio"})
	require.NoError(t, err)
	require.Len(t, bySlug, 1)
	assert.Equal(t, p.ID, bySlug[0].ID)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateProductInput
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing name",
			input: CreateProductInput{Price: price("1"), Image: pngHeader, Category: "x"},
			check: expectValidation("Missing required fields: name and price are required"),
		},
		{
			name:  "missing price",
			input: CreateProductInput{Name: "Cable", Image: pngHeader, Category: "x"},
			check: expectValidation("Missing required fields: name and price are required"),
		},
		{
			name:  "negative price",
			input: CreateProductInput{Name: "Cable", Price: price("-1"), Image: pngHeader, Category: "x"},
			check: expectValidation("Price must not be negative"),
		},
		{
			name:  "missing image",
			input: CreateProductInput{Name: "Cable", Price: price("1"), Category: "x"},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrMissingImage) },
		},
		{
			name:  "image that is not an image",
			input: CreateProductInput{Name: "Cable", Price: price("1"), Image: []byte("%PDF-1.4 not an image"), Category: "x"},
			check: func(t *testing.T, err error) {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "image", verr.Field)
			},
		},
		{
			name:  "rating above five",
			input: CreateProductInput{Name: "Cable", Price: price("1"), Image: pngHeader, Category: "x", Rating: price("5.1")},
			check: expectValidation("Rating must be between 0 and 5"),
		},
		{
			name:  "negative reviews",
			input: CreateProductInput{Name: "Cable", Price: price("1"), Image: pngHeader, Category: "x", Reviews: ptr(-3)},
			check: expectValidation("Reviews must not be negative"),
		},
		{
			name:  "no category",
			input: CreateProductInput{Name: "Cable", Price: price("1"), Image: pngHeader},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrMissingCategory) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newMemoryCatalog()

			p, err := svc.CreateProduct(context.Background(), tt.input)

			assert.Nil(t, p)
			tt.check(t, err)
			all, _ := store.Products().FindAll(context.Background(), domain.ProductFilter{})
			assert.Empty(t, all)
		})
	}
}

func expectValidation(message string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, message, verr.Message)
	}
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	svc, _ := newMemoryCatalog()
	ctx := context.Background()

	audio, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, CreateProductInput{
		Name: "Speaker", Price: price("99.90"), Image: pngHeader, CategoryID: &audio.ID, Featured: ptr(true),
	})
	require.NoError(t, err)

	t.Run("partial update keeps category and image", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductInput{Price: price("79.90"), InStock: ptr(false)})
		require.NoError(t, err)
		assert.True(t, updated.Price.Equal(decimal.RequireFromString("79.90")))
		assert.False(t, updated.InStock)
		assert.True(t, updated.Featured)
		assert.Equal(t, "Audio", updated.Category)
		assert.Equal(t, audio.ID, *updated.CategoryID)
		assert.Equal(t, pngHeader, updated.Image)
	})

	t.Run("free text category becomes label only", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductInput{Category: ptr("Drones")})
		require.NoError(t, err)
		assert.Equal(t, "Drones", updated.Category)
		assert.Nil(t, updated.CategoryID)
		assert.Nil(t, updated.CategoryName)
	})

	t.Run("empty category is rejected", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, p.ID, UpdateProductInput{Category: ptr("")})
		assert.ErrorIs(t, err, ErrMissingCategory)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, 12345, UpdateProductInput{Name: ptr("Ghost")})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestCatalogService_ListProducts_Filters(t *testing.T) {
	svc, _ := newMemoryCatalog()
	ctx := context.Background()

	audio, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	require.NoError(t, err)
	video, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Video"})
	require.NoError(t, err)

	mk := func(name string, cat uint64, featured bool) *domain.Product {
		p, err := svc.CreateProduct(ctx, CreateProductInput{
			Name: name, Price: price("10"), Image: pngHeader, CategoryID: &cat, Featured: &featured,
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		return p
	}
	speaker := mk("Speaker", audio.ID, true)
	mk("Headphones", audio.ID, false)
	tv := mk("TV", video.ID, true)

	all, err := svc.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, tv.ID, all[0].ID, "newest first")

	featured, err := svc.ListProducts(ctx, domain.ProductFilter{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	featuredAudio, err := svc.ListProducts(ctx, domain.ProductFilter{FeaturedOnly: true, CategorySlug: "audio"})
	require.NoError(t, err)
	require.Len(t, featuredAudio, 1)
	assert.Equal(t, speaker.ID, featuredAudio[0].ID)

	idWins, err := svc.ListProducts(ctx, domain.ProductFilter{CategoryID: &video.ID, CategorySlug: "audio"})
	require.NoError(t, err)
	require.Len(t, idWins, 1)
	assert.Equal(t, tv.ID, idWins[0].ID)
}

func TestCatalogService_GetProduct_Cache(t *testing.T) {
	product := CreateMockProduct(TestProductID, TestProductName, "99.90", true)
	cached, err := json.Marshal(product)
	require.NoError(t, err)

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockProductRepository, *mocks.MockCache)
		expectedError error
	}{
		{
			name: "cache hit skips the database",
			setupMocks: func(repo *mocks.MockProductRepository, cache *mocks.MockCache) {
				cache.On("Get", mock.Anything, "product:1").Return(redis.NewStringResult(string(cached), nil))
			},
		},
		{
			name: "cache miss reads through and fills",
			setupMocks: func(repo *mocks.MockProductRepository, cache *mocks.MockCache) {
				cache.On("Get", mock.Anything, "product:1").Return(redis.NewStringResult("", redis.Nil))
				repo.On("FindByID", mock.Anything, TestProductID).Return(product, nil)
				cache.On("Set", mock.Anything, "product:1", mock.Anything, 30*time.Second).Return(redis.NewStatusResult("OK", nil))
			},
		},
		{
			name: "redis down falls back to the database",
			setupMocks: func(repo *mocks.MockProductRepository, cache *mocks.MockCache) {
				cache.On("Get", mock.Anything, "product:1").Return(redis.NewStringResult("", errors.New("dial tcp: refused")))
				repo.On("FindByID", mock.Anything, TestProductID).Return(product, nil)
				cache.On("Set", mock.Anything, "product:1", mock.Anything, 30*time.Second).Return(redis.NewStatusResult("", errors.New("dial tcp: refused")))
			},
		},
		{
			name: "missing product is not cached",
			setupMocks: func(repo *mocks.MockProductRepository, cache *mocks.MockCache) {
				cache.On("Get", mock.Anything, "product:1").Return(redis.NewStringResult("", redis.Nil))
				repo.On("FindByID", mock.Anything, TestProductID).Return(nil, nil)
			},
			expectedError: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockProductRepository)
			cache := new(mocks.MockCache)
			tt.setupMocks(repo, cache)

			svc := NewCatalogService(new(mocks.MockCategoryRepository), repo)
			svc.SetRedisClient(cache, 30*time.Second)

			got, err := svc.GetProduct(context.Background(), TestProductID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, TestProductName, got.Name)
				assert.True(t, got.Price.Equal(decimal.RequireFromString("99.90")))
				assert.Equal(t, pngHeader, got.Image)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetProduct_CollapsesConcurrentMisses(t *testing.T) {
	var reads int32
	release := make(chan struct{})

	repo := new(mocks.MockProductRepository)
	repo.On("FindByID", mock.Anything, TestProductID).
		Return(CreateMockProduct(TestProductID, TestProductName, "10", true), nil).
		Run(func(mock.Arguments) {
			atomic.AddInt32(&reads, 1)
			<-release
		})

	svc := NewCatalogService(new(mocks.MockCategoryRepository), repo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.GetProduct(context.Background(), TestProductID)
			assert.NoError(t, err)
			assert.Equal(t, TestProductName, p.Name)
		}()
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&reads) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&reads), "callers join the in-flight read")
	close(release)
	wg.Wait()
}

func TestCatalogService_WritesInvalidateCache(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCache)

	repo.On("Update", mock.Anything, TestProductID, mock.AnythingOfType("domain.ProductChanges")).Return(nil)
	repo.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, "Renamed", "10", true), nil)
	repo.On("Delete", mock.Anything, TestProductID).Return(nil)
	cache.On("Del", mock.Anything, []string{"product:1"}).Return(redis.NewIntResult(1, nil)).Twice()

	svc := NewCatalogService(new(mocks.MockCategoryRepository), repo)
	svc.SetRedisClient(cache, time.Minute)

	updated, err := svc.UpdateProduct(context.Background(), TestProductID, UpdateProductInput{Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, svc.DeleteProduct(context.Background(), TestProductID))

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCatalogService_CategoryRenameRefreshesCachedProducts(t *testing.T) {
	svc, _ := newMemoryCatalog()
	cache := mocks.NewMapCache()
	svc.SetRedisClient(cache, time.Minute)
	ctx := context.Background()

	audio, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	require.NoError(t, err)
	speaker, err := svc.CreateProduct(ctx, CreateProductInput{
		Name: "Speaker", Price: price("99.90"), Image: pngHeader, Category: "audio",
	})
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, speaker.ID)
	require.NoError(t, err)
	assert.Equal(t, "Audio", *got.CategoryName)
	require.True(t, cache.Has(productCacheKey(speaker.ID)))

	_, err = svc.UpdateCategory(ctx, audio.ID, domain.CategoryChanges{Name: ptr("Sound"), Slug: ptr("sound")})
	require.NoError(t, err)
	assert.False(t, cache.Has(productCacheKey(speaker.ID)))

	got, err = svc.GetProduct(ctx, speaker.ID)
	require.NoError(t, err)
	listed, err := svc.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	assert.Equal(t, "Sound", *got.CategoryName)
	assert.Equal(t, "sound", *got.CategorySlug)
	assert.Equal(t, *listed[0].CategoryName, *got.CategoryName)
	assert.Equal(t, *listed[0].CategorySlug, *got.CategorySlug)
}

func TestCatalogService_CategoryCreateRefreshesDanglingProducts(t *testing.T) {
	svc, _ := newMemoryCatalog()
	cache := mocks.NewMapCache()
	svc.SetRedisClient(cache, time.Minute)
	ctx := context.Background()

	// The store hands out ids in sequence: the product takes 1, the category 2.
	speaker, err := svc.CreateProduct(ctx, CreateProductInput{
		Name: "Speaker", Price: price("10"), Image: pngHeader, CategoryID: ptr(uint64(2)), Category: "Audio",
	})
	require.NoError(t, err)
	got, err := svc.GetProduct(ctx, speaker.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryName)

	audio, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	require.NoError(t, err)
	require.Equal(t, uint64(2), audio.ID)

	got, err = svc.GetProduct(ctx, speaker.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryName)
	assert.Equal(t, "audio", *got.CategorySlug)
}

func TestCatalogService_CategoryWritesWithoutCacheSkipLookup(t *testing.T) {
	categories := new(mocks.MockCategoryRepository)
	products := new(mocks.MockProductRepository)
	categories.On("Delete", mock.Anything, uint64(7)).Return(nil)

	svc := NewCatalogService(categories, products)
	require.NoError(t, svc.DeleteCategory(context.Background(), 7))

	categories.AssertExpectations(t)
	products.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestCatalogService_GetProduct_DetachesSharedRead(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	repo.On("FindByID", live, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, "10", true), nil)

	svc := NewCatalogService(new(mocks.MockCategoryRepository), repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := svc.GetProduct(ctx, TestProductID)
	require.NoError(t, err, "waiters sharing this read must not inherit the caller's cancellation")
	assert.Equal(t, TestProductName, p.Name)
	repo.AssertExpectations(t)
}

func TestCatalogService_WarmupProductCache(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCache)

	repo.On("FindAll", mock.Anything, domain.ProductFilter{FeaturedOnly: true}).Return([]domain.Product{
		*CreateMockProduct(1, "Speaker", "10", true),
		*CreateMockProduct(2, "TV", "20", true),
	}, nil)
	cache.On("Set", mock.Anything, "product:1", mock.Anything, time.Minute).Return(redis.NewStatusResult("OK", nil))
	cache.On("Set", mock.Anything, "product:2", mock.Anything, time.Minute).Return(redis.NewStatusResult("OK", nil))

	svc := NewCatalogService(new(mocks.MockCategoryRepository), repo)
	assert.NoError(t, svc.WarmupProductCache(context.Background()), "no cache configured is a no-op")

	svc.SetRedisClient(cache, 0)
	require.NoError(t, svc.WarmupProductCache(context.Background()))

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
