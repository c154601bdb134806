package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var ErrInjected = errors.New("injected failure")

// MemoryStore keeps every table in maps and mirrors the MySQL repositories
// closely enough for service and handler tests: unique keys, the
// category dependents guard, the order_items.order_id constraint and
// transactions that discard their writes on error.
type MemoryStore struct {
	mu         sync.Mutex
	lastID     uint64
	categories map[uint64]domain.Category
	products   map[uint64]domain.Product
	orders     map[uint64]domain.Order
	items      map[uint64]domain.OrderItem
	users      map[uint64]domain.User

	// FailItemAt makes the n-th SaveItem call (1-based, counted per
	// transaction) fail with ErrInjected. Zero disables it.
	FailItemAt int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: map[uint64]domain.Category{},
		products:   map[uint64]domain.Product{},
		orders:     map[uint64]domain.Order{},
		items:      map[uint64]domain.OrderItem{},
		users:      map[uint64]domain.User{},
	}
}

func (s *MemoryStore) Orders() repository.OrderRepository       { return &memOrders{s: s} }
func (s *MemoryStore) Products() repository.ProductRepository   { return &memProducts{s: s} }
func (s *MemoryStore) Categories() repository.CategoryRepository { return &memCategories{s: s} }
func (s *MemoryStore) Users() repository.UserRepository         { return &memUsers{s: s} }

// OrderCount and ItemCount report committed rows.
func (s *MemoryStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *MemoryStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore) nextID() uint64 {
	s.lastID++
	return s.lastID
}

// Orders

type memTx struct {
	orders    []domain.Order
	items     []domain.OrderItem
	itemCalls int
}

type memOrders struct {
	s  *MemoryStore
	tx *memTx
}

func (r *memOrders) WithinTransaction(ctx context.Context, fn func(tx repository.OrderRepository) error) error {
	tx := &memTx{}
	if err := fn(&memOrders{s: r.s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range tx.orders {
		r.s.orders[o.ID] = o
	}
	for _, it := range tx.items {
		r.s.items[it.ID] = it
	}
	return nil
}

func (r *memOrders) Save(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order.ID = r.s.nextID()
	order.CreatedAt = time.Now()
	header := *order
	header.Items = nil
	if r.tx != nil {
		r.tx.orders = append(r.tx.orders, header)
		return nil
	}
	r.s.orders[header.ID] = header
	return nil
}

func (r *memOrders) SaveItem(ctx context.Context, item *domain.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.tx != nil {
		r.tx.itemCalls++
		if r.s.FailItemAt > 0 && r.tx.itemCalls == r.s.FailItemAt {
			return ErrInjected
		}
	}
	if !r.orderVisible(item.OrderID) {
		return errors.New("foreign key constraint fails on order_items.order_id")
	}

	item.ID = r.s.nextID()
	row := *item
	row.Product = nil
	if r.tx != nil {
		r.tx.items = append(r.tx.items, row)
		return nil
	}
	r.s.items[row.ID] = row
	return nil
}

func (r *memOrders) orderVisible(id uint64) bool {
	if _, ok := r.s.orders[id]; ok {
		return true
	}
	if r.tx != nil {
		for _, o := range r.tx.orders {
			if o.ID == id {
				return true
			}
		}
	}
	return false
}

func (r *memOrders) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	agg := r.aggregate(o)
	return &agg, nil
}

func (r *memOrders) FindAll(ctx context.Context) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, r.aggregate(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memOrders) UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	r.s.orders[id] = o
	return nil
}

// aggregate must be called with the lock held.
func (r *memOrders) aggregate(o domain.Order) domain.Order {
	o.Items = []domain.OrderItem{}
	for _, it := range r.s.items {
		if it.OrderID != o.ID {
			continue
		}
		if p, ok := r.s.products[it.ProductID]; ok {
			it.Product = &domain.ProductSnapshot{ID: p.ID, Name: p.Name, Image: p.Image}
		}
		o.Items = append(o.Items, it)
	}
	sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].ID < o.Items[j].ID })
	return o
}

// Products

type memProducts struct {
	s *MemoryStore
}

// joined must be called with the lock held.
func (r *memProducts) joined(p domain.Product) domain.Product {
	p.CategoryName, p.CategorySlug = nil, nil
	if p.CategoryID != nil {
		if c, ok := r.s.categories[*p.CategoryID]; ok {
			name, slug := c.Name, c.Slug
			p.CategoryName, p.CategorySlug = &name, &slug
		}
	}
	return p
}

func (r *memProducts) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.Product{}
	for _, p := range r.s.products {
		p = r.joined(p)
		if filter.FeaturedOnly && !p.Featured {
			continue
		}
		if filter.CategoryID != nil {
			if p.CategoryID == nil || *p.CategoryID != *filter.CategoryID {
				continue
			}
		} else if filter.CategorySlug != "" {
			if p.CategorySlug == nil || *p.CategorySlug != filter.CategorySlug {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memProducts) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	p = r.joined(p)
	return &p, nil
}

func (r *memProducts) Save(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product.ID = r.s.nextID()
	product.CreatedAt = time.Now()
	row := *product
	row.CategoryName, row.CategorySlug = nil, nil
	r.s.products[row.ID] = row
	return nil
}

func (r *memProducts) Update(ctx context.Context, id uint64, changes domain.ProductChanges) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if changes.Name != nil {
		p.Name = *changes.Name
	}
	if changes.Price != nil {
		p.Price = *changes.Price
	}
	if len(changes.Image) > 0 {
		p.Image = changes.Image
	}
	if changes.Category != nil {
		p.Category = changes.Category.Label
		p.CategoryID = changes.Category.ID
	}
	if changes.Rating != nil {
		p.Rating = *changes.Rating
	}
	if changes.Reviews != nil {
		p.Reviews = *changes.Reviews
	}
	if changes.InStock != nil {
		p.InStock = *changes.InStock
	}
	if changes.Featured != nil {
		p.Featured = *changes.Featured
	}
	if changes.Description != nil {
		p.Description = changes.Description
	}
	r.s.products[id] = p
	return nil
}

func (r *memProducts) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

// Categories

type memCategories struct {
	s *MemoryStore
}

func (r *memCategories) FindAll(ctx context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategories) FindByID(ctx context.Context, id uint64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCategories) FindBySlugOrName(ctx context.Context, ref string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var match *domain.Category
	for _, c := range r.s.categories {
		if c.Slug == ref || c.Name == ref {
			if match == nil || c.ID < match.ID {
				match = &c
			}
		}
	}
	return match, nil
}

// conflicts must be called with the lock held.
func (r *memCategories) conflicts(id uint64, name, slug string) bool {
	for _, c := range r.s.categories {
		if c.ID != id && (c.Name == name || c.Slug == slug) {
			return true
		}
	}
	return false
}

func (r *memCategories) Save(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.conflicts(0, category.Name, category.Slug) {
		return repository.ErrDuplicateKey
	}
	category.ID = r.s.nextID()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	r.s.categories[category.ID] = *category
	return nil
}

func (r *memCategories) Update(ctx context.Context, id uint64, changes domain.CategoryChanges) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return repository.ErrNotFound
	}
	if changes.Name != nil {
		c.Name = *changes.Name
	}
	if changes.Slug != nil {
		c.Slug = *changes.Slug
	}
	if changes.Description != nil {
		c.Description = changes.Description
	}
	if len(changes.Image) > 0 {
		c.Image = changes.Image
	}
	if r.conflicts(id, c.Name, c.Slug) {
		return repository.ErrDuplicateKey
	}
	c.UpdatedAt = time.Now()
	r.s.categories[id] = c
	return nil
}

func (r *memCategories) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			return repository.ErrHasDependents
		}
	}
	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

// Users

type memUsers struct {
	s *MemoryStore
}

func (r *memUsers) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) Save(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	user.ID = r.s.nextID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}
