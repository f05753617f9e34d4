package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akmmp241/product-catalog/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryCategoryRepository struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]Category
	err        error
}

func newMemoryCategoryRepository(categories ...Category) *memoryCategoryRepository {
	r := &memoryCategoryRepository{categories: map[primitive.ObjectID]Category{}}
	for _, category := range categories {
		r.categories[category.ID] = category
	}
	return r
}

func (r *memoryCategoryRepository) FindAll(context.Context) ([]Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Category, 0, len(r.categories))
	for _, category := range r.categories {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryCategoryRepository) FindByID(_ context.Context, id primitive.ObjectID) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	category, ok := r.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &category, nil
}

func (r *memoryCategoryRepository) Create(_ context.Context, category *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.categories {
		if existing.Name == category.Name {
			return ErrDuplicate
		}
	}
	category.ID = primitive.NewObjectID()
	category.CreatedAt = time.Now().UTC()
	category.UpdatedAt = category.CreatedAt
	r.categories[category.ID] = *category
	return nil
}

func (r *memoryCategoryRepository) Update(_ context.Context, category *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.categories[category.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range r.categories {
		if id != category.ID && existing.Name == category.Name {
			return ErrDuplicate
		}
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *memoryCategoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.categories[id]; !ok {
		return ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type memoryProductRepository struct {
	mu       sync.Mutex
	products []Product
	err      error
	lookups  int
}

func newMemoryProductRepository(products ...Product) *memoryProductRepository {
	return &memoryProductRepository{products: products}
}

func (r *memoryProductRepository) Find(_ context.Context, filter ProductFilter) ([]Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	matched := make([]Product, 0)
	for _, product := range r.products {
		if filter.CategoryID != nil && product.CategoryID != *filter.CategoryID {
			continue
		}
		matched = append(matched, product)
	}
	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memoryProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.err != nil {
		return nil, r.err
	}
	for _, product := range r.products {
		if product.ID == id {
			p := product
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryProductRepository) Create(_ context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	r.products = append(r.products, *product)
	return nil
}

func (r *memoryProductRepository) Update(_ context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for i := range r.products {
		if r.products[i].ID == product.ID {
			r.products[i] = *product
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for i := range r.products {
		if r.products[i].ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryProductRepository) CountByCategory(_ context.Context, categoryID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var count int64
	for _, product := range r.products {
		if product.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *memoryProductRepository) ForEach(_ context.Context, fn func(Product) error) error {
	r.mu.Lock()
	products := append([]Product(nil), r.products...)
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return err
	}
	for _, product := range products {
		if err := fn(product); err != nil {
			return err
		}
	}
	return nil
}

type publishedEvent struct {
	EventType string
	Doc       shared.ProductDocument
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, doc shared.ProductDocument) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{EventType: eventType, Doc: doc})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type stubSearcher struct {
	query  string
	result *ProductSearchResult
	err    error
}

func (s *stubSearcher) SearchProducts(_ context.Context, query string, _ int) (*ProductSearchResult, error) {
	s.query = query
	return s.result, s.err
}

type staticReadiness DatabaseState

func (r staticReadiness) State() DatabaseState {
	return DatabaseState(r)
}
