package main

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/akmmp241/product-catalog/shared"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	searchResultSize = 20
)

type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string, size int) (*ProductSearchResult, error)
}

type ProductService struct {
	validate   *validator.Validate
	products   ProductRepository
	categories CategoryRepository
	cache      ProductCache
	publisher  ProductEventPublisher
	searcher   ProductSearcher
	guard      fiber.Handler
	devOnly    fiber.Handler
}

type ProductServiceDeps struct {
	Validate   *validator.Validate
	Products   ProductRepository
	Categories CategoryRepository
	Cache      ProductCache
	Publisher  ProductEventPublisher
	Searcher   ProductSearcher
	Guard      fiber.Handler
	DevOnly    fiber.Handler
}

func NewProductService(deps ProductServiceDeps) *ProductService {
	return &ProductService{
		validate:   deps.Validate,
		products:   deps.Products,
		categories: deps.Categories,
		cache:      deps.Cache,
		publisher:  deps.Publisher,
		searcher:   deps.Searcher,
		guard:      deps.Guard,
		devOnly:    deps.DevOnly,
	}
}

func (p *ProductService) RegisterRoutes(route fiber.Router) {
	route.Get("/", p.handleGetProducts)
	route.Get("/search", p.handleSearchProducts)
	route.Post("/reindex", p.devOnly, p.guard, p.handleReindexProducts)
	route.Get("/:id", p.handleGetProductByID)
	route.Post("/", p.guard, p.handleCreateProduct)
	route.Put("/:id", p.guard, p.handleUpdateProduct)
	route.Delete("/:id", p.guard, p.handleDeleteProduct)
}

func (p *ProductService) handleGetProducts(c *fiber.Ctx) error {
	filter, err := parseProductFilter(c)
	if err != nil {
		return err
	}

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := parseObjectID(raw, "Invalid category id")
		if err != nil {
			return err
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := p.products.Find(c.UserContext(), filter)
	if err != nil {
		return repositoryError(err, "Product not found")
	}

	return c.JSON(fiber.Map{
		"message": "Products retrieved successfully",
		"data":    ProductPage{Items: products, Total: total, Page: filter.Page, Limit: filter.Limit},
		"errors":  nil,
	})
}

func (p *ProductService) handleSearchProducts(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Search query is required")
	}
	if p.searcher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Product search is unavailable")
	}

	result, err := p.searcher.SearchProducts(c.UserContext(), query, searchResultSize)
	if err != nil {
		slog.Error("Error searching products", "err", err, "query", query)
		return fiber.NewError(fiber.StatusServiceUnavailable, "Product search is unavailable")
	}

	return c.JSON(fiber.Map{
		"message": "Products found",
		"data":    result,
		"errors":  nil,
	})
}

func (p *ProductService) handleGetProductByID(c *fiber.Ctx) error {
	id, err := parseObjectID(c.Params("id"), "Invalid product id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if product, ok := p.cache.Get(ctx, id.Hex()); ok {
		return c.JSON(fiber.Map{
			"message": "Product retrieved successfully",
			"data":    product,
			"errors":  nil,
		})
	}

	product, err := p.products.FindByID(ctx, id)
	if err != nil {
		return repositoryError(err, "Product not found")
	}
	p.cache.Set(ctx, product)

	return c.JSON(fiber.Map{
		"message": "Product retrieved successfully",
		"data":    product,
		"errors":  nil,
	})
}

func (p *ProductService) handleCreateProduct(c *fiber.Ctx) error {
	req, category, err := p.parseProductRequest(c)
	if err != nil {
		return err
	}

	product := &Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  category.ID,
		ImageUrl:    req.ImageUrl,
		Stock:       req.Stock,
	}

	ctx := c.UserContext()
	if err := p.products.Create(ctx, product); err != nil {
		return repositoryError(err, "Product not found")
	}

	p.publish(ctx, shared.ProductCreated, product.Document(category))

	slog.Info("Product created", "product-id", product.ID.Hex(), "user-id", shared.GetUserIdFromContext(c))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"data":    product,
		"errors":  nil,
	})
}

func (p *ProductService) handleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseObjectID(c.Params("id"), "Invalid product id")
	if err != nil {
		return err
	}

	req, category, err := p.parseProductRequest(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	product, err := p.products.FindByID(ctx, id)
	if err != nil {
		return repositoryError(err, "Product not found")
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.CategoryID = category.ID
	product.ImageUrl = req.ImageUrl
	product.Stock = req.Stock

	if err := p.products.Update(ctx, product); err != nil {
		return repositoryError(err, "Product not found")
	}

	p.cache.Invalidate(ctx, id.Hex())
	p.publish(ctx, shared.ProductUpdated, product.Document(category))

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"data":    product,
		"errors":  nil,
	})
}

func (p *ProductService) handleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseObjectID(c.Params("id"), "Invalid product id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if err := p.products.Delete(ctx, id); err != nil {
		return repositoryError(err, "Product not found")
	}

	p.cache.Invalidate(ctx, id.Hex())
	p.publish(ctx, shared.ProductDeleted, shared.ProductDocument{ID: id.Hex()})

	slog.Info("Product deleted", "product-id", id.Hex(), "user-id", shared.GetUserIdFromContext(c))
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
		"data":    nil,
		"errors":  nil,
	})
}

func (p *ProductService) handleReindexProducts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	categories := map[primitive.ObjectID]*Category{}
	published := 0

	err := p.products.ForEach(ctx, func(product Product) error {
		category, ok := categories[product.CategoryID]
		if !ok {
			found, err := p.categories.FindByID(ctx, product.CategoryID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			category = found
			categories[product.CategoryID] = found
		}

		if err := p.publisher.Publish(ctx, shared.ProductUpdated, product.Document(category)); err != nil {
			return err
		}
		published++
		return nil
	})
	if err != nil {
		slog.Error("Error reindexing products", "err", err, "published", published)
		return repositoryError(err, "Product not found")
	}

	slog.Info("Products queued for reindexing", "total", published)
	return c.JSON(fiber.Map{
		"message": "Products queued for reindexing",
		"data":    fiber.Map{"total": published},
		"errors":  nil,
	})
}

func (p *ProductService) parseProductRequest(c *fiber.Ctx) (*ProductRequest, *Category, error) {
	req := ProductRequest{}
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	err := p.validate.Struct(req)
	if err != nil && errors.As(err, &validator.ValidationErrors{}) {
		return nil, nil, shared.NewFailedValidationError(req, err.(validator.ValidationErrors))
	}

	categoryID, err := parseObjectID(req.CategoryID, "Invalid category id")
	if err != nil {
		return nil, nil, err
	}

	category, err := p.categories.FindByID(c.UserContext(), categoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "Category does not exist")
		}
		return nil, nil, repositoryError(err, "Category not found")
	}

	return &req, category, nil
}

// publish is best effort; the write already succeeded.
func (p *ProductService) publish(ctx context.Context, eventType string, doc shared.ProductDocument) {
	if err := p.publisher.Publish(ctx, eventType, doc); err != nil {
		slog.Error("Error publishing product event", "err", err, "event-type", eventType, "product-id", doc.ID)
	}
}

func parseProductFilter(c *fiber.Ctx) (ProductFilter, error) {
	page, err := queryInt64(c, "page", 1)
	if err != nil || page < 1 {
		return ProductFilter{}, fiber.NewError(fiber.StatusBadRequest, "page must be at least 1")
	}
	limit, err := queryInt64(c, "limit", defaultPageLimit)
	if err != nil || limit < 1 || limit > maxPageLimit {
		return ProductFilter{}, fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 100")
	}

	// the skip (page-1)*limit must fit in an int64
	if page-1 > math.MaxInt64/limit {
		return ProductFilter{}, fiber.NewError(fiber.StatusBadRequest, "page is out of range")
	}

	return ProductFilter{Page: page, Limit: limit}, nil
}

func queryInt64(c *fiber.Ctx, key string, fallback int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
