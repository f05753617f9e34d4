package main

import (
	"errors"
	"log/slog"

	"github.com/akmmp241/product-catalog/shared"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryService struct {
	validate   *validator.Validate
	categories CategoryRepository
	products   ProductRepository
	guard      fiber.Handler
}

func NewCategoryService(validate *validator.Validate, categories CategoryRepository, products ProductRepository, guard fiber.Handler) *CategoryService {
	return &CategoryService{validate: validate, categories: categories, products: products, guard: guard}
}

func (s *CategoryService) RegisterRoutes(route fiber.Router) {
	route.Get("/", s.handleGetCategories)
	route.Get("/:id", s.handleGetCategoryByID)
	route.Get("/:id/products", s.handleGetProductsByCategoryID)
	route.Post("/", s.guard, s.handleCreateCategory)
	route.Put("/:id", s.guard, s.handleUpdateCategory)
	route.Delete("/:id", s.guard, s.handleDeleteCategory)
}

func (s *CategoryService) handleGetCategories(c *fiber.Ctx) error {
	categories, err := s.categories.FindAll(c.UserContext())
	if err != nil {
		return repositoryError(err, "Category not found")
	}

	return c.JSON(fiber.Map{
		"message": "Categories retrieved successfully",
		"data":    categories,
		"errors":  nil,
	})
}

func (s *CategoryService) handleGetCategoryByID(c *fiber.Ctx) error {
	id, err := parseObjectID(c.Params("id"), "Invalid category id")
	if err != nil {
		return err
	}

	category, err := s.categories.FindByID(c.UserContext(), id)
	if err != nil {
		return repositoryError(err, "Category not found")
	}

	return c.JSON(fiber.Map{
		"message": "Category retrieved successfully",
		"data":    category,
		"errors":  nil,
	})
}

func (s *CategoryService) handleGetProductsByCategoryID(c *fiber.Ctx) error {
	id, err := parseObjectID(c.Params("id"), "Invalid category id")
	if err != nil {
		return err
	}

	filter, err := parseProductFilter(c)
	if err != nil {
		return err
	}
	filter.CategoryID = &id

	if _, err := s.categories.FindByID(c.UserContext(), id); err != nil {
		return repositoryError(err, "Category not found")
	}

	products, total, err := s.products.Find(c.UserContext(), filter)
	if err != nil {
		return repositoryError(err, "Product not found")
	}

	return c.JSON(fiber.Map{
		"message": "Products retrieved successfully",
		"data":    ProductPage{Items: products, Total: total, Page: filter.Page, Limit: filter.Limit},
		"errors":  nil,
	})
}

func (s *CategoryService) handleCreateCategory(c *fiber.Ctx) error {
	req := CategoryRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	err := s.validate.Struct(req)
	if err != nil && errors.As(err, &validator.ValidationErrors{}) {
		return shared.NewFailedValidationError(req, err.(validator.ValidationErrors))
	}

	category := &Category{Name: req.Name, Description: req.Description}
	if err := s.categories.Create(c.UserContext(), category); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "Category name already exists")
		}
		return repositoryError(err, "Category not found")
	}

	slog.Info("Category created", "category-id", category.ID.Hex(), "user-id", shared.GetUserIdFromContext(c))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Category created successfully",
		"data":    category,
		"errors":  nil,
	})
}

func (s *CategoryService) handleUpdateCategory(c *fiber.Ctx) error {
	id, err := parseObjectID(c.Params("id"), "Invalid category id")
	if err != nil {
		return err
	}

	req := CategoryRequest{}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	err = s.validate.Struct(req)
	if err != nil && errors.As(err, &validator.ValidationErrors{}) {
		return shared.NewFailedValidationError(req, err.(validator.ValidationErrors))
	}

	category, err := s.categories.FindByID(c.UserContext(), id)
	if err != nil {
		return repositoryError(err, "Category not found")
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := s.categories.Update(c.UserContext(), category); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "Category name already exists")
		}
		return repositoryError(err, "Category not found")
	}

	return c.JSON(fiber.Map{
		"message": "Category updated successfully",
		"data":    category,
		"errors":  nil,
	})
}

func (s *CategoryService) handleDeleteCategory(c *fiber.Ctx) error {
	id, err := parseObjectID(c.Params("id"), "Invalid category id")
	if err != nil {
		return err
	}

	count, err := s.products.CountByCategory(c.UserContext(), id)
	if err != nil {
		return repositoryError(err, "Category not found")
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, "Category still has products")
	}

	if err := s.categories.Delete(c.UserContext(), id); err != nil {
		return repositoryError(err, "Category not found")
	}

	// a product written between the count and the delete is left orphaned
	if orphaned, err := s.products.CountByCategory(c.UserContext(), id); err == nil && orphaned > 0 {
		slog.Warn("Category deleted while products still reference it", "category-id", id.Hex(), "products", orphaned)
	}

	slog.Info("Category deleted", "category-id", id.Hex(), "user-id", shared.GetUserIdFromContext(c))
	return c.JSON(fiber.Map{
		"message": "Category deleted successfully",
		"data":    nil,
		"errors":  nil,
	})
}

func parseObjectID(raw string, msg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusBadRequest, msg)
	}
	return id, nil
}

// repositoryError maps storage errors onto HTTP errors.
func repositoryError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	case errors.Is(err, ErrDatabaseUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Database unavailable")
	default:
		return err
	}
}
