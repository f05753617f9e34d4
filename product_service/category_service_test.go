package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t, testConfig, staticReadiness(DatabaseReady))

	res := env.do(t, fiber.MethodPost, "/api/categories", CategoryRequest{Name: "Books", Description: "Paper and ink"})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	body := readEnvelope(t, res)
	var created Category
	require.NoError(t, json.Unmarshal(body.Data, &created))

	assert.Equal(t, "Category created successfully", body.Message)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "Books", created.Name)
	assert.Equal(t, "Paper and ink", env.categories.categories[created.ID].Description)
}

func TestCreateCategoryValidation(t *testing.T) {
	env := newTestEnv(t, testConfig, staticReadiness(DatabaseReady))

	res := env.do(t, fiber.MethodPost, "/api/categories", CategoryRequest{Name: "B"})
	require.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	body := readEnvelope(t, res)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, "name must be at least 2", body.Errors["name"])
}

func TestCreateCategoryDuplicate(t *testing.T) {
	existing := Category{ID: primitive.NewObjectID(), Name: "Books"}
	env := newTestEnv(t, testConfig, staticReadiness(DatabaseReady))
	env.categories.categories[existing.ID] = existing

	res := env.do(t, fiber.MethodPost, "/api/categories", CategoryRequest{Name: "Books"})
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)
}

func TestGetCategory(t *testing.T) {
	category := Category{ID: primitive.NewObjectID(), Name: "Games"}
	env := newTestEnv(t, testConfig, staticReadiness(DatabaseReady))
	env.categories.categories[category.ID] = category

	res := env.do(t, fiber.MethodGet, "/api/categories/"+category.ID.Hex(), nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var got Category
	require.NoError(t, json.Unmarshal(readEnvelope(t, res).Data, &got))
	assert.Equal(t, "Games", got.Name)

	res = env.do(t, fiber.MethodGet, "/api/categories/not-an-id", nil)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	res = env.do(t, fiber.MethodGet, "/api/categories/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestListCategories(t *testing.T) {
	env := newTestEnv(t, testConfig, staticReadiness(DatabaseReady))
	for _, name := range []string{"Toys", "Books"} {
		id := primitive.NewObjectID()
		env.categories.categories[id] = Category{ID: id, Name: name}
	}

	res := env.do(t, fiber.MethodGet, "/api/categories", nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var got []Category
	require.NoError(t, json.Unmarshal(readEnvelope(t, res).Data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Books", got[0].Name)
	assert.Equal(t, "Toys", got[1].Name)
}

func TestUpdateCategory(t *testing.T) {
	category := Category{ID: primitive.NewObjectID(), Name: "Games"}
	env := newTestEnv(t, testConfig, staticReadiness(DatabaseReady))
	env.categories.categories[category.ID] = category

	res := env.do(t, fiber.MethodPut, "/api/categories/"+category.ID.Hex(), CategoryRequest{Name: "Video Games"})
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "Video Games", env.categories.categories[category.ID].Name)

	res = env.do(t, fiber.MethodPut, "/api/categories/"+primitive.NewObjectID().Hex(), CategoryRequest{Name: "Other"})
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestDeleteCategory(t *testing.T) {
	empty := Category{ID: primitive.NewObjectID(), Name: "Empty"}
	used := Category{ID: primitive.NewObjectID(), Name: "Used"}

	env := newTestEnv(t, testConfig, staticReadiness(DatabaseReady))
	env.categories.categories[empty.ID] = empty
	env.categories.categories[used.ID] = used
	env.products.products = []Product{{ID: primitive.NewObjectID(), Name: "Dice", CategoryID: used.ID}}

	res := env.do(t, fiber.MethodDelete, "/api/categories/"+used.ID.Hex(), nil)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)
	assert.Contains(t, env.categories.categories, used.ID)

	res = env.do(t, fiber.MethodDelete, "/api/categories/"+empty.ID.Hex(), nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.NotContains(t, env.categories.categories, empty.ID)

	res = env.do(t, fiber.MethodDelete, "/api/categories/"+empty.ID.Hex(), nil)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestGetProductsByCategory(t *testing.T) {
	books := Category{ID: primitive.NewObjectID(), Name: "Books"}
	toys := Category{ID: primitive.NewObjectID(), Name: "Toys"}

	env := newTestEnv(t, testConfig, staticReadiness(DatabaseReady))
	env.categories.categories[books.ID] = books
	env.categories.categories[toys.ID] = toys
	env.products.products = []Product{
		{ID: primitive.NewObjectID(), Name: "Novel", CategoryID: books.ID},
		{ID: primitive.NewObjectID(), Name: "Kite", CategoryID: toys.ID},
		{ID: primitive.NewObjectID(), Name: "Atlas", CategoryID: books.ID},
	}

	res := env.do(t, fiber.MethodGet, "/api/categories/"+books.ID.Hex()+"/products?limit=1", nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var page ProductPage
	require.NoError(t, json.Unmarshal(readEnvelope(t, res).Data, &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(1), page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Novel", page.Items[0].Name)

	res = env.do(t, fiber.MethodGet, "/api/categories/"+primitive.NewObjectID().Hex()+"/products", nil)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

// racingProductRepository reports no products on the first count and a
// product on every later one, as if a create landed during the delete.
type racingProductRepository struct {
	*memoryProductRepository
	counts int
}

func (r *racingProductRepository) CountByCategory(context.Context, primitive.ObjectID) (int64, error) {
	r.counts++
	if r.counts == 1 {
		return 0, nil
	}
	return 1, nil
}

func TestDeleteCategoryReportsOrphanedProducts(t *testing.T) {
	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	category := Category{ID: primitive.NewObjectID(), Name: "Games"}
	categories := newMemoryCategoryRepository(category)
	products := &racingProductRepository{memoryProductRepository: newMemoryProductRepository()}

	app := NewAppServer(testConfig, AppDependencies{
		Products:   products,
		Categories: categories,
		Readiness:  staticReadiness(DatabaseReady),
	})
	env := &testEnv{app: app, categories: categories}

	res := env.do(t, fiber.MethodDelete, "/api/categories/"+category.ID.Hex(), nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, 2, products.counts)
	assert.Contains(t, logs.String(), "Category deleted while products still reference it")
	assert.Contains(t, logs.String(), "category-id="+category.ID.Hex())
}
