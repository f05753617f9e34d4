package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CategoryCollection = "categories"
	ProductCollection  = "products"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

type ProductFilter struct {
	CategoryID *primitive.ObjectID
	Page       int64
	Limit      int64
}

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error)
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductRepository interface {
	Find(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	ForEach(ctx context.Context, fn func(Product) error) error
}

// EnsureIndexes creates the indexes both repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CategoryCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create category name index: %w", err)
	}

	_, err = db.Collection(ProductCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create product category index: %w", err)
	}

	return nil
}

type MongoCategoryRepository struct {
	db DatabaseProvider
}

func NewMongoCategoryRepository(db DatabaseProvider) *MongoCategoryRepository {
	return &MongoCategoryRepository{db: db}
}

func (r *MongoCategoryRepository) collection() (*mongo.Collection, error) {
	db, err := r.db.Database()
	if err != nil {
		return nil, err
	}
	return db.Collection(CategoryCollection), nil
}

func (r *MongoCategoryRepository) FindAll(ctx context.Context) ([]Category, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := make([]Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (r *MongoCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	var category Category
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (r *MongoCategoryRepository) Create(ctx context.Context, category *Category) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now

	if _, err := coll.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *MongoCategoryRepository) Update(ctx context.Context, category *Category) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	category.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":        category.Name,
		"description": category.Description,
		"updated_at":  category.UpdatedAt,
	}}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": category.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoProductRepository struct {
	db DatabaseProvider
}

func NewMongoProductRepository(db DatabaseProvider) *MongoProductRepository {
	return &MongoProductRepository{db: db}
}

func (r *MongoProductRepository) collection() (*mongo.Collection, error) {
	db, err := r.db.Database()
	if err != nil {
		return nil, err
	}
	return db.Collection(ProductCollection), nil
}

func (r *MongoProductRepository) Find(ctx context.Context, filter ProductFilter) ([]Product, int64, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, 0, err
	}

	query := bson.M{}
	if filter.CategoryID != nil {
		query["category_id"] = *filter.CategoryID
	}

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip((filter.Page - 1) * filter.Limit).
		SetLimit(filter.Limit)

	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	var product Product
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *Product) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) Update(ctx context.Context, product *Product) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	product.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"category_id": product.CategoryID,
		"image_url":   product.ImageUrl,
		"stock":       product.Stock,
		"updated_at":  product.UpdatedAt,
	}}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	coll, err := r.collection()
	if err != nil {
		return 0, err
	}

	count, err := coll.CountDocuments(ctx, bson.M{"category_id": categoryID})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *MongoProductRepository) ForEach(ctx context.Context, fn func(Product) error) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var product Product
		if err := cursor.Decode(&product); err != nil {
			return fmt.Errorf("decode product: %w", err)
		}
		if err := fn(product); err != nil {
			return err
		}
	}
	return cursor.Err()
}
