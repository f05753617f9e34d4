package main

import (
	"time"

	"github.com/akmmp241/product-catalog/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	CategoryID  primitive.ObjectID `bson:"category_id" json:"category_id"`
	ImageUrl    string             `bson:"image_url" json:"image_url"`
	Stock       int                `bson:"stock" json:"stock"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (p *Product) Document(category *Category) shared.ProductDocument {
	doc := shared.ProductDocument{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageUrl:    p.ImageUrl,
		Stock:       p.Stock,
		Category:    shared.CategoryDocument{ID: p.CategoryID.Hex()},
	}
	if category != nil {
		doc.Category.Name = category.Name
	}
	return doc
}
