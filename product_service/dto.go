package main

import "github.com/akmmp241/product-catalog/shared"

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type ProductRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	CategoryID  string  `json:"category_id" validate:"required,mongodb"`
	ImageUrl    string  `json:"image_url" validate:"omitempty,url"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

type ProductPage struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int64     `json:"page"`
	Limit int64     `json:"limit"`
}

type ProductSearchResult struct {
	Items []shared.ProductDocument `json:"items"`
	Total int                      `json:"total"`
}

type EsResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source shared.ProductDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type HealthResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Port    string `json:"port"`
}

type ReadinessResponse struct {
	Service  string `json:"service"`
	Status   string `json:"status"`
	State    string `json:"state"`
	Database string `json:"database"`
}
