package shared

const (
	ProductIndexerTopic = "product-indexer"
	ProductIndex        = "products"
)

const (
	ProductCreated = "product-created"
	ProductUpdated = "product-updated"
	ProductDeleted = "product-deleted"
)

type BaseEvent[T any] struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Data      T      `json:"data"`
}

type CategoryDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductDocument is the denormalized product shape shared by the event
// stream and the search index.
type ProductDocument struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	ImageUrl    string           `json:"image_url"`
	Stock       int              `json:"stock"`
	Category    CategoryDocument `json:"category"`
}

type ProductEvent = BaseEvent[ProductDocument]
