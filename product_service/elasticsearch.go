package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/akmmp241/product-catalog/shared"
	"github.com/elastic/go-elasticsearch/v8"
)

type ESClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(addr string) (*ESClient, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &ESClient{
		Client: client,
	}, nil
}

// SearchProducts runs a full text query over product names and descriptions.
func (e *ESClient) SearchProducts(ctx context.Context, query string, size int) (*ProductSearchResult, error) {
	body, err := json.Marshal(map[string]any{
		"size": size,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^3", "description", "category.name"},
				"fuzziness": "AUTO",
			},
		},
	})
	if err != nil {
		return nil, err
	}

	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(shared.ProductIndex),
		e.Client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search products: %s", res.String())
	}

	var esRes EsResponse
	if err := json.NewDecoder(res.Body).Decode(&esRes); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &ProductSearchResult{
		Items: make([]shared.ProductDocument, 0, len(esRes.Hits.Hits)),
		Total: esRes.Hits.Total.Value,
	}
	for _, hit := range esRes.Hits.Hits {
		result.Items = append(result.Items, hit.Source)
	}
	return result, nil
}
