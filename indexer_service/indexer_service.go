package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/akmmp241/product-catalog/shared"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/segmentio/kafka-go"
)

type IndexerService struct {
	ESClient *elasticsearch.Client
}

func NewIndexerService(esClient *elasticsearch.Client) *IndexerService {
	return &IndexerService{ESClient: esClient}
}

func (s *IndexerService) HandleProductIndexer(ctx context.Context, msg *kafka.Message) error {
	var base shared.ProductEvent

	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return fmt.Errorf("unmarshal product event: %w", err)
	}

	if base.Data.ID == "" {
		slog.Warn("Product event without product id", "event-id", base.EventID, "event-type", base.EventType)
		return nil
	}

	switch base.EventType {
	case shared.ProductCreated, shared.ProductUpdated:
		data, err := json.Marshal(base.Data)
		if err != nil {
			return fmt.Errorf("marshal product document: %w", err)
		}
		return s.indexProduct(ctx, base.Data, bytes.NewReader(data))
	case shared.ProductDeleted:
		return s.deleteProduct(ctx, base.Data)
	default:
		slog.Warn("Unknown event type", "event-type", base.EventType)
	}

	return nil
}

func (s *IndexerService) indexProduct(ctx context.Context, product shared.ProductDocument, body io.Reader) error {
	req := esapi.IndexRequest{
		Index:      shared.ProductIndex,
		DocumentID: product.ID,
		Body:       body,
		Refresh:    "true",
	}

	res, err := req.Do(ctx, s.ESClient)
	if err != nil {
		return fmt.Errorf("index product %s: %w", product.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index product %s: %s", product.ID, res.String())
	}

	slog.Info("Product indexed successfully", "product-id", product.ID)
	return nil
}

func (s *IndexerService) deleteProduct(ctx context.Context, product shared.ProductDocument) error {
	req := esapi.DeleteRequest{
		Index:      shared.ProductIndex,
		DocumentID: product.ID,
		Refresh:    "true",
	}

	res, err := req.Do(ctx, s.ESClient)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", product.ID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		slog.Warn("Product not found for deletion", "product-id", product.ID)
		return nil
	}

	if res.IsError() {
		return fmt.Errorf("delete product %s: %s", product.ID, res.String())
	}

	slog.Info("Product deleted successfully", "product-id", product.ID)
	return nil
}
