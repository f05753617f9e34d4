package main

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

func initElasticsearch(ctx context.Context, addr string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s", addr)},
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get elasticsearch info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("get elasticsearch info: %s", res.String())
	}

	return client, nil
}
