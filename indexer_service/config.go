package main

import (
	"fmt"
	"strings"

	"github.com/akmmp241/product-catalog/shared"
)

type Config struct {
	KafkaAddr         string
	ElasticsearchAddr string
	LogLevel          string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		KafkaAddr:         shared.HostPort("KAFKA_HOST", "KAFKA_PORT"),
		ElasticsearchAddr: shared.HostPort("ES_HOST", "ES_PORT"),
		LogLevel:          shared.EnvOrDefault("LOG_LEVEL", "info"),
	}

	var missing []string
	if cfg.KafkaAddr == "" {
		missing = append(missing, "KAFKA_HOST", "KAFKA_PORT")
	}
	if cfg.ElasticsearchAddr == "" {
		missing = append(missing, "ES_HOST", "ES_PORT")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
