package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"masters-marketplace/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
)

// NewElasticsearchClient builds the client. An unreachable cluster is logged, not
// fatal: the relational store stays authoritative and the index is rebuilt later.
func NewElasticsearchClient(cfg config.SearchConfig) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: cfg.Timeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := es.Info(es.Info.WithContext(ctx))
	if err != nil {
		logrus.Warnf("Elasticsearch is not reachable at %s: %+v", cfg.URL, err)
		return es, nil
	}
	defer res.Body.Close()

	if res.IsError() {
		logrus.Warnf("Elasticsearch info returned %s", res.Status())
		return es, nil
	}

	logrus.Info("Successfully connected to Elasticsearch")
	return es, nil
}
