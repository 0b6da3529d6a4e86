package database

import (
	"context"
	"fmt"
	"net/http"

	"matching-workers/internal/common/config"
	"matching-workers/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch builds a client from Addresses, falling back to URL for
// single-node setups.
func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewElasticsearchConnectionFailedError(fmt.Errorf("ping: %s", res.Status()))
	}
	return nil
}

// CheckIndex fails with INDEX_NOT_FOUND when the candidate index is missing,
// so a misconfigured deployment is caught at startup rather than on the
// first search.
func (c *ElasticsearchClient) CheckIndex(ctx context.Context, index string) error {
	res, err := c.Client.Indices.Exists([]string{index}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return errors.NewIndexNotFoundError(index)
	case res.IsError():
		return errors.NewSearchQueryFailedError("index_exists", fmt.Errorf("%s", res.Status()))
	}
	return nil
}
