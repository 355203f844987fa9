package elasticsearch

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
)

type ClientConfig struct {
	URIs     string // comma separated
	Username string
	Password string
	Timeout  time.Duration
}

// NewClient builds the low-level Elasticsearch client with basic auth.
func NewClient(cfg ClientConfig) (*es.Client, error) {
	var addresses []string
	for _, uri := range strings.Split(cfg.URIs, ",") {
		if uri = strings.TrimSpace(uri); uri != "" {
			addresses = append(addresses, uri)
		}
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("no elasticsearch address configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := es.NewClient(es.Config{
		Addresses: addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			ResponseHeaderTimeout: timeout,
			MaxIdleConnsPerHost:   10,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return client, nil
}
