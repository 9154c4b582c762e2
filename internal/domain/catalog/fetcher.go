package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Fetcher retrieves the catalog from the catalog service
type Fetcher struct {
	url     string
	client  *resty.Client
	breaker *resilience.Breaker
}

// NewFetcher creates a fetcher for the catalog endpoint at url
func NewFetcher(url string) *Fetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "AgentOS-Shell/1.0")
	client.SetTransport(&retryablehttp.RoundTripper{Client: retryClient})

	return &Fetcher{
		url:     url,
		client:  client,
		breaker: resilience.New("catalog", resilience.Settings{Failures: 3, Cooldown: 15 * time.Second}),
	}
}

// Fetch performs GET on the catalog endpoint and decodes the JSON array
func (f *Fetcher) Fetch(ctx context.Context) ([]types.SubApplication, error) {
	var apps []types.SubApplication

	err := f.breaker.Do(func() error {
		resp, err := f.client.R().
			SetContext(ctx).
			SetResult(&apps).
			Get(f.url)
		if err != nil {
			return fmt.Errorf("catalog request failed: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("catalog request failed: status %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []types.SubApplication{}
	}
	return apps, nil
}

// Refresh fetches and replaces the store contents
func (f *Fetcher) Refresh(ctx context.Context, store *Store) error {
	apps, err := f.Fetch(ctx)
	if err != nil {
		return err
	}
	store.Replace(apps, SourceFetch)
	return nil
}
