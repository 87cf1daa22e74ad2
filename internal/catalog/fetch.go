package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultYCEndpoints are the public YC company dataset endpoints fetched
// by default: the curated top-company lists keep the catalog small enough
// for interactive use.
var DefaultYCEndpoints = []string{
	"https://yc-oss.github.io/api/companies/top.json",
	"https://yc-oss.github.io/api/companies/hiring.json",
}

// ycCompany is the record shape of the YC public dataset.
type ycCompany struct {
	Name            string `json:"name"`
	OneLiner        string `json:"one_liner"`
	LongDescription string `json:"long_description"`
	Website         string `json:"website"`
}

// Fetcher pulls company records from the YC public dataset over HTTP.
type Fetcher struct {
	client    *http.Client
	endpoints []string
}

// NewFetcher creates a fetcher for the given endpoints, defaulting to
// DefaultYCEndpoints.
func NewFetcher(endpoints []string) *Fetcher {
	if len(endpoints) == 0 {
		endpoints = DefaultYCEndpoints
	}
	return &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		endpoints: endpoints,
	}
}

// Fetch downloads all endpoints concurrently and returns the combined
// records, deduplicated by company name.
func (f *Fetcher) Fetch(ctx context.Context) ([]Product, error) {
	var (
		mu  sync.Mutex
		all []Product
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, endpoint := range f.endpoints {
		g.Go(func() error {
			companies, err := f.fetchOne(ctx, endpoint)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", endpoint, err)
			}
			mu.Lock()
			all = append(all, companies...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(all))
	deduped := all[:0]
	for _, p := range all {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		deduped = append(deduped, p)
	}
	return deduped, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, endpoint string) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var companies []ycCompany
	if err := json.Unmarshal(body, &companies); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	products := make([]Product, 0, len(companies))
	for _, c := range companies {
		if c.Name == "" {
			continue
		}
		products = append(products, Product{
			Source:      "yc",
			Name:        c.Name,
			Blurb:       c.OneLiner,
			Description: c.LongDescription,
			URL:         c.Website,
		})
	}
	return products, nil
}
