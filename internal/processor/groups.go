// Package processor prepares data served by the viewer: CelesTrak groups
// prefetched into the response cache and globe textures converted to WebP.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/satglobe/internal/cache"
	"github.com/woozymasta/satglobe/internal/catalog"

	"github.com/rs/zerolog/log"
)

// GroupResult is the outcome of prefetching one CelesTrak group.
type GroupResult struct {
	Err        error
	Group      string
	Satellites int
	Skipped    bool // fresh cache entry already present
}

// Prefetcher downloads CelesTrak groups into the response cache.
type Prefetcher struct {
	Client          *http.Client
	Cache           *cache.Store
	BaseURL         string
	FallbackCatalog string // refreshed from the active group when set
	Concurrency     int
	Force           bool
}

// Prefetch fetches groups with a pool of workers and returns one result per
// group, in input order.
func (p *Prefetcher) Prefetch(ctx context.Context, groups []string) []GroupResult {
	type job struct {
		group string
		index int
	}

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	jobs := make(chan job, len(groups))
	results := make([]GroupResult, len(groups))

	for i, g := range groups {
		jobs <- job{group: g, index: i}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := p.fetchGroup(ctx, j.group)
				if res.Err != nil {
					log.Error().Err(res.Err).Str("group", j.group).Msg("Failed to prefetch group")
				}
				results[j.index] = res
			}
		}()
	}
	wg.Wait()

	return results
}

func (p *Prefetcher) fetchGroup(ctx context.Context, group string) GroupResult {
	res := GroupResult{Group: group}
	upstream := catalog.GPURL(p.BaseURL, catalog.GroupQuery(group))

	if !p.Force {
		if data, state, err := p.Cache.Get(upstream); err == nil && state == cache.Fresh {
			res.Skipped = true
			if records, err := catalog.Decode(bytes.NewReader(data)); err == nil {
				res.Satellites = len(records)
			}
			log.Debug().Str("group", group).Msg("Cache is fresh, skipping")
			return res
		}
	}

	log.Info().Str("group", group).Str("url", upstream).Msg("Fetching group")

	data, err := download(ctx, p.Client, upstream)
	if err != nil {
		res.Err = err
		return res
	}

	// CelesTrak answers unknown groups with a plain-text message.
	records, err := catalog.Decode(bytes.NewReader(data))
	if err != nil {
		res.Err = err
		return res
	}
	res.Satellites = len(records)

	if err := p.Cache.Put(upstream, data); err != nil {
		res.Err = err
		return res
	}

	if group == catalog.GroupActive && p.FallbackCatalog != "" {
		if err := saveFallback(p.FallbackCatalog, data); err != nil {
			res.Err = err
			return res
		}
		log.Info().Str("path", p.FallbackCatalog).Int("satellites", len(records)).Msg("Fallback catalog refreshed")
	}

	log.Info().Str("group", group).Int("satellites", len(records)).Msg("Group cached")
	return res
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// saveFallback writes the fallback catalog next to a temporary file first,
// so readers never see a partial file.
func saveFallback(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
