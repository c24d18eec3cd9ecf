package server

import (
	"bytes"
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/satglobe/assets"
	"github.com/woozymasta/satglobe/internal/cache"
	"github.com/woozymasta/satglobe/internal/catalog"
	"github.com/woozymasta/satglobe/internal/config"
	"github.com/woozymasta/satglobe/internal/metrics"
	"github.com/woozymasta/satglobe/internal/tracker"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config     *config.Config
	Cache      *cache.Store
	Client     *http.Client
	N2YO       *tracker.Client
	Tracker    *tracker.Tracker
	Metrics    *metrics.Collector
	Categories []catalog.Category
	Countries  []catalog.Country
	IndexHTML  []byte
	Favicon    []byte

	mu      sync.RWMutex
	records []catalog.Record
	active  catalog.Index
}

// NewServerContext wires the upstream clients, the response cache and the
// tracker. Search categories and observer presets are optional; a missing
// file is logged and skipped.
func NewServerContext(cfg *config.Config, client *http.Client, m *metrics.Collector) *ServerContext {
	log.Info().
		Str("cache_dir", cfg.CacheDir).
		Dur("cache_ttl", cfg.CacheTTL).
		Str("fallback", cfg.FallbackCatalog).
		Msg("Initializing server context")

	n2yo := &tracker.Client{
		HTTP:    client,
		Metrics: m,
		BaseURL: cfg.N2YOURL,
		APIKey:  cfg.N2YOAPIKey,
	}

	if cfg.N2YOAPIKey == "" {
		log.Warn().Msg("N2YO API key not set, positions will fall back to mock data unless clients send one")
	}

	var categories []catalog.Category
	if cfg.CategoriesFile != "" {
		var err error
		categories, err = catalog.LoadCategories(cfg.CategoriesFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.CategoriesFile).Msg("Search categories skipped")
		} else {
			log.Debug().Int("count", len(categories)).Msg("Search categories loaded")
		}
	}

	var countries []catalog.Country
	if cfg.CountriesFile != "" {
		var err error
		countries, err = catalog.LoadCountries(cfg.CountriesFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.CountriesFile).Msg("Observer presets skipped")
		} else {
			log.Debug().Int("count", len(countries)).Msg("Observer presets loaded")
		}
	}

	return &ServerContext{
		Config:     cfg,
		Cache:      cache.New(cfg.CacheDir, cfg.CacheTTL),
		Client:     client,
		N2YO:       n2yo,
		Tracker:    tracker.New(n2yo, cfg.PositionSeconds, m),
		Metrics:    m,
		Categories: categories,
		Countries:  countries,
		IndexHTML:  assets.Index,
		Favicon:    assets.Favicon,
		active:     catalog.Index{},
	}
}

// RefreshCatalog loads the active satellite catalog through the same
// cache/API/fallback chain used by the CelesTrak proxy.
func (s *ServerContext) RefreshCatalog(ctx context.Context) error {
	data, source, err := s.fetchCelestrak(ctx, catalog.GroupQuery(catalog.GroupActive))
	if err != nil {
		return err
	}

	records, err := catalog.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	s.SetCatalog(records)

	log.Info().
		Int("satellites", len(records)).
		Str("source", source).
		Msg("Active catalog loaded")

	return nil
}

// SetCatalog replaces the in-memory active catalog.
func (s *ServerContext) SetCatalog(records []catalog.Record) {
	idx := catalog.NewIndex(records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.active = idx
}

// Catalog returns the active catalog and its index.
func (s *ServerContext) Catalog() ([]catalog.Record, catalog.Index) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.active
}
