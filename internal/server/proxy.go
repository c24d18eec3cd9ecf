package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/satglobe/internal/cache"
	"github.com/woozymasta/satglobe/internal/catalog"
	"github.com/woozymasta/satglobe/internal/tracker"
)

// Data sources reported in the X-Data-Source header.
const (
	SourceAPI      = "api"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

const (
	upstreamCelestrak = "celestrak"
	userAgent         = "Mozilla/5.0"
)

// HandleCelestrak proxies /api/celestrak/gp.php?<query> to CelesTrak.
// Fresh cache wins; otherwise the API is queried and cached. When the API
// fails, an expired cache entry or the static fallback catalog is served.
func (s *ServerContext) HandleCelestrak(w http.ResponseWriter, r *http.Request) {
	data, source, err := s.fetchCelestrak(r.Context(), r.URL.RawQuery)
	if err != nil {
		log.Error().Err(err).Str("query", r.URL.RawQuery).Msg("CelesTrak request failed without fallback")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Data-Source", source)
	_, _ = w.Write(data)
}

// fetchCelestrak resolves a GP query through cache, API and fallbacks.
func (s *ServerContext) fetchCelestrak(ctx context.Context, query string) ([]byte, string, error) {
	upstream := catalog.GPURL(s.Config.CelestrakURL, query)

	cached, state, err := s.Cache.Get(upstream)
	if err != nil {
		log.Warn().Err(err).Str("url", upstream).Msg("Cache read failed")
	}
	log.Debug().Str("url", upstream).Str("cache", state.String()).Msg("Checked cache")

	if state == cache.Fresh {
		s.Metrics.ObserveDataSource(SourceCache)
		return cached, SourceCache, nil
	}

	data, err := s.getUpstream(ctx, upstreamCelestrak, upstream)
	if err == nil {
		if err := s.Cache.Put(upstream, data); err != nil {
			log.Error().Err(err).Str("url", upstream).Msg("Failed to save to cache")
		}
		s.Metrics.ObserveDataSource(SourceAPI)
		return data, SourceAPI, nil
	}

	log.Warn().Err(err).Str("url", upstream).Msg("CelesTrak API error")

	if state == cache.Expired {
		log.Info().Str("url", upstream).Msg("Using expired cache as fallback")
		s.Metrics.ObserveDataSource(SourceFallback)
		return cached, SourceFallback, nil
	}

	fallback, ferr := os.ReadFile(s.Config.FallbackCatalog)
	if ferr != nil {
		return nil, "", fmt.Errorf("celestrak unavailable (%v) and fallback unreadable: %w", err, ferr)
	}

	log.Info().Str("path", s.Config.FallbackCatalog).Msg("Using fallback data")
	s.Metrics.ObserveDataSource(SourceFallback)
	return fallback, SourceFallback, nil
}

// upstreamError carries the status of a non-200 upstream response.
type upstreamError struct {
	Status int
	Body   string
}

func (e *upstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

func (s *ServerContext) getUpstream(ctx context.Context, name, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		s.Metrics.ObserveUpstream(name, 0)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	s.Metrics.ObserveUpstream(name, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &upstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return io.ReadAll(resp.Body)
}

// HandleN2YO proxies /api/n2yo/<endpoint>/... to the N2YO REST API.
// The configured API key is added when the request does not carry one.
// Upstream HTTP errors are forwarded with their status code.
func (s *ServerContext) HandleN2YO(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/n2yo/")
	if rest == "" || rest == r.URL.Path {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	if query.Get("apiKey") == "" && s.Config.N2YOAPIKey != "" {
		query.Set("apiKey", s.Config.N2YOAPIKey)
	}

	target := strings.TrimRight(s.Config.N2YOURL, "/") + "/" + rest
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	log.Debug().Str("endpoint", rest).Msg("Requesting N2YO API")

	data, err := s.getUpstream(r.Context(), tracker.UpstreamN2YO, target)
	if err != nil {
		var ue *upstreamError
		if errors.As(err, &ue) {
			log.Warn().Int("status", ue.Status).Str("details", ue.Body).Msg("N2YO API error")
			http.Error(w, "N2YO API error: "+http.StatusText(ue.Status), ue.Status)
			return
		}
		log.Error().Err(redactKey(err)).Msg("Unexpected N2YO API error")
		http.Error(w, "N2YO API unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(data)
}

// redactKey strips query strings from url errors so API keys are not logged.
func redactKey(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		u := uerr.URL
		if i := strings.IndexByte(u, '?'); i >= 0 {
			u = u[:i]
		}
		return &url.Error{Op: uerr.Op, URL: u, Err: uerr.Err}
	}
	return err
}
