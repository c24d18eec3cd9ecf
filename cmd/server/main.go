package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/satglobe/internal/config"
	"github.com/woozymasta/satglobe/internal/logger"
	"github.com/woozymasta/satglobe/internal/metrics"
	"github.com/woozymasta/satglobe/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"  env:"CONFIG_FILE"    description:"Path to configuration file"        default:"config.yaml"`
	Addr       string        `short:"a" long:"addr"    env:"LISTEN_ADDRESS" description:"Address to listen on"              default:"0.0.0.0"`
	APIKey     string        `short:"k" long:"api-key" env:"N2YO_API_KEY"   description:"N2YO API key (overrides config)"`
	Port       int           `short:"p" long:"port"    env:"LISTEN_PORT"    description:"Port to listen on"                 default:"8000"`
	Refresh    time.Duration `short:"r" long:"refresh" env:"REFRESH"        description:"Active catalog refresh interval"   default:"2h"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.APIKey != "" {
		cfg.N2YOAPIKey = opts.APIKey
	}

	collector, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	client := &http.Client{Timeout: cfg.UpstreamTimeout}
	srvCtx := server.NewServerContext(cfg, client, collector)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srvCtx.RefreshCatalog(ctx); err != nil {
		log.Error().Err(err).Msg("Active catalog unavailable, search and presets will be empty")
	}
	go refreshLoop(ctx, srvCtx, opts.Refresh)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/celestrak/gp.php", srvCtx.HandleCelestrak)
	mux.HandleFunc("/api/n2yo/", srvCtx.HandleN2YO)
	mux.HandleFunc("/api/search", srvCtx.HandleSearch)
	mux.HandleFunc("/api/presets/", srvCtx.HandlePreset)
	mux.HandleFunc("/api/classify", srvCtx.HandleClassify)
	mux.HandleFunc("/api/project", srvCtx.HandleProject)
	mux.HandleFunc("/api/track/", srvCtx.HandleTrack)
	mux.HandleFunc("/api/follow/", srvCtx.HandleFollow)
	mux.HandleFunc("/api/above", srvCtx.HandleAbove)
	mux.HandleFunc("/api/categories", srvCtx.HandleCategories)
	mux.HandleFunc("/api/countries", srvCtx.HandleCountries)
	mux.HandleFunc("/api/textures", srvCtx.HandleTextureList)
	mux.HandleFunc("/textures/", srvCtx.HandleTexture)
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/favicon.svg", srvCtx.HandleFavicon)
	mux.HandleFunc("/", srvCtx.HandleIndex)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           server.RequestLogger(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	records, _ := srvCtx.Catalog()
	log.Info().
		Str("addr", listenAddr).
		Int("satellites", len(records)).
		Dur("refresh", opts.Refresh).
		Msg("Web server started")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Server stopped")
}

func refreshLoop(ctx context.Context, s *server.ServerContext, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshCatalog(ctx); err != nil {
				log.Warn().Err(err).Msg("Active catalog refresh failed")
			}
		}
	}
}
