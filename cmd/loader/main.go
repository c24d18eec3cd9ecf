package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/woozymasta/satglobe/internal/cache"
	"github.com/woozymasta/satglobe/internal/config"
	"github.com/woozymasta/satglobe/internal/logger"
	"github.com/woozymasta/satglobe/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile   string   `short:"c" long:"config"        env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	Groups       []string `short:"g" long:"group"         env:"GROUPS"       description:"CelesTrak groups to fetch (overrides config)"`
	Concurrency  int      `short:"p" long:"concurrency"   env:"CONCURRENCY"  description:"Concurrency" default:"4"`
	TextureDir   string   `short:"o" long:"texture-dir"   env:"TEXTURE_DIR"  description:"Output directory for globe textures (overrides config)"`
	GroupsOnly   bool     `short:"G" long:"groups-only"   description:"Fetch catalog groups only"`
	TexturesOnly bool     `short:"t" long:"textures-only" description:"Convert textures only"`
	Force        bool     `short:"f" long:"force"         description:"Refetch fresh cache entries and overwrite textures"`
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

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	processGroups := true
	processTextures := true
	if opts.GroupsOnly && !opts.TexturesOnly {
		processTextures = false
	} else if opts.TexturesOnly && !opts.GroupsOnly {
		processGroups = false
	}

	if opts.TextureDir != "" {
		cfg.TextureDir = opts.TextureDir
	}

	groups := cfg.Groups
	if len(opts.Groups) > 0 {
		groups = opts.Groups
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: cfg.UpstreamTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Strs("groups", groups).
		Int("textures", len(cfg.Textures)).
		Int("concurrency", opts.Concurrency).
		Msg("Starting loader")

	failed := 0

	if processGroups {
		p := &processor.Prefetcher{
			Client:          client,
			Cache:           cache.New(cfg.CacheDir, cfg.CacheTTL),
			BaseURL:         cfg.CelestrakURL,
			FallbackCatalog: cfg.FallbackCatalog,
			Concurrency:     opts.Concurrency,
			Force:           opts.Force,
		}

		for _, res := range p.Prefetch(ctx, groups) {
			if res.Err != nil {
				failed++
				continue
			}
			log.Info().
				Str("group", res.Group).
				Int("satellites", res.Satellites).
				Bool("skipped", res.Skipped).
				Msg("Group ready")
		}
	}

	if processTextures {
		for _, tex := range cfg.Textures {
			if err := processor.ProcessTexture(ctx, client, tex, cfg.TextureDir, opts.Force); err != nil {
				log.Error().Err(err).Str("texture", tex.Name).Msg("Failed to process texture")
				failed++
			}
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}

	log.Info().Msg("Loader finished successfully")
}
