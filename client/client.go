// Package client is the public facade over the extraction pipeline:
// manifest extraction, stream folding, metadata, and signature
// deciphering behind one configurable Client.
package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/famomatic/ytx/internal/cache"
	"github.com/famomatic/ytx/internal/challenge"
	"github.com/famomatic/ytx/internal/cookies"
	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/orchestrator"
	"github.com/famomatic/ytx/internal/playerjs"
	"github.com/famomatic/ytx/internal/policy"
	"github.com/famomatic/ytx/internal/types"
	"github.com/famomatic/ytx/internal/webpage"
)

// Re-exported result types, so callers never import internal packages.
type (
	StreamDescriptor = types.StreamDescriptor
	StreamSource     = types.StreamSource
	AudioTrack       = types.AudioTrack
	Ext              = types.Ext
	ExtractionEvent  = orchestrator.ExtractionEvent
	Stage            = orchestrator.Stage
	EventSink        = orchestrator.EventSink

	PoTokenProvider     = innertube.PoTokenProvider
	PoTokenProviderFunc = innertube.PoTokenProviderFunc
)

// Client extracts video manifests, streams and metadata. Extractions are
// serialized by an exclusive guard; the player and code caches are shared
// across them and have their own locks.
type Client struct {
	cfg    Config
	logger Logger
	origin string

	jar      *cookies.Jar
	http     *http.Client
	api      *innertube.Client
	pages    *webpage.Fetcher
	registry innertube.Registry

	codes    *cache.Store
	players  *cache.ScopedStore
	loader   *playerjs.Loader
	decipher *playerjs.Engine

	poTokens innertube.PoTokenProvider

	mu sync.Mutex
}

// New wires a Client from cfg. The zero Config is valid.
func New(cfg Config) (*Client, error) {
	httpClient := buildHTTPClient(cfg)
	jar := cookies.NewJarWithCookies(cfg.AuthCookies)

	origin := webpage.DefaultOrigin
	if cfg.PreferInsecure {
		origin = "http://www.youtube.com"
	}
	pages := &webpage.Fetcher{HTTP: httpClient, Jar: jar, Origin: origin}

	codes := cache.NewStore()
	players := cache.NewScopedStore()
	loader := playerjs.NewLoader(pages, codes, players)
	solver := playerjs.NewSolver(pages, codes)

	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	var poTokens innertube.PoTokenProvider
	if cfg.PoTokenProvider != nil {
		poTokens = challenge.NewCachedPoTokenProvider(cfg.PoTokenProvider)
	}

	return &Client{
		cfg:      cfg,
		logger:   logger,
		origin:   origin,
		jar:      jar,
		http:     httpClient,
		api:      &innertube.Client{HTTP: httpClient, Jar: jar, Timeout: cfg.RequestTimeout},
		pages:    pages,
		registry: innertube.DefaultRegistry(),
		codes:    codes,
		players:  players,
		loader:   loader,
		decipher: playerjs.NewEngine(loader, solver, players),
		poTokens: poTokens,
	}, nil
}

func (c *Client) engine(requestURL string) *orchestrator.Engine {
	return &orchestrator.Engine{
		Client:     c.api,
		Pages:      c.pages,
		Registry:   c.registry,
		Timestamps: c.loader,
		PoTokens:   c.poTokens,
		Logger:     c.logger,
		Events:     c.cfg.OnExtractionEvent,
		Origin:     c.origin,
		RequestURL: requestURL,
		IsMusic:    policy.IsMusicURL(requestURL),
		Overrides:  c.cfg.overrides(),
	}
}

func (c *Client) extract(ctx context.Context, input string) (*orchestrator.Result, error) {
	id, err := ExtractVideoID(input)
	if err != nil {
		return nil, err
	}
	videoID, err := types.NewVideoID(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine(input).Extract(ctx, videoID)
}
