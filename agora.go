// Package agora provides a high-level façade over the simulation registry and
// HTTP surface, enabling construction of a complete multi-agent conversation
// server from a single settings struct. Most applications interact with this
// package by:
//  1. Creating an Agora via New() (optionally overriding the sink, factory or logger)
//  2. Serving the HTTP API via Serve(), or embedding Router() in an existing server
//  3. Driving runs directly through Registry() for programmatic use
//
// The façade delegates orchestration to sim.Registry while keeping setup
// ergonomics concise. All defaults are safe for local development; production
// deployments typically supply a database DSN and provider credentials via
// configuration.
package agora

import (
	"github.com/gin-gonic/gin"
	"github.com/hupe1980/agora/config"
	"github.com/hupe1980/agora/export"
	"github.com/hupe1980/agora/logging"
	"github.com/hupe1980/agora/model"
	"github.com/hupe1980/agora/model/provider"
	"github.com/hupe1980/agora/server"
	"github.com/hupe1980/agora/sim"
)

// Options configures the Agora instance.
type Options struct {
	// Settings drive every default below. Use config.Load() to populate them
	// from file and environment, or config.Default() for the compiled-in
	// baseline.
	Settings config.Settings

	// Sink persists finished transcripts. Defaults to SQLite when
	// Settings.Database.DSN is set, in-memory otherwise.
	Sink export.Sink

	// Factory builds provider-backed models for runs. Defaults to the
	// standard provider factory fed by Settings.Providers.
	Factory model.Factory

	// Logger (defaults to a structured logger built from Settings.Logging)
	Logger logging.Logger
}

// Agora is the high-level façade aggregating the registry and HTTP surface.
type Agora struct {
	opts     Options
	registry *sim.Registry
	server   *server.Server
}

// New creates a new Agora instance with optional overrides. Any unset
// collaborator is initialized from the settings.
func New(optFns ...func(o *Options)) (*Agora, error) {
	opts := Options{
		Settings: config.Default(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewSlogLogger(
			logging.ParseLogLevel(opts.Settings.Logging.Level),
			opts.Settings.Logging.Format,
			false,
		)
	}

	if opts.Sink == nil {
		if dsn := opts.Settings.Database.DSN; dsn != "" {
			sink, err := export.NewSQLiteSink(dsn)
			if err != nil {
				return nil, err
			}
			opts.Sink = sink
		} else {
			opts.Sink = export.NewMemorySink()
		}
	}

	if opts.Factory == nil {
		opts.Factory = provider.NewFactory(provider.Credentials{
			OpenAIAPIKey:    opts.Settings.Providers.OpenAIAPIKey,
			AnthropicAPIKey: opts.Settings.Providers.AnthropicAPIKey,
			OllamaBaseURL:   opts.Settings.Providers.OllamaBaseURL,
		})
	}

	registry := sim.NewRegistry(opts.Factory, opts.Sink, func(o *sim.Options) {
		o.Logger = opts.Logger
		o.Limits = opts.Settings.Limits()
		if opts.Settings.Runs.Capacity > 0 {
			o.Capacity = opts.Settings.Runs.Capacity
		}
		o.IdleGrace = opts.Settings.Runs.IdleGrace
	})

	srv := server.New(registry, func(o *server.Options) {
		o.Logger = opts.Logger
		o.Mode = opts.Settings.Server.Mode
		o.AllowedOrigins = opts.Settings.Server.AllowedOrigins
		o.KeepaliveInterval = opts.Settings.Server.KeepaliveInterval
		o.CatalogPath = opts.Settings.Providers.CatalogPath
		o.RequestsPerMinute = opts.Settings.RateLimit.RequestsPerMinute
	})

	return &Agora{opts: opts, registry: registry, server: srv}, nil
}

// Registry exposes the run registry for programmatic use.
func (a *Agora) Registry() *sim.Registry { return a.registry }

// Router builds the HTTP handler, ready to mount or serve.
func (a *Agora) Router() *gin.Engine { return a.server.Router() }

// Serve runs the HTTP API on the configured address, blocking until the
// listener fails.
func (a *Agora) Serve() error {
	a.opts.Logger.Info("Starting server", "addr", a.opts.Settings.Server.Addr)
	return a.Router().Run(a.opts.Settings.Server.Addr)
}
