package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-sitekit/internal/commands"
	contractcmd "github.com/goliatone/go-sitekit/internal/commands/contract"
	sitecmd "github.com/goliatone/go-sitekit/internal/commands/site"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/site"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// ContentSource supplies the content used when a request carries none.
type ContentSource func(ctx context.Context, presetID string) (map[string]any, error)

// PresetLister lists registered preset ids.
type PresetLister interface {
	IDs() []string
}

// PreviewAPI exposes read-only resolution endpoints.
type PreviewAPI struct {
	basePath string
	service  site.Service
	presets  PresetLister
	content  ContentSource
	metrics  http.Handler
	logger   interfaces.Logger
	timeout  time.Duration

	resolveSite *sitecmd.ResolveSiteHandler
	resolvePage *sitecmd.ResolvePageHandler
	deferred    *sitecmd.ExpandDeferredHandler
	contract    *contractcmd.BuildContractHandler
	check       *contractcmd.CheckPresetHandler
}

// PreviewOption mutates the PreviewAPI configuration.
type PreviewOption func(*PreviewAPI)

// NewPreviewAPI panics when service is nil.
func NewPreviewAPI(service site.Service, opts ...PreviewOption) *PreviewAPI {
	if service == nil {
		panic("http: site service required")
	}
	api := &PreviewAPI{
		basePath: "/",
		service:  service,
		logger:   logging.NoOp(),
		timeout:  commands.DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}

	cmdLogger := logging.WithFields(api.logger, map[string]any{"component": "command"})
	api.resolveSite = sitecmd.NewResolveSiteHandler(service, cmdLogger, commands.WithTimeout[sitecmd.ResolveSiteCommand](api.timeout))
	api.resolvePage = sitecmd.NewResolvePageHandler(service, cmdLogger, commands.WithTimeout[sitecmd.ResolvePageCommand](api.timeout))
	api.deferred = sitecmd.NewExpandDeferredHandler(service, cmdLogger, commands.WithTimeout[sitecmd.ExpandDeferredCommand](api.timeout))
	api.contract = contractcmd.NewBuildContractHandler(service, cmdLogger, commands.WithTimeout[contractcmd.BuildContractCommand](api.timeout))
	api.check = contractcmd.NewCheckPresetHandler(service, cmdLogger, commands.WithTimeout[contractcmd.CheckPresetCommand](api.timeout))
	return api
}

// WithBasePath mounts every route under path.
func WithBasePath(path string) PreviewOption {
	return func(api *PreviewAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

func WithPresetLister(presets PresetLister) PreviewOption {
	return func(api *PreviewAPI) {
		api.presets = presets
	}
}

// WithContentSource sets the fallback content for requests without a body.
func WithContentSource(source ContentSource) PreviewOption {
	return func(api *PreviewAPI) {
		api.content = source
	}
}

// WithStaticContent serves the same content for every preset.
func WithStaticContent(content map[string]any) PreviewOption {
	return WithContentSource(func(context.Context, string) (map[string]any, error) {
		return content, nil
	})
}

// WithMetricsHandler exposes handler at /metrics.
func WithMetricsHandler(handler http.Handler) PreviewOption {
	return func(api *PreviewAPI) {
		api.metrics = handler
	}
}

func WithLogger(logger interfaces.Logger) PreviewOption {
	return func(api *PreviewAPI) {
		api.logger = logging.Or(logger)
	}
}

// WithTimeout bounds each resolution. Zero disables the bound.
func WithTimeout(timeout time.Duration) PreviewOption {
	return func(api *PreviewAPI) {
		api.timeout = timeout
	}
}

// Handler builds the chi router.
func (api *PreviewAPI) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(api.logRequests)

	routes := func(r chi.Router) {
		r.Get("/presets", api.handlePresetList)
		r.Route("/presets/{preset}", func(r chi.Router) {
			r.Get("/site", api.handleSite)
			r.Post("/site", api.handleSite)
			r.Get("/pages/{page}", api.handlePage)
			r.Post("/pages/{page}", api.handlePage)
			r.Post("/pages/{page}/deferred", api.handleDeferred)
			r.Get("/contract", api.handleContract)
			r.Get("/check", api.handleCheck)
			r.Post("/check", api.handleCheck)
		})
		if api.metrics != nil {
			r.Method(http.MethodGet, "/metrics", api.metrics)
		}
	}

	if base := joinPath(api.basePath, ""); base != "/" {
		r.Route(base, routes)
	} else {
		routes(r)
	}
	return r
}

func (api *PreviewAPI) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		api.logger.Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
