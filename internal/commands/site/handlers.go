package sitecmd

import (
	"context"

	"github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/site"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// ResolveSiteHandler resolves site documents through site.Service.
type ResolveSiteHandler struct {
	inner *commands.Handler[ResolveSiteCommand]
}

// NewResolveSiteHandler panics when service is nil.
func NewResolveSiteHandler(service site.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ResolveSiteCommand]) *ResolveSiteHandler {
	if service == nil {
		panic("sitecmd: site service required")
	}
	logger = logging.Or(logger)

	exec := func(ctx context.Context, msg ResolveSiteCommand) error {
		result, err := service.ResolveSite(ctx, site.SiteRequest{
			PresetID:          msg.PresetID,
			Content:           msg.Content,
			IncludeTransition: msg.IncludeTransition,
			ExcludeIntro:      msg.ExcludeIntro,
		})
		if err != nil {
			return err
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ResolveSiteCommand]{
		commands.WithLogger[ResolveSiteCommand](logger),
		commands.WithOperation[ResolveSiteCommand]("site.resolve"),
		commands.WithMessageFields(func(msg ResolveSiteCommand) map[string]any {
			return map[string]any{"preset_id": msg.PresetID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ResolveSiteCommand](logger)),
	}
	return &ResolveSiteHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[ResolveSiteCommand].
func (h *ResolveSiteHandler) Execute(ctx context.Context, msg ResolveSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ResolvePageHandler resolves single pages.
type ResolvePageHandler struct {
	inner *commands.Handler[ResolvePageCommand]
}

func NewResolvePageHandler(service site.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ResolvePageCommand]) *ResolvePageHandler {
	if service == nil {
		panic("sitecmd: site service required")
	}
	logger = logging.Or(logger)

	exec := func(ctx context.Context, msg ResolvePageCommand) error {
		result, err := service.ResolvePage(ctx, site.PageRequest{
			PresetID: msg.PresetID,
			PageID:   msg.PageID,
			Content:  msg.Content,
		})
		if err != nil {
			return err
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ResolvePageCommand]{
		commands.WithLogger[ResolvePageCommand](logger),
		commands.WithOperation[ResolvePageCommand]("site.page"),
		commands.WithMessageFields(func(msg ResolvePageCommand) map[string]any {
			return map[string]any{"preset_id": msg.PresetID, "page_id": msg.PageID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ResolvePageCommand](logger)),
	}
	return &ResolvePageHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[ResolvePageCommand].
func (h *ResolvePageHandler) Execute(ctx context.Context, msg ResolvePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExpandDeferredHandler runs the deferred pass.
type ExpandDeferredHandler struct {
	inner *commands.Handler[ExpandDeferredCommand]
}

func NewExpandDeferredHandler(service site.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ExpandDeferredCommand]) *ExpandDeferredHandler {
	if service == nil {
		panic("sitecmd: site service required")
	}
	logger = logging.Or(logger)

	exec := func(ctx context.Context, msg ExpandDeferredCommand) error {
		result, err := service.ExpandDeferred(ctx, msg.Request)
		if err != nil {
			return err
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ExpandDeferredCommand]{
		commands.WithLogger[ExpandDeferredCommand](logger),
		commands.WithOperation[ExpandDeferredCommand]("site.deferred"),
		commands.WithMessageFields(func(msg ExpandDeferredCommand) map[string]any {
			return map[string]any{"nodes": len(msg.Request.Nodes), "parent_id": msg.Request.ParentID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ExpandDeferredCommand](logger)),
	}
	return &ExpandDeferredHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[ExpandDeferredCommand].
func (h *ExpandDeferredHandler) Execute(ctx context.Context, msg ExpandDeferredCommand) error {
	return h.inner.Execute(ctx, msg)
}
