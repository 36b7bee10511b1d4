package contractcmd

import (
	"context"

	"github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/site"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// BuildContractHandler produces preset contracts.
type BuildContractHandler struct {
	inner *commands.Handler[BuildContractCommand]
}

// NewBuildContractHandler panics when service is nil.
func NewBuildContractHandler(service site.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildContractCommand]) *BuildContractHandler {
	if service == nil {
		panic("contractcmd: site service required")
	}
	logger = logging.Or(logger)

	exec := func(ctx context.Context, msg BuildContractCommand) error {
		result, err := service.Contract(ctx, msg.PresetID)
		if err != nil {
			return err
		}
		if len(result.Missing) > 0 {
			logger.Warn("contract.declarations.missing", "preset_id", msg.PresetID, "types", result.Missing)
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildContractCommand]{
		commands.WithLogger[BuildContractCommand](logger),
		commands.WithOperation[BuildContractCommand]("contract.build"),
		commands.WithMessageFields(func(msg BuildContractCommand) map[string]any {
			return map[string]any{"preset_id": msg.PresetID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildContractCommand](logger)),
	}
	return &BuildContractHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[BuildContractCommand].
func (h *BuildContractHandler) Execute(ctx context.Context, msg BuildContractCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckPresetHandler runs preset checks.
type CheckPresetHandler struct {
	inner *commands.Handler[CheckPresetCommand]
}

func NewCheckPresetHandler(service site.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CheckPresetCommand]) *CheckPresetHandler {
	if service == nil {
		panic("contractcmd: site service required")
	}
	logger = logging.Or(logger)

	exec := func(ctx context.Context, msg CheckPresetCommand) error {
		report, err := service.Check(ctx, site.CheckRequest{PresetID: msg.PresetID, Content: msg.Content})
		if err != nil {
			return err
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(report)
		}
		if msg.Strict && !report.Clean() {
			return ErrCheckFailed
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckPresetCommand]{
		commands.WithLogger[CheckPresetCommand](logger),
		commands.WithOperation[CheckPresetCommand]("contract.check"),
		commands.WithMessageFields(func(msg CheckPresetCommand) map[string]any {
			fields := map[string]any{"preset_id": msg.PresetID}
			if msg.Strict {
				fields["strict"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckPresetCommand](logger)),
	}
	return &CheckPresetHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[CheckPresetCommand].
func (h *CheckPresetHandler) Execute(ctx context.Context, msg CheckPresetCommand) error {
	return h.inner.Execute(ctx, msg)
}
