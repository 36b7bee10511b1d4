package sitekit

import "github.com/goliatone/go-sitekit/internal/runtimeconfig"

var (
	ErrThemesFeatureRequired    = runtimeconfig.ErrThemesFeatureRequired
	ErrMarkdownFeatureRequired  = runtimeconfig.ErrMarkdownFeatureRequired
	ErrPreviewAddrRequired      = runtimeconfig.ErrPreviewAddrRequired
	ErrResolutionLimitInvalid   = runtimeconfig.ErrResolutionLimitInvalid
	ErrKeyFieldInvalid          = runtimeconfig.ErrKeyFieldInvalid
	ErrDeferredNamespaceInvalid = runtimeconfig.ErrDeferredNamespaceInvalid
	ErrCommandTimeoutInvalid    = runtimeconfig.ErrCommandTimeoutInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	ResolutionConfig = runtimeconfig.ResolutionConfig
	SourcesConfig    = runtimeconfig.SourcesConfig
	PreviewConfig    = runtimeconfig.PreviewConfig
	CommandsConfig   = runtimeconfig.CommandsConfig
	Features         = runtimeconfig.Features
	LoggingConfig    = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the settings used when a host configures nothing.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
