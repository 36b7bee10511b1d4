package di

import (
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-sitekit/internal/logging/gologger"
	"github.com/goliatone/go-sitekit/internal/runtimeconfig"
)

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg, WithSources(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}
	if logger := provider.GetLogger("sitekit.test"); logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestLoggerFeatureOffLeavesProviderUnset(t *testing.T) {
	container, err := NewContainer(runtimeconfig.DefaultConfig(), WithSources(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.loggerProvider != nil {
		t.Fatalf("expected nil provider, got %T", container.loggerProvider)
	}
	if container.Logger("sitekit.test") == nil {
		t.Fatal("expected no-op logger")
	}
}
