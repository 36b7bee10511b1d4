package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, ResolverModule)
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Warn("noop")
}

func TestModuleLoggerAnnotatesModuleField(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	ModuleLogger(provider, ComposeModule)

	if len(provider.requested) != 1 || provider.requested[0] != ComposeModule {
		t.Fatalf("expected module %s, got %v", ComposeModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != ComposeModule {
		t.Fatalf("expected module field %s, got %v", ComposeModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	ModuleLogger(provider, "")

	if provider.requested[0] != RootModule {
		t.Fatalf("expected default module %s, got %v", RootModule, provider.requested)
	}
}

func TestWithFieldsCopiesInput(t *testing.T) {
	rec := &recordingLogger{}
	fields := map[string]any{"kind": "preset"}

	WithFields(rec, fields)
	fields["kind"] = "theme"

	if rec.fields[0]["kind"] != "preset" {
		t.Fatalf("expected fields to be copied, got %v", rec.fields[0])
	}
}

func TestContextWithFieldsMerges(t *testing.T) {
	ctx := WithRequest(context.Background(), "studio", "")
	ctx = ContextWithFields(ctx, map[string]any{"page_id": "home"})

	fields := ContextFields(ctx)
	if fields["preset_id"] != "studio" || fields["page_id"] != "home" {
		t.Fatalf("unexpected context fields %v", fields)
	}

	fields["preset_id"] = "mutated"
	if ContextFields(ctx)["preset_id"] != "studio" {
		t.Fatal("expected ContextFields to return a copy")
	}
}
