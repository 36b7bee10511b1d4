package diagnostics

import (
	"context"
	"testing"

	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

type warnRecorder struct {
	messages []string
	args     [][]any
}

func (w *warnRecorder) Trace(string, ...any) {}
func (w *warnRecorder) Debug(string, ...any) {}
func (w *warnRecorder) Info(string, ...any)  {}
func (w *warnRecorder) Warn(msg string, args ...any) {
	w.messages = append(w.messages, msg)
	w.args = append(w.args, args)
}
func (w *warnRecorder) Error(string, ...any)                          {}
func (w *warnRecorder) Fatal(string, ...any)                          {}
func (w *warnRecorder) WithContext(context.Context) interfaces.Logger { return w }

func TestListRecordsAndLogs(t *testing.T) {
	rec := &warnRecorder{}
	list := NewList(rec)

	list.Addf(KindUnresolvedBinding, "sections[0].props.title", "content.hero.title", "path did not resolve")
	list.Add(Diagnostic{Kind: KindNonSequenceRepeat, Path: "sections[1]", Message: "not a sequence"})

	if list.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", list.Len())
	}
	if list.Count(KindUnresolvedBinding) != 1 {
		t.Fatalf("expected one unresolved binding, got %d", list.Count(KindUnresolvedBinding))
	}
	if len(rec.messages) != 2 || rec.messages[0] != "diagnostic.unresolved_binding" {
		t.Fatalf("unexpected log messages %v", rec.messages)
	}

	items := list.Items()
	items[0].Message = "mutated"
	if list.Items()[0].Message != "path did not resolve" {
		t.Fatal("expected Items to return a copy")
	}
}

func TestNilListIsSafe(t *testing.T) {
	var list *List
	list.Addf(KindParseAnomaly, "", "", "ignored")
	if list.Len() != 0 || list.Items() != nil {
		t.Fatal("expected nil list to discard diagnostics")
	}
}

func TestPathHelpers(t *testing.T) {
	if got := Index(Join(Join("", "pages"), "home"), 2); got != "pages.home[2]" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Kind: KindMissingBase, Path: "experience", Expression: "calm", Message: "base not registered"}
	if got := d.String(); got != "missing_base at experience (calm): base not registered" {
		t.Fatalf("unexpected string %q", got)
	}
}
