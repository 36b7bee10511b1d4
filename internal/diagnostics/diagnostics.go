package diagnostics

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// Kind names a class of non-fatal resolution problem.
type Kind string

const (
	KindParseAnomaly      Kind = "parse_anomaly"
	KindUnresolvedBinding Kind = "unresolved_binding"
	KindNonSequenceRepeat Kind = "non_sequence_repeat"
	KindMissingBase       Kind = "missing_base"
	KindLimitExceeded     Kind = "limit_exceeded"
	KindDuplicateKey      Kind = "duplicate_key"
	KindUnknownBehaviour  Kind = "unknown_behaviour"
	KindLeftoverBinding   Kind = "leftover_binding"
)

// Diagnostic is one recorded problem. Path locates the value inside the
// document being resolved.
type Diagnostic struct {
	Kind       Kind   `json:"kind"`
	Path       string `json:"path,omitempty"`
	Expression string `json:"expression,omitempty"`
	Message    string `json:"message"`
}

func (d Diagnostic) String() string {
	out := string(d.Kind)
	if d.Path != "" {
		out += " at " + d.Path
	}
	if d.Expression != "" {
		out += " (" + d.Expression + ")"
	}
	return out + ": " + d.Message
}

// List accumulates diagnostics for one resolution call and logs each entry
// at WARN. A nil *List discards everything.
type List struct {
	mu     sync.Mutex
	logger interfaces.Logger
	items  []Diagnostic
}

func NewList(logger interfaces.Logger) *List {
	return &List{logger: logging.Or(logger)}
}

func (l *List) Add(d Diagnostic) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.items = append(l.items, d)
	l.mu.Unlock()

	l.logger.Warn("diagnostic."+string(d.Kind),
		"path", d.Path,
		"expression", d.Expression,
		"message", d.Message,
	)
}

// Addf records a diagnostic with a formatted message.
func (l *List) Addf(kind Kind, path, expr, format string, args ...any) {
	l.Add(Diagnostic{Kind: kind, Path: path, Expression: expr, Message: fmt.Sprintf(format, args...)})
}

// Items returns a copy of the recorded diagnostics in insertion order.
func (l *List) Items() []Diagnostic {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return nil
	}
	return append([]Diagnostic(nil), l.items...)
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Count returns how many diagnostics of kind were recorded.
func (l *List) Count(kind Kind) int {
	n := 0
	for _, d := range l.Items() {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Join appends a map key to a document path.
func Join(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// Index appends a sequence index to a document path.
func Index(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}
