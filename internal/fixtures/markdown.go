package fixtures

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// BodyField is the key that holds the rendered Markdown body.
const BodyField = "body"

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// LoadMarkdownContent builds a content object from Markdown files under
// dir. Each file becomes one branch named after its path without the
// extension: "team/lead.md" fills content.team.lead. Frontmatter keys
// become fields and the body is rendered to HTML under BodyField.
func (l *Loader) LoadMarkdownContent(ctx context.Context, dir string) (map[string]any, error) {
	var names []string
	err := fs.WalkDir(l.fs, dir, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() && strings.EqualFold(path.Ext(name), ".md") {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fixtures: walk %s: %w", dir, err)
	}
	sort.Strings(names)

	engine := newMarkdown()
	content := map[string]any{}
	for _, name := range names {
		data, err := fs.ReadFile(l.fs, name)
		if err != nil {
			return nil, fmt.Errorf("fixtures: read %s: %w", name, err)
		}
		fields, err := markdownFields(engine, data)
		if err != nil {
			return nil, fmt.Errorf("fixtures: %s: %w", name, err)
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(name, dir), "/")
		rel = strings.TrimSuffix(rel, path.Ext(rel))
		place(content, strings.Split(rel, "/"), fields)
	}
	l.logger.Debug("fixtures.markdown.loaded", "dir", dir, "files", len(names))
	return content, nil
}

func markdownFields(engine goldmark.Markdown, source []byte) (map[string]any, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	fields, _ := stringKeys(meta).(map[string]any)
	if fields == nil {
		fields = map[string]any{}
	}
	if len(bytes.TrimSpace(body)) > 0 {
		var buf bytes.Buffer
		if err := engine.Convert(body, &buf); err != nil {
			return nil, fmt.Errorf("render markdown: %w", err)
		}
		fields[BodyField] = buf.String()
	}
	return fields, nil
}

// place merges fields into content at segments. Existing maps are merged
// so "team.md" and "team/lead.md" can coexist.
func place(content map[string]any, segments []string, fields map[string]any) {
	current := content
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	leaf := segments[len(segments)-1]
	if existing, ok := current[leaf].(map[string]any); ok {
		for key, value := range fields {
			existing[key] = value
		}
		return
	}
	current[leaf] = fields
}

// MergeContent overlays src onto dst, descending into nested objects.
// Values from src win on conflicts. dst is modified and returned.
func MergeContent(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for key, value := range src {
		incoming, isMap := value.(map[string]any)
		existing, hasMap := dst[key].(map[string]any)
		if isMap && hasMap {
			dst[key] = MergeContent(existing, incoming)
			continue
		}
		dst[key] = value
	}
	return dst
}
