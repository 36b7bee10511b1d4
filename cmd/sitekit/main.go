package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitekit"
)

type rootOptions struct {
	dir         string
	presetDir   string
	libraries   []string
	content     string
	markdown    string
	themeDirs   []string
	theme       string
	variant     string
	logProvider string
	logLevel    string
	verbose     bool
	timeout     time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "sitekit",
		Short:         "Resolve site presets into JSON documents",
		Long:          `sitekit loads presets, libraries and sample content from a project directory and resolves them into site and page documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dir, "dir", ".", "Project directory fixture paths are relative to")
	flags.StringVar(&opts.presetDir, "presets", "presets", "Directory holding preset files")
	flags.StringSliceVar(&opts.libraries, "library", nil, "Library file with themes, experiences, behaviours, intros and components (repeatable)")
	flags.StringVar(&opts.content, "content", "", "YAML or JSON sample content file")
	flags.StringVar(&opts.markdown, "markdown", "", "Directory of Markdown files merged into the sample content")
	flags.StringSliceVar(&opts.themeDirs, "theme-dir", nil, "go-theme manifest directory (repeatable)")
	flags.StringVar(&opts.theme, "theme", "", "Default theme when theme directories are loaded")
	flags.StringVar(&opts.variant, "variant", "", "Default theme variant")
	flags.StringVar(&opts.logProvider, "log-provider", "console", "Logging provider: console or gologger")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Minimum log level")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable logging")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Timeout applied to each command")

	root.AddCommand(
		newResolveCmd(opts),
		newPageCmd(opts),
		newContractCmd(opts),
		newCheckCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func (o *rootOptions) config() sitekit.Config {
	cfg := sitekit.DefaultConfig()
	cfg.Sources.PresetDir = o.presetDir
	cfg.Sources.Libraries = o.libraries
	cfg.Sources.ContentFile = o.content
	cfg.Sources.MarkdownDir = o.markdown
	cfg.Features.Markdown = o.markdown != ""
	if len(o.themeDirs) > 0 {
		cfg.Features.Themes = true
		cfg.Sources.DefaultTheme = o.theme
		cfg.Sources.DefaultVariant = o.variant
		for _, dir := range o.themeDirs {
			cfg.Sources.ThemeDirs = append(cfg.Sources.ThemeDirs, filepath.Join(o.dir, dir))
		}
	}
	cfg.Features.Logger = o.verbose
	cfg.Logging.Provider = o.logProvider
	cfg.Logging.Level = o.logLevel
	cfg.Commands.Timeout = o.timeout
	return cfg
}

func (o *rootOptions) module(cfg sitekit.Config) (*sitekit.Module, error) {
	module, err := sitekit.New(cfg, sitekit.WithSources(os.DirFS(o.dir)))
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return module, nil
}

// writeOutput prints payload as indented JSON, or replaces the file at
// path atomically when path is set.
func writeOutput(stdout io.Writer, path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
