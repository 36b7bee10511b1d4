package main

import (
	"github.com/spf13/cobra"

	sitecmd "github.com/goliatone/go-sitekit/internal/commands/site"
	"github.com/goliatone/go-sitekit/internal/site"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var (
		output     string
		transition bool
		noIntro    bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <preset>",
		Short: "Resolve the site document of a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := root.module(root.config())
			if err != nil {
				return err
			}
			var result *site.SiteResult
			err = module.Container().ResolveSiteHandler().Execute(cmd.Context(), sitecmd.ResolveSiteCommand{
				PresetID:          args[0],
				Content:           module.Content(),
				IncludeTransition: transition,
				ExcludeIntro:      noIntro,
				ResultCallback:    func(r *site.SiteResult) { result = r },
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, result)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the document to this file instead of stdout")
	cmd.Flags().BoolVar(&transition, "transition", false, "Keep the experience transition in the output")
	cmd.Flags().BoolVar(&noIntro, "no-intro", false, "Leave the intro out of the output")
	return cmd
}

func newPageCmd(root *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "page <preset> <page>",
		Short: "Resolve a single page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := root.module(root.config())
			if err != nil {
				return err
			}
			var result *site.PageResult
			err = module.Container().ResolvePageHandler().Execute(cmd.Context(), sitecmd.ResolvePageCommand{
				PresetID:       args[0],
				PageID:         args[1],
				Content:        module.Content(),
				ResultCallback: func(r *site.PageResult) { result = r },
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, result)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the document to this file instead of stdout")
	return cmd
}
