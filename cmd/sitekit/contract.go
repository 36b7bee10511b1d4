package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	contractcmd "github.com/goliatone/go-sitekit/internal/commands/contract"
	"github.com/goliatone/go-sitekit/internal/site"
)

func newContractCmd(root *rootOptions) *cobra.Command {
	var (
		output string
		schema bool
	)
	cmd := &cobra.Command{
		Use:   "contract <preset>",
		Short: "Print the content contract of a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := root.module(root.config())
			if err != nil {
				return err
			}
			var result *site.ContractResult
			err = module.Container().BuildContractHandler().Execute(cmd.Context(), contractcmd.BuildContractCommand{
				PresetID:       args[0],
				ResultCallback: func(r *site.ContractResult) { result = r },
			})
			if err != nil {
				return err
			}
			if schema {
				return writeOutput(cmd.OutOrStdout(), output, result.Contract.JSONSchema())
			}
			return writeOutput(cmd.OutOrStdout(), output, result)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the contract to this file instead of stdout")
	cmd.Flags().BoolVar(&schema, "schema", false, "Print the JSON Schema of the contract instead")
	return cmd
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	var (
		output string
		strict bool
		sample bool
	)
	cmd := &cobra.Command{
		Use:   "check <preset>",
		Short: "Resolve every page of a preset and report leftover bindings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := root.module(root.config())
			if err != nil {
				return err
			}
			content := module.Content()
			if sample {
				content = nil
			}
			var report *site.CheckReport
			err = module.Container().CheckPresetHandler().Execute(cmd.Context(), contractcmd.CheckPresetCommand{
				PresetID:       args[0],
				Content:        content,
				Strict:         strict,
				ResultCallback: func(r *site.CheckReport) { report = r },
			})
			if report != nil {
				if werr := writeOutput(cmd.OutOrStdout(), output, report); werr != nil {
					return werr
				}
			}
			if errors.Is(err, contractcmd.ErrCheckFailed) {
				return fmt.Errorf("%s: %d unexpected leftovers, %d content issues",
					args[0], report.Scan.Unexpected, len(report.ContentIssues))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when the report is not clean")
	cmd.Flags().BoolVar(&sample, "sample", false, "Check against the contract sample instead of the loaded content")
	return cmd
}
