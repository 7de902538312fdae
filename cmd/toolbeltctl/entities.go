package main

import (
	"github.com/spf13/cobra"
)

func newAppsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List known apps",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ts, err := buildToolSet(opts)
			if err != nil {
				return err
			}
			return printApps(ts.Resolver().AllApps(), opts.jsonOutput)
		},
	}
}

func newActionsCmd(opts *cliOptions) *cobra.Command {
	var (
		apps []string
		tags []string
	)

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List known actions, optionally filtered by app and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := buildToolSet(opts)
			if err != nil {
				return err
			}
			if len(tags) > 0 {
				actions, err := ts.FindActionsByTags(cmd.Context(), apps, tags)
				if err != nil {
					return err
				}
				return printActions(actions, opts.jsonOutput)
			}
			return printActions(ts.Resolver().AllActions(), opts.jsonOutput)
		},
	}

	cmd.Flags().StringArrayVar(&apps, "app", nil, "app selector (repeatable)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag selector (repeatable)")

	return cmd
}

func newTriggersCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "triggers",
		Short: "List known triggers",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ts, err := buildToolSet(opts)
			if err != nil {
				return err
			}
			return printTriggers(ts.Resolver().AllTriggers(), opts.jsonOutput)
		},
	}
}
