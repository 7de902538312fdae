package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbelt/internal/toolset"
)

func newSchemasCmd(opts *cliOptions) *cobra.Command {
	var (
		apps         []string
		actions      []string
		tags         []string
		instructions bool
	)

	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Retrieve processed action schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(apps) == 0 && len(actions) == 0 {
				return exitWithMessage(2, "at least one --app or --action is required")
			}
			ts, err := buildToolSet(opts)
			if err != nil {
				return err
			}
			schemas, err := ts.GetActionSchemas(cmd.Context(), toolset.SchemaRequest{
				Apps:    apps,
				Actions: actions,
				Tags:    tags,
			})
			if err != nil {
				return err
			}
			if instructions {
				fmt.Print(ts.GetAgentInstructions(schemas))
				return nil
			}
			return printSchemas(schemas, opts.jsonOutput)
		},
	}

	cmd.Flags().StringArrayVar(&apps, "app", nil, "app selector (repeatable)")
	cmd.Flags().StringArrayVar(&actions, "action", nil, "action selector (repeatable)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag filter for app expansion (repeatable)")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print agent usage instructions instead of schemas")

	return cmd
}
