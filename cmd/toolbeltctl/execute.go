package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"toolbelt/internal/toolset"
)

func newExecuteCmd(opts *cliOptions) *cobra.Command {
	var (
		paramPairs       []string
		paramsJSON       string
		text             string
		connectedAccount string
	)

	cmd := &cobra.Command{
		Use:   "execute ACTION",
		Short: "Execute an action by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := collectParams(paramPairs, paramsJSON)
			if err != nil {
				return err
			}
			ts, err := buildToolSet(opts)
			if err != nil {
				return err
			}
			response, err := ts.ExecuteAction(cmd.Context(), toolset.ExecuteRequest{
				Action:             args[0],
				Params:             params,
				EntityID:           opts.config.EntityID,
				ConnectedAccountID: connectedAccount,
				Text:               text,
			})
			if err != nil {
				return exitWithMessage(1, err.Error())
			}
			return printResponse(response, opts.jsonOutput)
		},
	}

	cmd.Flags().StringArrayVarP(&paramPairs, "param", "p", nil, "action parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&paramsJSON, "params-json", "", "action parameters as a JSON object")
	cmd.Flags().StringVar(&text, "text", "", "natural language intent forwarded to the remote service")
	cmd.Flags().StringVar(&connectedAccount, "connected-account", "", "connected account id to execute with")

	return cmd
}

func collectParams(pairs []string, paramsJSON string) (map[string]any, error) {
	params := map[string]any{}
	if paramsJSON != "" {
		if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
			return nil, fmt.Errorf("parse --params-json: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
