package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbelt/internal/infra/userdata"
)

func newLoginCmd(opts *cliOptions) *cobra.Command {
	var (
		apiKey   string
		baseURL  string
		entityID string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Persist API credentials in the user data store",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if apiKey == "" {
				return exitWithMessage(2, "--api-key is required")
			}
			store, err := openUserData(opts)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Save(userdata.UserData{
				APIKey:   apiKey,
				BaseURL:  baseURL,
				EntityID: entityID,
			}); err != nil {
				return err
			}
			fmt.Printf("credentials stored in %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the remote service")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "remote service base URL (optional)")
	cmd.Flags().StringVar(&entityID, "entity", "", "default entity id (optional)")

	return cmd
}

func newWhoamiCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := opts.config
			if opts.jsonOutput {
				return writeJSON(map[string]any{
					"baseURL":  cfg.BaseURL,
					"entityID": cfg.EntityID,
					"cacheDir": cfg.CacheDir,
					"apiKey":   maskKey(cfg.APIKey),
				})
			}
			fmt.Printf("base URL: %s\n", cfg.BaseURL)
			fmt.Printf("entity:   %s\n", cfg.EntityID)
			fmt.Printf("cache:    %s\n", cfg.CacheDir)
			fmt.Printf("api key:  %s\n", maskKey(cfg.APIKey))
			return nil
		},
	}
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
