package main

import (
	"encoding/json"
	"fmt"

	"toolbelt/internal/domain"
	"toolbelt/internal/registry"
)

func writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printResponse(response map[string]any, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(response)
	}
	successful, _ := response["successful"].(bool)
	fmt.Printf("successful=%t\n", successful)
	for key, value := range response {
		if key == "successful" {
			continue
		}
		fmt.Printf("%s=%v\n", key, value)
	}
	return nil
}

func printApps(apps []registry.App, jsonOutput bool) error {
	if jsonOutput {
		names := make([]string, 0, len(apps))
		for _, app := range apps {
			names = append(names, app.Slug().String())
		}
		return writeJSON(map[string]any{"apps": names})
	}
	for _, app := range apps {
		fmt.Printf("%s\t%s\n", app.Slug(), app.Locality())
	}
	return nil
}

func printActions(actions []registry.Action, jsonOutput bool) error {
	if jsonOutput {
		names := make([]string, 0, len(actions))
		for _, action := range actions {
			names = append(names, action.Slug().String())
		}
		return writeJSON(map[string]any{"actions": names})
	}
	for _, action := range actions {
		fmt.Printf("%s\t%s\n", action.Slug(), action.Locality())
	}
	return nil
}

func printTriggers(triggers []registry.Trigger, jsonOutput bool) error {
	if jsonOutput {
		names := make([]string, 0, len(triggers))
		for _, trigger := range triggers {
			names = append(names, trigger.Slug().String())
		}
		return writeJSON(map[string]any{"triggers": names})
	}
	for _, trigger := range triggers {
		fmt.Println(trigger.Slug())
	}
	return nil
}

func printSchemas(schemas []domain.ActionSchema, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(map[string]any{"schemas": schemas})
	}
	for _, schema := range schemas {
		fmt.Printf("%s\t%s\n", schema.Name, schema.Description)
	}
	return nil
}
