package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expected := []string{
		"image_load",
		"card_recognize",
		"card_candidates",
		"card_flatten",
		"card_match_region",
	}
	if len(tools) != len(expected) {
		t.Fatalf("tools: got %d, want %d", len(tools), len(expected))
	}
	for i, name := range expected {
		if tools[i].Name != name {
			t.Errorf("tool %d: got %s, want %s", i, tools[i].Name, name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Description should not be empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("schema type: got %v, want object", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("schema should have properties")
			}
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool should marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	want := map[string][]string{
		"image_load":        {"path"},
		"card_recognize":    {"path"},
		"card_candidates":   {"path"},
		"card_flatten":      {"path", "index"},
		"card_match_region": {"path", "index"},
	}
	for _, tool := range GetToolDefinitions() {
		required, ok := tool.InputSchema["required"].([]string)
		if !ok {
			t.Errorf("%s: required should be []string", tool.Name)
			continue
		}
		if len(required) != len(want[tool.Name]) {
			t.Errorf("%s: required got %v, want %v", tool.Name, required, want[tool.Name])
			continue
		}
		for i := range required {
			if required[i] != want[tool.Name][i] {
				t.Errorf("%s: required got %v, want %v", tool.Name, required, want[tool.Name])
			}
		}
	}
}

func TestToolDefinitions_RegionEnums(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		switch tool.Name {
		case "card_flatten":
			region := props["region"].(map[string]interface{})
			if region["default"] != "card" {
				t.Errorf("card_flatten region default: got %v", region["default"])
			}
			if enum := region["enum"].([]string); len(enum) != 3 {
				t.Errorf("card_flatten region enum: got %v", enum)
			}
		case "card_match_region":
			corner := props["corner"].(map[string]interface{})
			if corner["default"] != "primary" {
				t.Errorf("card_match_region corner default: got %v", corner["default"])
			}
		}
	}
}
