package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the scene image",
	}
}

func indexProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Candidate index as returned by card_candidates (0 = largest card)",
		"minimum":     0,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load a scene image and return its dimensions and format. The decoded scene is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "card_recognize",
			Description: "Detect every playing card in a scene and label it with suit and rank (e.g. \"h7\"). Unmatched corners are reported as Unknown. Optionally writes an annotated copy of the scene.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Where to save the annotated scene. Omit to skip annotation.",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "card_candidates",
			Description: "List the card-shaped contours of a scene with their geometry, without matching them, plus counts of rejected contours.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "card_flatten",
			Description: "Return the flattened 200x300 binary image of one card candidate, or one of its corner regions, as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"index": indexProperty(),
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"card", "primary", "secondary"},
						"default":     "card",
						"description": "Whole card or one corner region",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"default":     1.0,
						"description": "Scale factor for the output image",
					},
				},
				"required": []string{"path", "index"},
			},
		},
		{
			Name:        "card_match_region",
			Description: "Match the suit and rank templates against one corner region of a card candidate and report the best scores.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"index": indexProperty(),
					"corner": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"primary", "secondary"},
						"default":     "primary",
						"description": "Which corner region to match",
					},
				},
				"required": []string{"path", "index"},
			},
		},
	}
}
