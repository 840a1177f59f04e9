package enrich

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseNarrative extracts the narrative from the provider response.
func parseNarrative(content string) (NarrativeResponse, error) {
	var jsonResp struct {
		Narrative  string  `json:"narrative"`
		Confidence float64 `json:"confidence"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return NarrativeResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if jsonResp.Narrative == "" {
		return NarrativeResponse{}, fmt.Errorf("no narrative found in response")
	}

	return NarrativeResponse{
		Narrative:  jsonResp.Narrative,
		Confidence: jsonResp.Confidence,
	}, nil
}

// cleanMarkdownWrapper strips markdown code fences that models sometimes wrap
// around JSON output.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
