package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

// ExtractParams pulls a JSON object out of free-form model output and
// validates it into EnhancedParams. Models tend to wrap the payload in
// prose, so the candidate span runs from the first "{" to the last "}"
// in the text. Required keys the model omitted are filled with defaults;
// a span that fails to parse is a failure, with no repair attempts.
func ExtractParams(text string) (domain.EnhancedParams, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return domain.EnhancedParams{}, fmt.Errorf("%w: no JSON object in model output", domain.ErrAIMalformed)
	}

	var raw struct {
		CorrectedQuery *string  `json:"correctedQuery"`
		Keywords       []string `json:"keywords"`
		Categories     []string `json:"categories"`
		Explanation    string   `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return domain.EnhancedParams{}, fmt.Errorf("%w: %v", domain.ErrAIMalformed, err)
	}

	params := domain.EnhancedParams{
		Keywords:    []string{},
		Categories:  []string{},
		Explanation: raw.Explanation,
	}
	if raw.CorrectedQuery != nil {
		params.CorrectedQuery = *raw.CorrectedQuery
	}
	if raw.Keywords != nil {
		params.Keywords = raw.Keywords
	}
	if raw.Categories != nil {
		params.Categories = raw.Categories
	}
	return params, nil
}
