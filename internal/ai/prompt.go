// Package ai holds the pure pieces of the query-enhancement pipeline:
// prompt construction and response extraction. Network clients live in
// the provider subpackages.
package ai

import (
	"fmt"
	"strings"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

const promptTemplate = `You are a helpful grocery shopping assistant. Your goal is to refine a user's search query to find specific products.
The user is searching for: "%s".

Available product categories are: %s.

Please analyze the query and provide:
1.  ` + "`correctedQuery`" + `: If the query has typos or misspellings, provide a corrected version. If no correction is needed, provide the original query.
2.  ` + "`keywords`" + `: Provide an array of 2-3 highly relevant keywords that directly describe the product's physical form, primary characteristic, or intended use based on the query. For example, if the query is "powder", keywords might include "powdered", "granules", "dust". If the query is "milk", keywords might include "liquid", "dairy", "drink". Avoid overly broad or generic terms.
3.  ` + "`categories`" + `: Provide an array of 1-2 product categories from the "Available product categories" list that are most relevant to the refined keywords and corrected query. Only include categories if they strongly match.
4.  ` + "`explanation`" + `: A brief explanation of your reasoning (for debugging, not shown to user).

Example for query "baking soda":
{
  "correctedQuery": "baking soda",
  "keywords": ["powder", "leavening", "sodium bicarbonate"],
  "categories": ["Baking Supplies", "Pantry Staples"],
  "explanation": "Query is clear. Keywords describe its form and use. Categories are directly relevant."
}

Example for query "fresh bred":
{
  "correctedQuery": "fresh bread",
  "keywords": ["loaf", "sliced", "bakery"],
  "categories": ["Baked Goods", "Bread"],
  "explanation": "Corrected typo. Keywords describe form. Categories are relevant."
}

Format your response STRICTLY as a valid JSON object with ONLY the fields described above. No other text, explanations, or formatting before or after the JSON object.`

// BuildPrompt renders the enhancement instruction for a raw user query.
// Pure function: same query and category ordering always produce the same
// prompt. Category names are joined verbatim, never truncated or reordered.
func BuildPrompt(query string, categories []domain.Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return fmt.Sprintf(promptTemplate, query, strings.Join(names, ", "))
}
