package ai

import (
	"strings"
	"testing"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

func testCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Name: "Baked Goods"},
		{ID: 2, Name: "Dairy & Eggs"},
		{ID: 3, Name: "Pantry Staples"},
	}
}

func TestBuildPrompt_ContainsQueryVerbatim(t *testing.T) {
	prompt := BuildPrompt("fresh bred", testCategories())

	if !strings.Contains(prompt, `The user is searching for: "fresh bred".`) {
		t.Error("prompt must embed the raw query verbatim")
	}
}

func TestBuildPrompt_CategoryListOrderPreserved(t *testing.T) {
	prompt := BuildPrompt("milk", testCategories())

	if !strings.Contains(prompt, "Baked Goods, Dairy & Eggs, Pantry Staples") {
		t.Error("category names must be comma-joined in input order")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt("baking soda", testCategories())
	b := BuildPrompt("baking soda", testCategories())

	if a != b {
		t.Error("same inputs must produce the same prompt")
	}
}

func TestBuildPrompt_RequiredFieldsAndExamples(t *testing.T) {
	prompt := BuildPrompt("milk", testCategories())

	for _, field := range []string{"correctedQuery", "keywords", "categories", "explanation"} {
		if !strings.Contains(prompt, field) {
			t.Errorf("prompt must demand field %q", field)
		}
	}
	// The two worked examples anchor the expected output shape.
	if !strings.Contains(prompt, `"fresh bread"`) || !strings.Contains(prompt, `"baking soda"`) {
		t.Error("prompt must carry both worked examples")
	}
}

func TestBuildPrompt_EmptyInputsAccepted(t *testing.T) {
	prompt := BuildPrompt("", nil)

	if prompt == "" {
		t.Error("empty query still produces an instruction prompt")
	}
}
