package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

func TestExtractParams_PlainJSON(t *testing.T) {
	text := `{"correctedQuery":"fresh bread","keywords":["loaf","bakery"],"categories":["Bread"],"explanation":"typo fixed"}`

	got, err := ExtractParams(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.EnhancedParams{
		CorrectedQuery: "fresh bread",
		Keywords:       []string{"loaf", "bakery"},
		Categories:     []string{"Bread"},
		Explanation:    "typo fixed",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("params mismatch:\ngot:  %+v\nwant: %+v", got, want)
	}
}

func TestExtractParams_ProsePadding(t *testing.T) {
	// Models often wrap the payload in explanatory prose. Any padding
	// without braces must not disturb extraction.
	paddings := []struct{ prefix, suffix string }{
		{"", ""},
		{"Sure! Here is the JSON you asked for:\n", ""},
		{"", "\nLet me know if you need anything else."},
		{"```json\n", "\n```"},
		{"prefix ", " suffix"},
		{"A very long preamble.\nSecond line of preamble.\n\n", "\n\nTrailing notes, and more notes."},
	}

	payload := domain.EnhancedParams{
		CorrectedQuery: "oat milk",
		Keywords:       []string{"liquid", "dairy-free"},
		Categories:     []string{"Dairy & Eggs"},
	}
	raw, err := json.Marshal(map[string]any{
		"correctedQuery": payload.CorrectedQuery,
		"keywords":       payload.Keywords,
		"categories":     payload.Categories,
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, p := range paddings {
		t.Run(fmt.Sprintf("padding_%d", i), func(t *testing.T) {
			got, err := ExtractParams(p.prefix + string(raw) + p.suffix)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.CorrectedQuery != payload.CorrectedQuery ||
				!reflect.DeepEqual(got.Keywords, payload.Keywords) ||
				!reflect.DeepEqual(got.Categories, payload.Categories) {
				t.Errorf("round-trip mismatch: %+v", got)
			}
		})
	}
}

func TestExtractParams_MissingKeysDefaulted(t *testing.T) {
	got, err := ExtractParams(`{"correctedQuery": "milk"}`)
	if err != nil {
		t.Fatalf("missing optional keys must not fail: %v", err)
	}

	if got.CorrectedQuery != "milk" {
		t.Errorf("correctedQuery = %q, want %q", got.CorrectedQuery, "milk")
	}
	if got.Keywords == nil || len(got.Keywords) != 0 {
		t.Errorf("keywords must default to an empty slice, got %#v", got.Keywords)
	}
	if got.Categories == nil || len(got.Categories) != 0 {
		t.Errorf("categories must default to an empty slice, got %#v", got.Categories)
	}
}

func TestExtractParams_NullCorrectedQuery(t *testing.T) {
	got, err := ExtractParams(`{"correctedQuery": null, "keywords": ["a"], "categories": []}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CorrectedQuery != "" {
		t.Errorf("null correctedQuery must default to empty, got %q", got.CorrectedQuery)
	}
}

func TestExtractParams_NoJSONObject(t *testing.T) {
	_, err := ExtractParams("I could not produce a structured answer, sorry.")
	if !errors.Is(err, domain.ErrAIMalformed) {
		t.Errorf("expected ErrAIMalformed, got %v", err)
	}
}

func TestExtractParams_UnbalancedSpan(t *testing.T) {
	// First-{ to last-} produces garbage here; that is a failure, not a
	// crash, and no repair pass runs.
	_, err := ExtractParams(`opening { some text } and then another } dangling`)
	if !errors.Is(err, domain.ErrAIMalformed) {
		t.Errorf("expected ErrAIMalformed, got %v", err)
	}
}

func TestExtractParams_EmptyText(t *testing.T) {
	_, err := ExtractParams("")
	if !errors.Is(err, domain.ErrAIMalformed) {
		t.Errorf("expected ErrAIMalformed, got %v", err)
	}
}
