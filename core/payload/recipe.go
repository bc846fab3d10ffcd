package payload

import (
	"regexp"
	"strings"

	"github.com/revenue-cat-hackwit/recook-edge-function/core/extract"
)

// RecipeShape is a single generated recipe.
var RecipeShape = extract.Object("title", "ingredients", "steps", "time_minutes")

// Recipe is a generated recipe.
type Recipe struct {
	Title              string       `json:"title"`
	Description        string       `json:"description,omitempty"`
	TimeMinutes        int          `json:"time_minutes"`
	Difficulty         string       `json:"difficulty,omitempty"`
	Servings           int          `json:"servings,omitempty"`
	CaloriesPerServing int          `json:"calories_per_serving,omitempty"`
	Ingredients        []Ingredient `json:"ingredients"`
	Tools              []string     `json:"tools,omitempty"`
	Steps              []Step       `json:"steps"`
	Tips               string       `json:"tips,omitempty"`
}

type Ingredient struct {
	Item     string   `json:"item"`
	Quantity Quantity `json:"quantity"`
	Unit     string   `json:"unit"`
}

type Step struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
}

// ParseRecipe decodes a generated recipe.
func ParseRecipe(content string, opts ...extract.Option) (*Recipe, error) {
	recipe, err := extract.Decode[Recipe](content, RecipeShape, opts...)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

var trailingParens = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

// CleanRecipeName strips what models tend to append to a dish name. Long
// names of the form "Title - explanation" or "Title: explanation" are split
// and the explanation returned as extra; a trailing parenthetical such as
// "(500 kcal)" is dropped and returned the same way.
func CleanRecipeName(name string) (title, extra string) {
	title = strings.TrimSpace(name)
	var extras []string

	if len(title) > 40 {
		for _, sep := range []string{" - ", ": "} {
			if head, tail, ok := strings.Cut(title, sep); ok {
				title = strings.TrimSpace(head)
				extras = append(extras, strings.TrimSpace(tail))
				break
			}
		}
	}

	if loc := trailingParens.FindStringIndex(title); loc != nil && loc[0] > 0 {
		extras = append(extras, strings.Trim(strings.TrimSpace(title[loc[0]:]), "()"))
		title = strings.TrimSpace(title[:loc[0]])
	}
	return title, strings.Join(extras, ". ")
}
