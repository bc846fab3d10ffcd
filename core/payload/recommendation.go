package payload

import "github.com/revenue-cat-hackwit/recook-edge-function/core/extract"

// RecommendationsShape is a list of pantry-based recipe suggestions, wrapped
// as {"recommendations": [...]} in structured-output mode.
var RecommendationsShape = extract.ArrayOf(extract.Object(
	"title", "description", "time_minutes", "difficulty",
	"servings", "calories_per_serving", "ingredients",
	"tools", "steps", "tips", "matchScore", "usedPantryItems",
	"missingIngredients",
)).InEnvelope("recommendations")

// Recommendation is a recipe suggested from what is already in the pantry.
type Recommendation struct {
	Recipe
	MatchScore             float64             `json:"matchScore"`
	UsedPantryItems        []string            `json:"usedPantryItems"`
	MissingIngredients     []MissingIngredient `json:"missingIngredients"`
	AlternativeSuggestions []string            `json:"alternativeSuggestions"`
}

type MissingIngredient struct {
	Ingredient
	IsEssential bool `json:"isEssential"`
}

// Normalize clamps MatchScore to [0, 1] and replaces nil lists with empty
// ones so the value serialises without nulls.
func (r *Recommendation) Normalize() {
	switch {
	case r.MatchScore < 0:
		r.MatchScore = 0
	case r.MatchScore > 1:
		r.MatchScore = 1
	}
	if r.UsedPantryItems == nil {
		r.UsedPantryItems = []string{}
	}
	if r.MissingIngredients == nil {
		r.MissingIngredients = []MissingIngredient{}
	}
	if r.AlternativeSuggestions == nil {
		r.AlternativeSuggestions = []string{}
	}
}

// ParseRecommendations decodes and normalises recipe suggestions.
func ParseRecommendations(content string, opts ...extract.Option) ([]Recommendation, error) {
	recs, err := extract.Decode[[]Recommendation](content, RecommendationsShape, opts...)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Normalize()
	}
	return recs, nil
}
