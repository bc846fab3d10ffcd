// Package payload names the JSON shapes the recook AI tasks expect back from
// a model and decodes them into Go structs: pantry items seen in a photo, a
// generated recipe, a nutrition estimate, a weekly meal plan and pantry-based
// recommendations.
//
// Each Parse function is a thin layer over extract.Decode. Policies that the
// extractor deliberately leaves to callers live here too: the 21-slot
// cardinality of a meal plan, the food-confidence threshold, recipe name
// clean-up and match-score clamping.
package payload
