package payload

import "github.com/revenue-cat-hackwit/recook-edge-function/core/extract"

// MinFoodConfidence is the confidence below which a nutrition estimate is
// treated as "this is not food".
const MinFoodConfidence = 0.3

// NutritionShape is a nutrition estimate for a photographed meal.
var NutritionShape = extract.Object("foodName", "calories")

// Nutrition is a nutrition estimate. Masses are grams, sodium milligrams.
type Nutrition struct {
	FoodName     string   `json:"foodName"`
	ServingSize  string   `json:"servingSize,omitempty"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fat          float64  `json:"fat"`
	Fiber        float64  `json:"fiber"`
	Sugar        float64  `json:"sugar"`
	Sodium       float64  `json:"sodium"`
	Confidence   float64  `json:"confidence"`
	HealthScore  float64  `json:"healthScore"`
	DietaryFlags []string `json:"dietaryFlags,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// IsFood reports whether the model was confident the image shows food.
func (n Nutrition) IsFood() bool {
	return n.Confidence >= MinFoodConfidence
}

// ParseNutrition decodes a nutrition estimate.
func ParseNutrition(content string, opts ...extract.Option) (*Nutrition, error) {
	n, err := extract.Decode[Nutrition](content, NutritionShape, opts...)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
