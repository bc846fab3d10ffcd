package payload

import (
	"fmt"
	"time"

	"github.com/revenue-cat-hackwit/recook-edge-function/core/extract"
)

const (
	// MealPlanDays is the length of a weekly plan.
	MealPlanDays = 7
	// MealPlanSlots is the number of entries a full plan holds: seven days of
	// breakfast, lunch and dinner.
	MealPlanSlots = MealPlanDays * len(mealTypes)
)

var mealTypes = [...]string{"breakfast", "lunch", "dinner"}

// MealPlanShape is a weekly plan, in slot order, optionally wrapped as
// {"plan": [...]}.
var MealPlanShape = extract.ArrayOf(extract.Object("recipe_name", "description")).InEnvelope("plan")

// MealPlanEntry is one planned meal.
type MealPlanEntry struct {
	RecipeName  string `json:"recipe_name"`
	Description string `json:"description"`
}

// MealPlan is a weekly plan ordered Day 1 breakfast, Day 1 lunch, ...
type MealPlan []MealPlanEntry

// Slot is the calendar position of a plan entry.
type Slot struct {
	Day      int // 0-based day offset from the start date
	Date     time.Time
	MealType string
}

// SlotAt returns where entry i falls in a plan starting on start. ok is false
// past the seventh day.
func SlotAt(start time.Time, i int) (slot Slot, ok bool) {
	if i < 0 || i >= MealPlanSlots {
		return Slot{}, false
	}
	day := i / len(mealTypes)
	return Slot{
		Day:      day,
		Date:     start.AddDate(0, 0, day),
		MealType: mealTypes[i%len(mealTypes)],
	}, true
}

// Complete reports whether the plan fills every slot.
func (p MealPlan) Complete() bool {
	return len(p) >= MealPlanSlots
}

// Key returns the "YYYY-MM-DD_mealtype" key used to match existing slots.
func (s Slot) Key() string {
	return fmt.Sprintf("%s_%s", s.Date.Format(time.DateOnly), s.MealType)
}

// ParseMealPlan decodes a weekly plan. A short plan is returned as-is; use
// Complete to decide whether to accept it.
func ParseMealPlan(content string, opts ...extract.Option) (MealPlan, error) {
	plan, err := extract.Decode[MealPlan](content, MealPlanShape, opts...)
	if err != nil {
		return nil, err
	}
	return plan, nil
}
