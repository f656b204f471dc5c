package domain

// ItemConstraint bounds one input slot or one output candidate of a recipe.
// Add points compare against the sum of both pools.
type ItemConstraint struct {
	TemplateID   int `json:"template_id" validate:"required,gt=0"`
	MinLevel     int `json:"min_level" validate:"min=0,max=255"`
	MaxLevel     int `json:"max_level" validate:"min=0,max=255,gtefield=MinLevel"`
	MinAddPoints int `json:"min_add_points" validate:"min=0,max=56"`
	MaxAddPoints int `json:"max_add_points" validate:"min=0,max=56,gtefield=MinAddPoints"`
}

// Matches reports whether the item satisfies the constraint
func (c ItemConstraint) Matches(item *Item) bool {
	if item.TemplateID != c.TemplateID {
		return false
	}
	if item.Level < c.MinLevel || item.Level > c.MaxLevel {
		return false
	}
	points := item.AddPoints()
	return points >= c.MinAddPoints && points <= c.MaxAddPoints
}

// Width is the combined size of the level and add point ranges
func (c ItemConstraint) Width() int {
	return (c.MaxLevel - c.MinLevel) + (c.MaxAddPoints - c.MinAddPoints)
}

// Recipe is an immutable chaos combination rule. IDs follow creation order.
type Recipe struct {
	ID               int              `json:"id"`
	Name             string           `json:"name" validate:"max=64"`
	InputConstraints []ItemConstraint `json:"input_constraints" validate:"required,min=1,max=32,dive"`
	SuccessRate      int              `json:"success_rate" validate:"min=0,max=100"`
	OutputCandidates []ItemConstraint `json:"output_candidates" validate:"required,min=1,dive"`
	ExcRate          int              `json:"exc_rate" validate:"min=0,max=100"`
}

// Specificity is the summed width of the input ranges; narrower is more specific
func (r *Recipe) Specificity() int {
	total := 0
	for _, c := range r.InputConstraints {
		total += c.Width()
	}
	return total
}
