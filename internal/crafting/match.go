package crafting

import "github.com/osse101/ItemForge_Go/internal/domain"

// assign finds a one-to-one assignment of items to constraints.
// It returns nil when the submission cannot fill every slot exactly once.
// assignment[i] is the index of the constraint item i fills.
func assign(items []*domain.Item, constraints []domain.ItemConstraint) []int {
	if len(items) != len(constraints) {
		return nil
	}

	// slotOwner[c] is the item currently holding constraint c, -1 when free
	slotOwner := make([]int, len(constraints))
	for c := range slotOwner {
		slotOwner[c] = -1
	}

	var augment func(i int, seen []bool) bool
	augment = func(i int, seen []bool) bool {
		for c := range constraints {
			if seen[c] || !constraints[c].Matches(items[i]) {
				continue
			}
			seen[c] = true
			if slotOwner[c] < 0 || augment(slotOwner[c], seen) {
				slotOwner[c] = i
				return true
			}
		}
		return false
	}

	for i := range items {
		if !augment(i, make([]bool, len(constraints))) {
			return nil
		}
	}

	assignment := make([]int, len(items))
	for c, i := range slotOwner {
		assignment[i] = c
	}
	return assignment
}

// bestRecipe picks the most specific recipe the submission satisfies.
// Among equally specific matches the earliest created (lowest ID) wins.
func bestRecipe(items []*domain.Item, recipes []domain.Recipe) *domain.Recipe {
	var best *domain.Recipe
	for i := range recipes {
		r := &recipes[i]
		if assign(items, r.InputConstraints) == nil {
			continue
		}
		if best == nil || r.Specificity() < best.Specificity() ||
			(r.Specificity() == best.Specificity() && r.ID < best.ID) {
			best = r
		}
	}
	return best
}
