package drop

import (
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/rng"
)

// BaseTraitRate is the luck and skill chance in percent for ordinary drops
const BaseTraitRate = 5

// TraitRates are the Bernoulli rates in percent applied to a rolled item
type TraitRates struct {
	Luck      int
	Skill     int
	Excellent int
}

// PickCategory maps one draw in [0, total) onto the cumulative category ranges.
// It returns false when every weight is zero.
func PickCategory(src rng.Source, weights []domain.CategoryWeight) (domain.Category, bool) {
	total := 0
	for _, w := range weights {
		if w.Weight > 0 {
			total += w.Weight
		}
	}
	if total <= 0 {
		return "", false
	}

	draw := src.Intn(total)
	upper := 0
	for _, w := range weights {
		if w.Weight <= 0 {
			continue
		}
		upper += w.Weight
		if draw < upper {
			return w.Category, true
		}
	}
	return "", false
}

// Eligible filters templates to those whose level ceiling reaches minLevel
func Eligible(templates []domain.Template, minLevel int) []domain.Template {
	out := make([]domain.Template, 0, len(templates))
	for _, t := range templates {
		if t.LevelCap() >= minLevel {
			out = append(out, t)
		}
	}
	return out
}

// RollAttributes rolls level, add points and traits for a new item within [minLevel, maxLevel]
// and [0, maxAdd]. Traits and add points only apply to equipment; skill only to weapons.
func RollAttributes(src rng.Source, tmpl *domain.Template, minLevel, maxLevel, minAdd, maxAdd int, rates TraitRates) domain.ItemAttributes {
	var attrs domain.ItemAttributes
	if !tmpl.Category.IsEquipment() {
		return attrs
	}

	if maxLevel > tmpl.LevelCap() {
		maxLevel = tmpl.LevelCap()
	}
	attrs.Level = rng.Between(src, minLevel, maxLevel)

	if maxAdd > 2*domain.MaxAddPoints {
		maxAdd = 2 * domain.MaxAddPoints
	}
	attrs.AdditionalDamage, attrs.AdditionalDefense = splitPoints(src, rng.Between(src, minAdd, maxAdd))

	attrs.Luck = rng.Percent(src, rates.Luck)
	if tmpl.Category == domain.CategoryWeapon {
		attrs.Skill = rng.Percent(src, rates.Skill)
	}
	if rng.Percent(src, rates.Excellent) {
		attrs.Excellent = domain.ExcellentFlagAt(src.Intn(domain.NumExcellentFlags))
	}
	return attrs
}

// splitPoints divides total uniformly between the damage and defense pools, each capped at MaxAddPoints
func splitPoints(src rng.Source, total int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	lo := total - domain.MaxAddPoints
	if lo < 0 {
		lo = 0
	}
	hi := total
	if hi > domain.MaxAddPoints {
		hi = domain.MaxAddPoints
	}
	damage := rng.Between(src, lo, hi)
	return damage, total - damage
}
