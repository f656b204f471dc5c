package economy

import (
	"fmt"
	"math"

	"github.com/osse101/ItemForge_Go/internal/domain"
)

// maxPrice is the first float64 that no longer fits in an int64
const maxPrice = float64(math.MaxInt64)

// Price returns the deterministic shop value of an item.
// Fractional currency is rounded down. A value that does not fit in int64 fails with ErrInvalidInput.
func Price(list *domain.PriceList, item *domain.Item, tmpl *domain.Template) (int64, error) {
	base := tmpl.BasePrice
	if base <= 0 {
		base = list.BasePrice(item.Category)
	}

	v := float64(base)
	v *= math.Pow(1+list.RarityMultiplierPct/100, float64(tmpl.Tier))
	v *= 1 + list.LevelMultiplierPct/100*float64(item.Level)
	v *= 1 + list.AddPointsMultiplierPct/100*float64(item.AddPoints())
	if item.Luck {
		v *= 1 + list.LuckMultiplierPct/100
	}
	if item.IsExcellent() {
		v *= 1 + list.ExcMultiplierPct/100
	}
	if math.IsNaN(v) || v >= maxPrice || v < 0 {
		return 0, fmt.Errorf(ErrMsgPriceOverflowFmt, tmpl.ID, tmpl.Tier, domain.ErrInvalidInput)
	}
	return int64(math.Floor(v)), nil
}

// SellPrice is Price divided by the buy/sell spread, rounded down
func SellPrice(list *domain.PriceList, item *domain.Item, tmpl *domain.Template) (int64, error) {
	price, err := Price(list, item, tmpl)
	if err != nil {
		return 0, err
	}
	return int64(math.Floor(float64(price) / list.BuySellMultiplier)), nil
}

// totalCost multiplies a unit price by quantity, rejecting products that overflow
func totalCost(unit int64, quantity int) (int64, error) {
	if unit > 0 && int64(quantity) > math.MaxInt64/unit {
		return 0, fmt.Errorf(ErrMsgCostOverflowFmt, quantity, unit, domain.ErrInvalidInput)
	}
	return unit * int64(quantity), nil
}

// freshItem is what the shop hands out: level 0, no points, no traits
func freshItem(tmpl *domain.Template) *domain.Item {
	return &domain.Item{TemplateID: tmpl.ID, Category: tmpl.Category}
}
