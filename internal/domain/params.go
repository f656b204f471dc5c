package domain

// MaxAddPoints is the ceiling of each bonus point pool
const MaxAddPoints = 28

// Configuration ceilings. They keep prices and gold rolls well inside int64.
const (
	MaxTier      = 50
	MaxBasePrice = 1_000_000_000
	MaxGold      = 1_000_000_000
)

// DropParams holds the odds table for one rarity tier
type DropParams struct {
	Tier            int   `json:"tier" validate:"min=0,max=50"`
	WeaponsDropRate int   `json:"weapons_drop_rate" validate:"min=0,max=1000000"`
	ArmoursDropRate int   `json:"armours_drop_rate" validate:"min=0,max=1000000"`
	JewelsDropRate  int   `json:"jewels_drop_rate" validate:"min=0,max=1000000"`
	MiscDropRate    int   `json:"misc_drop_rate" validate:"min=0,max=1000000"`
	BoxDropRate     int   `json:"box_drop_rate" validate:"min=0,max=1000000"`
	GoldDropRate    int   `json:"gold_drop_rate" validate:"min=0,max=1000000"`
	ExcDropRate     int   `json:"exc_drop_rate" validate:"min=0,max=100"`
	BoxID           int   `json:"box_id" validate:"min=0"`
	MinItemLevel    int   `json:"min_item_level" validate:"min=0,max=255"`
	MaxItemLevel    int   `json:"max_item_level" validate:"min=0,max=255,gtefield=MinItemLevel"`
	MaxAddPoints    int   `json:"max_add_points" validate:"min=0,max=28"`
	GoldMin         int64 `json:"gold_min" validate:"min=0,max=1000000000"`
	GoldMax         int64 `json:"gold_max" validate:"min=0,max=1000000000,gtefield=GoldMin"`
	BlockCreated    int64 `json:"block_created"`
}

// CategoryWeights returns the category weights in resolution order
func (p *DropParams) CategoryWeights() []CategoryWeight {
	return []CategoryWeight{
		{Category: CategoryWeapon, Weight: p.WeaponsDropRate},
		{Category: CategoryArmour, Weight: p.ArmoursDropRate},
		{Category: CategoryJewel, Weight: p.JewelsDropRate},
		{Category: CategoryMisc, Weight: p.MiscDropRate},
		{Category: CategoryBox, Weight: p.BoxDropRate},
		{Category: CategoryGold, Weight: p.GoldDropRate},
	}
}

// TotalWeight sums all category weights
func (p *DropParams) TotalWeight() int {
	total := 0
	for _, w := range p.CategoryWeights() {
		total += w.Weight
	}
	return total
}

// CategoryGold is a pseudo category that resolves to currency instead of an item
const CategoryGold Category = "gold"

// CategoryWeight pairs a category with its selection weight
type CategoryWeight struct {
	Category Category
	Weight   int
}

// BoxDropParams governs what a sealed box yields when opened
type BoxDropParams struct {
	DropParams
	LuckDropRate  int `json:"luck_drop_rate" validate:"min=0,max=100"`
	SkillDropRate int `json:"skill_drop_rate" validate:"min=0,max=100"`
}

// UpgradeRules configures the level and add point rituals
type UpgradeRules struct {
	// SuccessRates[l] is the chance in percent of going from level l to l+1
	SuccessRates         []int `json:"success_rates" validate:"required,min=1,dive,min=0,max=100"`
	LuckBonus            int   `json:"luck_bonus" validate:"min=0,max=100"`
	GreaterThreshold     int   `json:"greater_threshold" validate:"min=1"`
	DestroyThreshold     int   `json:"destroy_threshold" validate:"gtefield=GreaterThreshold"`
	AddPointsIncrement   int   `json:"add_points_increment" validate:"min=1,max=28"`
	AddPointsSuccessRate int   `json:"add_points_success_rate" validate:"min=0,max=100"`
}

// DefaultUpgradeRules mirrors the classic bless/soul/life ritual
func DefaultUpgradeRules() UpgradeRules {
	return UpgradeRules{
		SuccessRates:         []int{100, 100, 100, 100, 100, 100, 60, 55, 50, 45, 40, 35, 30, 25, 20},
		LuckBonus:            25,
		GreaterThreshold:     6,
		DestroyThreshold:     8,
		AddPointsIncrement:   4,
		AddPointsSuccessRate: 50,
	}
}

// SuccessRate returns the level upgrade chance in percent for the given current level
func (r *UpgradeRules) SuccessRate(level int, luck bool) int {
	if len(r.SuccessRates) == 0 {
		return 0
	}
	idx := level
	if idx >= len(r.SuccessRates) {
		idx = len(r.SuccessRates) - 1
	}
	if idx < 0 {
		idx = 0
	}
	p := r.SuccessRates[idx]
	if luck {
		p += r.LuckBonus
	}
	if p > 100 {
		p = 100
	}
	return p
}

// PriceList holds the shop valuation constants
type PriceList struct {
	WeaponBasePrice        int64   `json:"weapon_base_price" validate:"gt=0,max=1000000000"`
	ArmourBasePrice        int64   `json:"armour_base_price" validate:"gt=0,max=1000000000"`
	JewelBasePrice         int64   `json:"jewel_base_price" validate:"gt=0,max=1000000000"`
	MiscBasePrice          int64   `json:"misc_base_price" validate:"gt=0,max=1000000000"`
	BoxBasePrice           int64   `json:"box_base_price" validate:"gt=0,max=1000000000"`
	RarityMultiplierPct    float64 `json:"rarity_multiplier_pct" validate:"min=0,max=1000"`
	LevelMultiplierPct     float64 `json:"level_multiplier_pct" validate:"min=0,max=1000"`
	AddPointsMultiplierPct float64 `json:"add_points_multiplier_pct" validate:"min=0,max=1000"`
	LuckMultiplierPct      float64 `json:"luck_multiplier_pct" validate:"min=0,max=1000"`
	ExcMultiplierPct       float64 `json:"exc_multiplier_pct" validate:"min=0,max=1000"`
	BuySellMultiplier      float64 `json:"buy_sell_multiplier" validate:"gt=1,max=100"`
}

// BasePrice returns the base price for a category
func (p *PriceList) BasePrice(c Category) int64 {
	switch c {
	case CategoryWeapon:
		return p.WeaponBasePrice
	case CategoryArmour:
		return p.ArmourBasePrice
	case CategoryJewel:
		return p.JewelBasePrice
	case CategoryMisc:
		return p.MiscBasePrice
	case CategoryBox:
		return p.BoxBasePrice
	}
	return 0
}

// DefaultPriceList is used when no PL_* overrides are configured
func DefaultPriceList() PriceList {
	return PriceList{
		WeaponBasePrice:        1000,
		ArmourBasePrice:        800,
		JewelBasePrice:         5000,
		MiscBasePrice:          200,
		BoxBasePrice:           3000,
		RarityMultiplierPct:    50,
		LevelMultiplierPct:     20,
		AddPointsMultiplierPct: 5,
		LuckMultiplierPct:      25,
		ExcMultiplierPct:       100,
		BuySellMultiplier:      3,
	}
}
