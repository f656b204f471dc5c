package domain

// CatalystKind marks a template as an upgrade catalyst
type CatalystKind string

const (
	CatalystNone    CatalystKind = ""
	CatalystLesser  CatalystKind = "lesser"  // bless style, levels 0-5
	CatalystGreater CatalystKind = "greater" // soul style, levels 6+
	CatalystBonus   CatalystKind = "bonus"   // life style, add points
)

// Valid reports whether k is a known catalyst kind
func (k CatalystKind) Valid() bool {
	switch k {
	case CatalystNone, CatalystLesser, CatalystGreater, CatalystBonus:
		return true
	}
	return false
}

// DefaultTemplateMaxLevel applies when a template does not set its own ceiling
const DefaultTemplateMaxLevel = 15

// Template describes a kind of item that can be created
type Template struct {
	ID            int          `json:"id" validate:"required,gt=0"`
	Name          string       `json:"name" validate:"required,max=64"`
	Category      Category     `json:"category" validate:"required,oneof=weapon armour jewel misc box"`
	Tier          int          `json:"tier" validate:"min=0,max=50"`
	MaxLevel      int          `json:"max_level" validate:"min=0,max=255"`
	Catalyst      CatalystKind `json:"catalyst,omitempty" validate:"omitempty,oneof=lesser greater bonus"`
	InShop        bool         `json:"in_shop"`
	RequiredLevel int          `json:"required_level" validate:"min=0"`
	BasePrice     int64        `json:"base_price,omitempty" validate:"min=0,max=1000000000"`
}

// LevelCap returns the effective level ceiling of the template
func (t *Template) LevelCap() int {
	if t.MaxLevel <= 0 {
		return DefaultTemplateMaxLevel
	}
	return t.MaxLevel
}
