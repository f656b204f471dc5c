package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the template family an item was generated from
type Category string

const (
	CategoryWeapon Category = "weapon"
	CategoryArmour Category = "armour"
	CategoryJewel  Category = "jewel"
	CategoryMisc   Category = "misc"
	CategoryBox    Category = "box"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryWeapon, CategoryArmour, CategoryJewel, CategoryMisc, CategoryBox:
		return true
	}
	return false
}

// IsEquipment reports whether items of this category carry levels, add points and traits
func (c Category) IsEquipment() bool {
	return c == CategoryWeapon || c == CategoryArmour
}

// Item is a single owned item record.
// TemplateID, Category, Luck, Skill, Excellent and Box are fixed at creation.
type Item struct {
	ID                int64          `json:"id"`
	TemplateID        int            `json:"template_id"`
	Category          Category       `json:"category"`
	Level             int            `json:"level"`
	AdditionalDamage  int            `json:"additional_damage"`
	AdditionalDefense int            `json:"additional_defense"`
	Luck              bool           `json:"luck"`
	Skill             bool           `json:"skill"`
	Excellent         ExcellentFlags `json:"excellent"`
	Owner             string         `json:"owner"`
	Box               *SealedBox     `json:"box,omitempty"`
	Version           int64          `json:"version"`
	CreatedAt         time.Time      `json:"created_at"`
	// GroundSince is stamped by the store when the item lands on the ground and cleared on pickup
	GroundSince *time.Time `json:"ground_since,omitempty"`
}

// AddPoints returns the combined bonus points across both pools
func (i *Item) AddPoints() int {
	return i.AdditionalDamage + i.AdditionalDefense
}

// IsExcellent reports whether the item carries at least one excellent flag
func (i *Item) IsExcellent() bool {
	return i.Excellent != 0
}

// IsBox reports whether the item is a sealed container
func (i *Item) IsBox() bool {
	return i.Category == CategoryBox && i.Box != nil
}

// Clone returns a deep copy safe to mutate
func (i *Item) Clone() *Item {
	c := *i
	if i.Box != nil {
		b := *i.Box
		c.Box = &b
	}
	if i.GroundSince != nil {
		g := *i.GroundSince
		c.GroundSince = &g
	}
	return &c
}

// Attributes returns the mutable and creation-time attributes of the item
func (i *Item) Attributes() ItemAttributes {
	return ItemAttributes{
		Level:             i.Level,
		AdditionalDamage:  i.AdditionalDamage,
		AdditionalDefense: i.AdditionalDefense,
		Luck:              i.Luck,
		Skill:             i.Skill,
		Excellent:         i.Excellent,
		Box:               i.Box,
	}
}

// DisplayName renders the item the way players see it, e.g. "Exc Short Sword +3 +Skill +Luck +8"
func (i *Item) DisplayName(templateName string) string {
	var b strings.Builder
	if i.IsExcellent() {
		b.WriteString("Exc ")
	}
	// Casers carry state and must not be shared between goroutines
	b.WriteString(cases.Title(language.English).String(templateName))
	if i.Level > 0 {
		fmt.Fprintf(&b, " +%d", i.Level)
	}
	if i.Skill {
		b.WriteString(" +Skill")
	}
	if i.Luck {
		b.WriteString(" +Luck")
	}
	if p := i.AddPoints(); p > 0 {
		fmt.Fprintf(&b, " +%d", p)
	}
	return b.String()
}

// ItemAttributes are the values supplied when an item is created
type ItemAttributes struct {
	Level             int            `json:"level"`
	AdditionalDamage  int            `json:"additional_damage"`
	AdditionalDefense int            `json:"additional_defense"`
	Luck              bool           `json:"luck"`
	Skill             bool           `json:"skill"`
	Excellent         ExcellentFlags `json:"excellent"`
	Box               *SealedBox     `json:"box,omitempty"`
}

// SealedBox freezes the odds a box item will be opened with
type SealedBox struct {
	Tier         int           `json:"tier"`
	Params       BoxDropParams `json:"params"`
	BlockCreated int64         `json:"block_created"`
}

// ItemPatch describes a mutation request. Nil fields are left untouched.
// TemplateID and Excellent exist so that attempts to change them can be rejected explicitly.
type ItemPatch struct {
	Level             *int
	AdditionalDamage  *int
	AdditionalDefense *int
	Owner             *string
	TemplateID        *int
	Excellent         *ExcellentFlags
}

// IntPtr is a helper for building patches
func IntPtr(v int) *int { return &v }

// StringPtr is a helper for building patches
func StringPtr(v string) *string { return &v }
