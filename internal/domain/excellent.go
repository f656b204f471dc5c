package domain

import "strings"

// ExcellentFlags is a bitset over the 13 excellent traits
type ExcellentFlags uint16

const (
	ExcLifeAfterKill ExcellentFlags = 1 << iota
	ExcManaAfterKill
	ExcExcellentDamageChance
	ExcAttackSpeed
	ExcDamagePercent
	ExcDefenseSuccessRate
	ExcGoldAfterKill
	ExcReflectDamage
	ExcMaxLife
	ExcMaxMana
	ExcHPRecovery
	ExcMPRecovery
	ExcDamageReduction
)

// NumExcellentFlags is the number of distinct excellent traits
const NumExcellentFlags = 13

// AllExcellentFlags has every known trait set
const AllExcellentFlags ExcellentFlags = 1<<NumExcellentFlags - 1

var excellentNames = [NumExcellentFlags]string{
	"life_after_kill",
	"mana_after_kill",
	"excellent_damage_chance",
	"attack_speed",
	"damage_percent",
	"defense_success_rate",
	"gold_after_kill",
	"reflect_damage",
	"max_life",
	"max_mana",
	"hp_recovery",
	"mp_recovery",
	"damage_reduction",
}

// ExcellentFlagAt returns the flag with the given index in [0, NumExcellentFlags)
func ExcellentFlagAt(idx int) ExcellentFlags {
	return ExcellentFlags(1) << uint(idx)
}

// Has reports whether every bit of f is set
func (e ExcellentFlags) Has(f ExcellentFlags) bool {
	return e&f == f
}

// Valid reports whether only known bits are set
func (e ExcellentFlags) Valid() bool {
	return e&^AllExcellentFlags == 0
}

// Count returns the number of traits set
func (e ExcellentFlags) Count() int {
	n := 0
	for v := e; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Names lists the set traits in bit order
func (e ExcellentFlags) Names() []string {
	var out []string
	for i := 0; i < NumExcellentFlags; i++ {
		if e.Has(ExcellentFlagAt(i)) {
			out = append(out, excellentNames[i])
		}
	}
	return out
}

func (e ExcellentFlags) String() string {
	if e == 0 {
		return "none"
	}
	return strings.Join(e.Names(), ",")
}
