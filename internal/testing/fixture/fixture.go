// Package fixture seeds in-memory stores with a small, well known catalog for tests.
package fixture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osse101/ItemForge_Go/internal/database/memory"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// Template ids of the seeded catalog
const (
	ShortSword    = 1
	JewelOfBless  = 2
	JewelOfSoul   = 3
	JewelOfLife   = 4
	LeatherArmour = 5
	ChaosWeapon   = 6
	BoxOfLuck     = 7
	Apple         = 8
	SmallShield   = 9
	DragonAxe     = 11
	NatureBow     = 12
	ThunderStaff  = 13
	LongSword     = 21
	BronzeArmour  = 25
	BoxOfKundun   = 27
)

// Templates is the seeded catalog
func Templates() []domain.Template {
	return []domain.Template{
		{ID: ShortSword, Name: "short sword", Category: domain.CategoryWeapon, Tier: 0, MaxLevel: 15, InShop: true},
		{ID: JewelOfBless, Name: "jewel of bless", Category: domain.CategoryJewel, Tier: 0, Catalyst: domain.CatalystLesser, InShop: true},
		{ID: JewelOfSoul, Name: "jewel of soul", Category: domain.CategoryJewel, Tier: 0, Catalyst: domain.CatalystGreater, InShop: true, RequiredLevel: 50},
		{ID: JewelOfLife, Name: "jewel of life", Category: domain.CategoryJewel, Tier: 0, Catalyst: domain.CatalystBonus},
		{ID: LeatherArmour, Name: "leather armour", Category: domain.CategoryArmour, Tier: 0, MaxLevel: 15, InShop: true},
		{ID: ChaosWeapon, Name: "chaos weapon", Category: domain.CategoryWeapon, Tier: 2, MaxLevel: 15},
		{ID: BoxOfLuck, Name: "box of luck", Category: domain.CategoryBox, Tier: 0},
		{ID: Apple, Name: "apple", Category: domain.CategoryMisc, Tier: 0, InShop: true},
		{ID: SmallShield, Name: "small shield", Category: domain.CategoryArmour, Tier: 0, MaxLevel: 2},
		{ID: DragonAxe, Name: "chaos dragon axe", Category: domain.CategoryWeapon, Tier: 3, MaxLevel: 15},
		{ID: NatureBow, Name: "chaos nature bow", Category: domain.CategoryWeapon, Tier: 3, MaxLevel: 15},
		{ID: ThunderStaff, Name: "chaos lightning staff", Category: domain.CategoryWeapon, Tier: 3, MaxLevel: 15},
		{ID: LongSword, Name: "long sword", Category: domain.CategoryWeapon, Tier: 1, MaxLevel: 15},
		{ID: BronzeArmour, Name: "bronze armour", Category: domain.CategoryArmour, Tier: 1, MaxLevel: 15},
		{ID: BoxOfKundun, Name: "box of kundun", Category: domain.CategoryBox, Tier: 1},
	}
}

// Tier0Params is the reference odds table for tier 0
func Tier0Params() domain.DropParams {
	return domain.DropParams{
		Tier:            0,
		WeaponsDropRate: 5,
		ArmoursDropRate: 10,
		JewelsDropRate:  1,
		MiscDropRate:    0,
		BoxDropRate:     50,
		ExcDropRate:     20,
		BoxID:           1,
		MinItemLevel:    0,
		MaxItemLevel:    3,
		MaxAddPoints:    8,
	}
}

// Tier1BoxParams is what a box sealed for tier 1 yields
func Tier1BoxParams() domain.BoxDropParams {
	return domain.BoxDropParams{
		DropParams: domain.DropParams{
			Tier:            1,
			WeaponsDropRate: 1,
			ArmoursDropRate: 1,
			ExcDropRate:     50,
			MinItemLevel:    2,
			MaxItemLevel:    5,
			MaxAddPoints:    12,
		},
		LuckDropRate:  50,
		SkillDropRate: 50,
	}
}

// NewStore returns a memory store holding the seeded catalog, tier 0 drop params and tier 1 box params
func NewStore(t testing.TB) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	for _, tmpl := range Templates() {
		require.NoError(t, tx.UpsertTemplate(ctx, tmpl))
	}
	_, err = tx.PutDropParams(ctx, Tier0Params())
	require.NoError(t, err)
	_, err = tx.PutBoxDropParams(ctx, Tier1BoxParams())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	return s
}

// Give creates a committed item for owner
func Give(t testing.TB, s *memory.Store, owner string, templateID int, attrs domain.ItemAttributes) int64 {
	t.Helper()
	ctx := context.Background()
	tmpl, err := s.GetTemplate(ctx, templateID)
	require.NoError(t, err)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	item := &domain.Item{
		TemplateID:        templateID,
		Category:          tmpl.Category,
		Level:             attrs.Level,
		AdditionalDamage:  attrs.AdditionalDamage,
		AdditionalDefense: attrs.AdditionalDefense,
		Luck:              attrs.Luck,
		Skill:             attrs.Skill,
		Excellent:         attrs.Excellent,
		Box:               attrs.Box,
		Owner:             owner,
	}
	id, err := tx.InsertItem(ctx, item)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	return id
}

// Fund credits a wallet
func Fund(t testing.TB, s *memory.Store, owner string, amount int64) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.AdjustBalance(ctx, owner, amount)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
}

// Put stores extra configuration through fn in its own transaction
func Put(t testing.TB, s *memory.Store, fn func(ctx context.Context, tx repository.ConfigWriter) error) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, fn(ctx, tx))
	require.NoError(t, tx.Commit(ctx))
}
