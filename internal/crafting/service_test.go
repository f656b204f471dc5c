package crafting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/ItemForge_Go/internal/database/memory"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/drop"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/rng"
	"github.com/osse101/ItemForge_Go/internal/testing/fixture"
)

var alice = domain.Caller{ID: "alice", Level: 10}

func chaosWeaponRecipe() domain.Recipe {
	return domain.Recipe{
		Name: "chaos weapon",
		InputConstraints: []domain.ItemConstraint{
			{TemplateID: fixture.ChaosWeapon, MinLevel: 0, MaxLevel: 15, MinAddPoints: 12, MaxAddPoints: 28},
			{TemplateID: fixture.JewelOfBless, MinLevel: 0, MaxLevel: 15},
		},
		SuccessRate: 100,
		OutputCandidates: []domain.ItemConstraint{
			{TemplateID: fixture.DragonAxe},
			{TemplateID: fixture.NatureBow},
			{TemplateID: fixture.ThunderStaff},
		},
	}
}

func newService(t *testing.T, store *memory.Store, provider rng.Provider, recipes ...domain.Recipe) (Service, *event.MemoryBus) {
	t.Helper()
	bus := event.NewMemoryBus()
	svc := NewService(store, provider, event.NewPublisher(bus, nil))
	for _, r := range recipes {
		_, err := svc.CreateRecipe(context.Background(), r)
		require.NoError(t, err)
	}
	return svc, bus
}

func present(store *memory.Store, id int64) bool {
	_, err := store.GetItem(context.Background(), id)
	return err == nil
}

func TestCombine_ChaosWeaponScenario(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(t, store, rng.NewSeeded(99), chaosWeaponRecipe())

	outputs := map[int]int{}
	for i := 0; i < 60; i++ {
		weapon := fixture.Give(t, store, alice.ID, fixture.ChaosWeapon, domain.ItemAttributes{Level: i % 16, AdditionalDamage: 8, AdditionalDefense: 4 + i%17})
		bless := fixture.Give(t, store, alice.ID, fixture.JewelOfBless, domain.ItemAttributes{})

		// submission order does not matter
		ids := []int64{weapon, bless}
		if i%2 == 1 {
			ids = []int64{bless, weapon}
		}

		res, err := svc.Combine(ctx, alice, CombineRequest{ItemIDs: ids})
		require.NoError(t, err)
		require.Equal(t, OutcomeSuccess, res.Outcome)
		require.NotNil(t, res.Item)
		assert.Contains(t, []int{fixture.DragonAxe, fixture.NatureBow, fixture.ThunderStaff}, res.Item.TemplateID)
		assert.Equal(t, 0, res.Item.Level)
		assert.Equal(t, alice.ID, res.Item.Owner)
		assert.False(t, present(store, weapon))
		assert.False(t, present(store, bless))
		assert.True(t, present(store, res.Item.ID))
		outputs[res.Item.TemplateID]++
	}
	assert.Len(t, outputs, 3, "every candidate should come up")
}

func TestCombine_CraftedBoxCanBeOpened(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	recipe := domain.Recipe{
		Name: "kundun box",
		InputConstraints: []domain.ItemConstraint{
			{TemplateID: fixture.JewelOfBless, MaxLevel: 15},
			{TemplateID: fixture.JewelOfLife, MaxLevel: 15},
		},
		SuccessRate:      100,
		OutputCandidates: []domain.ItemConstraint{{TemplateID: fixture.BoxOfKundun, MinLevel: 2, MaxLevel: 3}},
	}
	svc, _ := newService(t, store, rng.NewSeeded(5), recipe)

	bless := fixture.Give(t, store, alice.ID, fixture.JewelOfBless, domain.ItemAttributes{})
	life := fixture.Give(t, store, alice.ID, fixture.JewelOfLife, domain.ItemAttributes{})
	res, err := svc.Combine(ctx, alice, CombineRequest{ItemIDs: []int64{bless, life}})
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, res.Outcome)

	box := res.Item
	require.NotNil(t, box)
	require.NotNil(t, box.Box, "crafted box must be sealed")
	assert.True(t, box.IsBox())
	assert.Equal(t, 1, box.Box.Tier)
	assert.Equal(t, fixture.Tier1BoxParams().LuckDropRate, box.Box.Params.LuckDropRate)
	assert.GreaterOrEqual(t, box.Level, 2)
	assert.LessOrEqual(t, box.Level, 3)

	opened, err := drop.NewService(store, rng.NewSeeded(5), nil).OpenBox(ctx, alice, box.ID, "")
	require.NoError(t, err)
	require.NotNil(t, opened)
	assert.False(t, present(store, box.ID))
}

func TestCombine_NonEquipmentOutputHonoursLevelBounds(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	recipe := domain.Recipe{
		Name:             "ripe apple",
		InputConstraints: []domain.ItemConstraint{{TemplateID: fixture.JewelOfBless, MaxLevel: 15}},
		SuccessRate:      100,
		OutputCandidates: []domain.ItemConstraint{{TemplateID: fixture.Apple, MinLevel: 4, MaxLevel: 6}},
	}
	svc, _ := newService(t, store, rng.NewSeeded(8), recipe)

	for i := 0; i < 20; i++ {
		bless := fixture.Give(t, store, alice.ID, fixture.JewelOfBless, domain.ItemAttributes{})
		res, err := svc.Combine(ctx, alice, CombineRequest{ItemIDs: []int64{bless}})
		require.NoError(t, err)
		require.NotNil(t, res.Item)
		assert.GreaterOrEqual(t, res.Item.Level, 4)
		assert.LessOrEqual(t, res.Item.Level, 6)
	}
}

func TestCombine_NoMatchConsumesInputs(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, bus := newService(t, store, rng.NewSeeded(1), chaosWeaponRecipe())

	var resolved []event.RecipeResolvedPayloadV1
	bus.Subscribe(event.RecipeResolved, func(_ context.Context, e event.Event) error {
		resolved = append(resolved, e.Payload.(event.RecipeResolvedPayloadV1))
		return nil
	})

	// 11 add points is below the recipe floor
	weapon := fixture.Give(t, store, alice.ID, fixture.ChaosWeapon, domain.ItemAttributes{AdditionalDamage: 11})
	bless := fixture.Give(t, store, alice.ID, fixture.JewelOfBless, domain.ItemAttributes{})

	res, err := svc.Combine(ctx, alice, CombineRequest{ItemIDs: []int64{weapon, bless}})
	assert.ErrorIs(t, err, domain.ErrNoRecipeMatch)
	require.NotNil(t, res)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
	assert.Nil(t, res.Item)
	assert.ElementsMatch(t, []int64{weapon, bless}, res.Consumed)
	assert.False(t, present(store, weapon))
	assert.False(t, present(store, bless))

	items, _ := store.ListItemsByOwner(ctx, alice.ID)
	assert.Empty(t, items)
	require.Len(t, resolved, 1)
	assert.False(t, resolved[0].Success)
	assert.Nil(t, resolved[0].OutputID)
}

func TestCombine_FailedRollConsumesInputs(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	recipe := chaosWeaponRecipe()
	recipe.SuccessRate = 40
	svc, _ := newService(t, store, rng.NewSequence(40), recipe)

	weapon := fixture.Give(t, store, alice.ID, fixture.ChaosWeapon, domain.ItemAttributes{AdditionalDamage: 12})
	bless := fixture.Give(t, store, alice.ID, fixture.JewelOfBless, domain.ItemAttributes{})

	res, err := svc.Combine(ctx, alice, CombineRequest{ItemIDs: []int64{weapon, bless}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Nil(t, res.Item)

	items, _ := store.ListItemsByOwner(ctx, alice.ID)
	assert.Empty(t, items, "no output and no inputs left")
}

func TestCombine_RejectedBeforeMutation(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(t, store, rng.NewSeeded(1), chaosWeaponRecipe())

	weapon := fixture.Give(t, store, alice.ID, fixture.ChaosWeapon, domain.ItemAttributes{AdditionalDamage: 12})
	bless := fixture.Give(t, store, alice.ID, fixture.JewelOfBless, domain.ItemAttributes{})
	foreign := fixture.Give(t, store, "bob", fixture.JewelOfBless, domain.ItemAttributes{})

	tests := []struct {
		name string
		req  CombineRequest
		want error
	}{
		{"empty", CombineRequest{}, domain.ErrInvalidInput},
		{"duplicate slot", CombineRequest{ItemIDs: []int64{weapon, weapon}}, domain.ErrDuplicateSlot},
		{"unknown item", CombineRequest{ItemIDs: []int64{weapon, 4242}}, domain.ErrNotFound},
		{"not owner", CombineRequest{ItemIDs: []int64{weapon, foreign}}, domain.ErrNotOwner},
		{"unknown recipe hint", CombineRequest{ItemIDs: []int64{weapon, bless}, RecipeHint: 77}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Combine(ctx, alice, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
			assert.True(t, present(store, weapon))
			assert.True(t, present(store, bless))
			assert.True(t, present(store, foreign))
		})
	}
}

func TestCombine_MostSpecificRecipeWins(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)

	broad := domain.Recipe{
		Name:             "broad",
		InputConstraints: []domain.ItemConstraint{{TemplateID: fixture.ShortSword, MaxLevel: 15, MaxAddPoints: 56}},
		SuccessRate:      100,
		OutputCandidates: []domain.ItemConstraint{{TemplateID: fixture.Apple}},
	}
	narrow := domain.Recipe{
		Name:             "narrow",
		InputConstraints: []domain.ItemConstraint{{TemplateID: fixture.ShortSword, MinLevel: 3, MaxLevel: 5}},
		SuccessRate:      100,
		OutputCandidates: []domain.ItemConstraint{{TemplateID: fixture.LongSword, MinLevel: 1, MaxLevel: 1}},
	}
	twin := narrow
	twin.Name = "narrow twin"
	twin.OutputCandidates = []domain.ItemConstraint{{TemplateID: fixture.BronzeArmour}}

	svc, _ := newService(t, store, rng.NewSeeded(1), broad, narrow, twin)

	sword := fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{Level: 4})
	res, err := svc.Combine(ctx, alice, CombineRequest{ItemIDs: []int64{sword}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.RecipeID, "narrowest recipe, earliest among equals")
	assert.Equal(t, fixture.LongSword, res.Item.TemplateID)

	// outside the narrow range only the broad recipe applies
	sword = fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{Level: 9})
	res, err = svc.Combine(ctx, alice, CombineRequest{ItemIDs: []int64{sword}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RecipeID)

	// a hint pins the recipe even when a narrower one matches
	sword = fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{Level: 4})
	res, err = svc.Combine(ctx, alice, CombineRequest{ItemIDs: []int64{sword}, RecipeHint: 3, Recipient: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.RecipeID)
	assert.Equal(t, fixture.BronzeArmour, res.Item.TemplateID)
	assert.Equal(t, "bob", res.Item.Owner)
}

func TestCombine_ExtraItemDoesNotMatch(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(t, store, rng.NewSeeded(1), chaosWeaponRecipe())

	weapon := fixture.Give(t, store, alice.ID, fixture.ChaosWeapon, domain.ItemAttributes{AdditionalDamage: 12})
	bless := fixture.Give(t, store, alice.ID, fixture.JewelOfBless, domain.ItemAttributes{})
	apple := fixture.Give(t, store, alice.ID, fixture.Apple, domain.ItemAttributes{})

	res, err := svc.Combine(ctx, alice, CombineRequest{ItemIDs: []int64{weapon, bless, apple}})
	assert.ErrorIs(t, err, domain.ErrNoRecipeMatch)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
}

func TestAssign_NeedsBijection(t *testing.T) {
	jewel := &domain.Item{TemplateID: fixture.JewelOfBless}
	anyJewel := domain.ItemConstraint{TemplateID: fixture.JewelOfBless, MaxLevel: 15}
	sword := &domain.Item{TemplateID: fixture.ShortSword, Level: 3}
	anySword := domain.ItemConstraint{TemplateID: fixture.ShortSword, MaxLevel: 15}
	lowSword := domain.ItemConstraint{TemplateID: fixture.ShortSword, MaxLevel: 3}
	highSword := &domain.Item{TemplateID: fixture.ShortSword, Level: 9}

	assert.NotNil(t, assign([]*domain.Item{jewel, jewel}, []domain.ItemConstraint{anyJewel, anyJewel}))
	assert.Nil(t, assign([]*domain.Item{jewel, jewel}, []domain.ItemConstraint{anyJewel, anySword}))
	assert.Nil(t, assign([]*domain.Item{jewel}, []domain.ItemConstraint{anyJewel, anyJewel}))

	// the greedy choice puts the low sword in anySword; augmenting must move it
	got := assign([]*domain.Item{sword, highSword}, []domain.ItemConstraint{anySword, lowSword})
	require.NotNil(t, got)
	assert.Equal(t, []int{1, 0}, got)
}

func TestCreateRecipe_Validation(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc, _ := newService(t, store, rng.NewSeeded(1))

	mutate := func(fn func(r *domain.Recipe)) domain.Recipe {
		r := chaosWeaponRecipe()
		fn(&r)
		return r
	}

	tests := []struct {
		name   string
		recipe domain.Recipe
	}{
		{"no inputs", mutate(func(r *domain.Recipe) { r.InputConstraints = nil })},
		{"no outputs", mutate(func(r *domain.Recipe) { r.OutputCandidates = nil })},
		{"rate above 100", mutate(func(r *domain.Recipe) { r.SuccessRate = 101 })},
		{"negative exc rate", mutate(func(r *domain.Recipe) { r.ExcRate = -1 })},
		{"inverted level range", mutate(func(r *domain.Recipe) { r.InputConstraints[0].MinLevel = 9; r.InputConstraints[0].MaxLevel = 2 })},
		{"unknown template", mutate(func(r *domain.Recipe) { r.OutputCandidates[0].TemplateID = 999 })},
		{"level beyond template cap", mutate(func(r *domain.Recipe) {
			r.OutputCandidates[0] = domain.ItemConstraint{TemplateID: fixture.SmallShield, MinLevel: 5, MaxLevel: 6}
		})},
		{"add points on a jewel output", mutate(func(r *domain.Recipe) {
			r.OutputCandidates[0] = domain.ItemConstraint{TemplateID: fixture.JewelOfLife, MinAddPoints: 4, MaxAddPoints: 8}
		})},
		{"box output without box params", mutate(func(r *domain.Recipe) {
			r.OutputCandidates[0] = domain.ItemConstraint{TemplateID: fixture.BoxOfLuck}
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRecipe(ctx, tt.recipe)
			assert.ErrorIs(t, err, domain.ErrInvalidParams)
		})
	}

	created, err := svc.CreateRecipe(ctx, chaosWeaponRecipe())
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	again, err := svc.CreateRecipe(ctx, chaosWeaponRecipe())
	require.NoError(t, err)
	assert.Equal(t, 2, again.ID)
}
