package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/repository"
	"github.com/osse101/ItemForge_Go/internal/testing/fixture"
)

func begin(t *testing.T, store repository.Store) (repository.Tx, *Registry) {
	t.Helper()
	tx, err := store.BeginTx(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { repository.SafeRollback(context.Background(), tx) })
	return tx, New(tx, event.NewRecorder())
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)

	t.Run("unknown template", func(t *testing.T) {
		_, reg := begin(t, store)
		_, err := reg.Create(ctx, 999, domain.ItemAttributes{}, "alice")
		assert.ErrorIs(t, err, domain.ErrInvalidTemplate)
	})

	t.Run("stores item and records event", func(t *testing.T) {
		tx, reg := begin(t, store)
		item, err := reg.Create(ctx, fixture.ShortSword, domain.ItemAttributes{
			Level: 2, AdditionalDamage: 4, Luck: true, Skill: true, Excellent: domain.ExcAttackSpeed,
		}, "alice")
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		got, err := store.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryWeapon, got.Category)
		assert.True(t, got.IsExcellent())
		assert.Equal(t, "alice", got.Owner)

		events := reg.Recorder().Events()
		require.Len(t, events, 1)
		assert.Equal(t, event.ItemCreated, events[0].Type)
	})

	tests := []struct {
		name     string
		template int
		attrs    domain.ItemAttributes
	}{
		{"level above template cap", fixture.SmallShield, domain.ItemAttributes{Level: 3}},
		{"negative level", fixture.ShortSword, domain.ItemAttributes{Level: -1}},
		{"damage pool above max", fixture.ShortSword, domain.ItemAttributes{AdditionalDamage: 32}},
		{"unknown excellent bit", fixture.ShortSword, domain.ItemAttributes{Excellent: 1 << 14}},
		{"skill on armour", fixture.LeatherArmour, domain.ItemAttributes{Skill: true}},
		{"luck on jewel", fixture.JewelOfBless, domain.ItemAttributes{Luck: true}},
		{"sealed weapon", fixture.ShortSword, domain.ItemAttributes{Box: &domain.SealedBox{Tier: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reg := begin(t, store)
			_, err := reg.Create(ctx, tt.template, tt.attrs, "alice")
			assert.ErrorIs(t, err, domain.ErrInvariantViolation)
		})
	}
}

func TestMutate(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	id := fixture.Give(t, store, "alice", fixture.ShortSword, domain.ItemAttributes{Level: 1, Excellent: domain.ExcMaxLife})

	t.Run("changes mutable fields", func(t *testing.T) {
		tx, reg := begin(t, store)
		item, err := reg.Mutate(ctx, id, domain.ItemPatch{
			Level:            domain.IntPtr(2),
			AdditionalDamage: domain.IntPtr(8),
			Owner:            domain.StringPtr("bob"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, item.Level)
		require.NoError(t, tx.Commit(ctx))

		events := reg.Recorder().Events()
		require.Len(t, events, 1)
		payload := events[0].Payload.(event.ItemMutatedPayloadV1)
		assert.Equal(t, 1, payload.Before.Level)
		assert.Equal(t, "alice", payload.Before.Owner)
		assert.Equal(t, "bob", payload.After.Owner)
	})

	t.Run("rejects immutable changes", func(t *testing.T) {
		_, reg := begin(t, store)
		_, err := reg.Mutate(ctx, id, domain.ItemPatch{TemplateID: domain.IntPtr(fixture.LongSword)})
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)

		flags := domain.ExcMaxLife | domain.ExcMaxMana
		_, err = reg.Mutate(ctx, id, domain.ItemPatch{Excellent: &flags})
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	})

	t.Run("same immutable value is not a change", func(t *testing.T) {
		_, reg := begin(t, store)
		flags := domain.ExcMaxLife
		_, err := reg.Mutate(ctx, id, domain.ItemPatch{Excellent: &flags, TemplateID: domain.IntPtr(fixture.ShortSword)})
		assert.NoError(t, err)
	})

	t.Run("rejects out of range", func(t *testing.T) {
		_, reg := begin(t, store)
		_, err := reg.Mutate(ctx, id, domain.ItemPatch{AdditionalDefense: domain.IntPtr(29)})
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)
		_, err = reg.Mutate(ctx, id, domain.ItemPatch{Level: domain.IntPtr(16)})
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	})
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	id := fixture.Give(t, store, "alice", fixture.Apple, domain.ItemAttributes{})

	tx, reg := begin(t, store)
	require.NoError(t, reg.Destroy(ctx, id))
	require.NoError(t, tx.Commit(ctx))

	_, err := store.GetItem(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tx2, reg2 := begin(t, store)
	assert.ErrorIs(t, reg2.Destroy(ctx, id), domain.ErrNotFound)
	_, err = reg2.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, tx2.Rollback(ctx))
}

func TestGetOwned(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	id := fixture.Give(t, store, "alice", fixture.Apple, domain.ItemAttributes{})

	_, reg := begin(t, store)
	_, err := reg.GetOwned(ctx, id, "mallory")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Contains(t, err.Error(), "mallory")
}
