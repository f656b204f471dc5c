package backpack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/testing/fixture"
)

var alice = domain.Caller{ID: "alice", Level: 10}

func TestTransferAndInventory(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	bus := event.NewMemoryBus()
	svc := NewService(store, catalog.NewService(store, nil, catalog.DefaultCacheConfig()), event.NewPublisher(bus, nil))

	var mutated int
	bus.Subscribe(event.ItemMutated, func(context.Context, event.Event) error { mutated++; return nil })

	sword := fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{Level: 2})
	fixture.Give(t, store, alice.ID, fixture.Apple, domain.ItemAttributes{})
	fixture.Fund(t, store, alice.ID, 50)

	inv, err := svc.Inventory(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, inv.Items, 2)
	assert.Equal(t, int64(50), inv.Balance)

	moved, err := svc.Transfer(ctx, alice, sword, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", moved.Owner)
	assert.Equal(t, 2, moved.Level)
	assert.Equal(t, 1, mutated)

	inv, err = svc.Inventory(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, sword, inv.Items[0].ID)
	assert.Equal(t, "short sword", inv.Items[0].Name)

	_, err = svc.Transfer(ctx, alice, sword, "carol")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = svc.Transfer(ctx, domain.Caller{ID: "bob"}, sword, "bob")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Transfer(ctx, domain.Caller{ID: "bob"}, sword, domain.Ground)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Inventory(ctx, domain.Ground)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDiscardAndPickup(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc := NewService(store, catalog.NewService(store, nil, catalog.DefaultCacheConfig()), nil)

	apple := fixture.Give(t, store, alice.ID, fixture.Apple, domain.ItemAttributes{})

	_, err := svc.Pickup(ctx, domain.Caller{ID: "bob"}, apple)
	assert.ErrorIs(t, err, domain.ErrStaleItemState, "not on the ground yet")

	dropped, err := svc.Discard(ctx, alice, apple)
	require.NoError(t, err)
	assert.Equal(t, domain.Ground, dropped.Owner)

	got, err := svc.Pickup(ctx, domain.Caller{ID: "bob"}, apple)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Owner)

	_, err = svc.Pickup(ctx, alice, apple)
	assert.ErrorIs(t, err, domain.ErrStaleItemState)
}

func TestPickup_RaceHasOneWinner(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc := NewService(store, catalog.NewService(store, nil, catalog.DefaultCacheConfig()), nil)

	for round := 0; round < 20; round++ {
		id := fixture.Give(t, store, domain.Ground, fixture.Apple, domain.ItemAttributes{})

		const racers = 8
		var wg sync.WaitGroup
		errs := make([]error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Pickup(ctx, domain.Caller{ID: fmt.Sprintf("racer-%d", i)}, id)
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
				continue
			}
			assert.True(t, errors.Is(err, domain.ErrStaleItemState), "loser error: %v", err)
		}
		assert.Equal(t, 1, winners, "round %d", round)

		item, err := store.GetItem(ctx, id)
		require.NoError(t, err)
		assert.NotEqual(t, domain.Ground, item.Owner)
	}
}

func TestItem(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc := NewService(store, catalog.NewService(store, nil, catalog.DefaultCacheConfig()), nil)

	sword := fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{Level: 3})

	item, err := svc.Item(ctx, sword)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Level)
	assert.Equal(t, alice.ID, item.Owner)

	_, err = svc.Item(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPickup_MutationCarriesPickerAsActor(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	bus := event.NewMemoryBus()
	svc := NewService(store, catalog.NewService(store, nil, catalog.DefaultCacheConfig()), event.NewPublisher(bus, nil))

	var actors []string
	bus.Subscribe(event.ItemMutated, func(_ context.Context, evt event.Event) error {
		actors = append(actors, evt.Payload.(event.ItemMutatedPayloadV1).ActorID())
		return nil
	})

	apple := fixture.Give(t, store, alice.ID, fixture.Apple, domain.ItemAttributes{})
	_, err := svc.Discard(ctx, alice, apple)
	require.NoError(t, err)
	_, err = svc.Pickup(ctx, domain.Caller{ID: "bob"}, apple)
	require.NoError(t, err)

	assert.Equal(t, []string{alice.ID, "bob"}, actors)
}

func TestDiscard_StampsGroundTime(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc := NewService(store, catalog.NewService(store, nil, catalog.DefaultCacheConfig()), nil)

	apple := fixture.Give(t, store, alice.ID, fixture.Apple, domain.ItemAttributes{})
	before := time.Now()
	dropped, err := svc.Discard(ctx, alice, apple)
	require.NoError(t, err)
	require.NotNil(t, dropped.GroundSince)
	assert.False(t, dropped.GroundSince.Before(before))

	got, err := svc.Pickup(ctx, domain.Caller{ID: "bob"}, apple)
	require.NoError(t, err)
	assert.Nil(t, got.GroundSince)
}

func TestExpireGround(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	bus := event.NewMemoryBus()
	svc := NewService(store, catalog.NewService(store, nil, catalog.DefaultCacheConfig()), event.NewPublisher(bus, nil))

	var destroyed []int64
	bus.Subscribe(event.ItemDestroyed, func(_ context.Context, evt event.Event) error {
		destroyed = append(destroyed, evt.Payload.(event.ItemRefs).ItemIDs()...)
		return nil
	})

	apple := fixture.Give(t, store, alice.ID, fixture.Apple, domain.ItemAttributes{})
	_, err := svc.Discard(ctx, alice, apple)
	require.NoError(t, err)
	sword := fixture.Give(t, store, alice.ID, fixture.ShortSword, domain.ItemAttributes{})

	n, err := svc.ExpireGround(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n, "dropped too recently")

	n, err = svc.ExpireGround(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{apple}, destroyed)

	_, err = store.GetItem(ctx, apple)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetItem(ctx, sword)
	assert.NoError(t, err)

	_, err = svc.Pickup(ctx, alice, apple)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGroundSweepJob(t *testing.T) {
	ctx := context.Background()
	store := fixture.NewStore(t)
	svc := NewService(store, catalog.NewService(store, nil, catalog.DefaultCacheConfig()), nil)

	apple := fixture.Give(t, store, alice.ID, fixture.Apple, domain.ItemAttributes{})
	_, err := svc.Discard(ctx, alice, apple)
	require.NoError(t, err)

	job := NewGroundSweepJob(svc, time.Minute)
	job.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	require.NoError(t, job.Process(ctx))
	assert.Equal(t, int64(1), job.TotalExpired())

	require.NoError(t, job.Process(ctx))
	assert.Equal(t, int64(1), job.TotalExpired(), "nothing left to expire")
}
