package backpack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/registry"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// ExpireGround destroys items that have lain on the ground since before cutoff.
// Each item goes in its own transaction; an item picked up mid-sweep is left alone.
func (s *service) ExpireGround(ctx context.Context, cutoff time.Time) (int, error) {
	log := logger.FromContext(ctx)

	items, err := s.store.ListGroundItems(ctx, cutoff, GroundSweepBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list ground items: %w", err)
	}

	expired := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		err := s.expireOne(ctx, item.ID, cutoff)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrStaleItemState), errors.Is(err, domain.ErrNotFound):
			log.Debug(LogMsgGroundItemSkipped, LogFieldItemID, item.ID, LogFieldError, err)
		default:
			return expired, err
		}
	}
	return expired, nil
}

func (s *service) expireOne(ctx context.Context, itemID int64, cutoff time.Time) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	reg := registry.New(tx, event.NewRecorder())
	item, err := reg.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Owner != domain.Ground || item.GroundSince == nil || !item.GroundSince.Before(cutoff) {
		return fmt.Errorf("item %d left the ground | %w", itemID, domain.ErrStaleItemState)
	}
	if err := reg.Destroy(ctx, itemID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	reg.Recorder().Flush(ctx, s.publisher)
	return nil
}
