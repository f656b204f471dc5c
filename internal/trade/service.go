package trade

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/registry"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// Service defines the trade interface
type Service interface {
	Open(ctx context.Context, caller domain.Caller, partner string) (*Trade, error)
	Get(ctx context.Context, caller domain.Caller, tradeID string) (*Trade, error)
	SetOffer(ctx context.Context, caller domain.Caller, tradeID string, offer Offer) (*Trade, error)
	Approve(ctx context.Context, caller domain.Caller, tradeID string) (*Trade, error)
	Cancel(ctx context.Context, caller domain.Caller, tradeID string) (*Trade, error)
}

// Config bounds the in-memory session table. Sessions idle longer than TTL are forgotten.
type Config struct {
	Size int
	TTL  time.Duration
}

type service struct {
	store     repository.Store
	publisher *event.Publisher
	validate  *validator.Validate
	now       func() time.Time

	mu       sync.Mutex
	sessions *expirable.LRU[string, *Trade]
	active   map[string]string // owner -> trade id
}

// NewService creates a new trade service
func NewService(store repository.Store, publisher *event.Publisher, cfg Config) Service {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSessionLimit
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	return &service{
		store:     store,
		publisher: publisher,
		validate:  validator.New(),
		now:       time.Now,
		sessions:  expirable.NewLRU[string, *Trade](cfg.Size, nil, cfg.TTL),
		active:    make(map[string]string),
	}
}

// Open starts a trade between caller and partner. Each owner takes part in at most one
// open trade at a time.
func (s *service) Open(ctx context.Context, caller domain.Caller, partner string) (*Trade, error) {
	if partner == domain.Ground || partner == caller.ID {
		return nil, fmt.Errorf(ErrMsgInvalidPartnerFmt, partner, domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, owner := range []string{caller.ID, partner} {
		if id, busy := s.openTradeOf(owner); busy {
			return nil, fmt.Errorf(ErrMsgAlreadyTradingFmt, owner, id, domain.ErrInvalidInput)
		}
	}

	now := s.now()
	t := &Trade{
		ID:        uuid.NewString(),
		Initiator: Side{Owner: caller.ID},
		Partner:   Side{Owner: partner},
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions.Add(t.ID, t)
	s.active[caller.ID] = t.ID
	s.active[partner] = t.ID

	logger.FromContext(ctx).Info(LogMsgTradeOpened, "trade_id", t.ID, "initiator", caller.ID, "partner", partner)
	return t.clone(), nil
}

func (s *service) Get(_ context.Context, caller domain.Caller, tradeID string) (*Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _, err := s.lookup(caller.ID, tradeID)
	if err != nil {
		return nil, err
	}
	return t.clone(), nil
}

// SetOffer replaces the caller's offer. Any change withdraws both approvals.
func (s *service) SetOffer(ctx context.Context, caller domain.Caller, tradeID string, offer Offer) (*Trade, error) {
	if err := s.validate.Struct(offer); err != nil {
		return nil, fmt.Errorf(ErrMsgOfferFmt, err, domain.ErrInvalidInput)
	}
	if err := s.checkOffer(ctx, caller.ID, offer); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, side, err := s.lookupOpen(caller.ID, tradeID)
	if err != nil {
		return nil, err
	}
	side.Offer = Offer{ItemIDs: slices.Clone(offer.ItemIDs), Gold: offer.Gold}
	t.resetApprovals()
	s.touch(t)

	logger.FromContext(ctx).Info(LogMsgOfferSet, "trade_id", tradeID, "caller", caller.ID, "items", offer.ItemIDs, "gold", offer.Gold)
	return t.clone(), nil
}

// Approve marks the caller's side as accepted. The second approval executes the trade.
func (s *service) Approve(ctx context.Context, caller domain.Caller, tradeID string) (*Trade, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	t, side, err := s.lookupOpen(caller.ID, tradeID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	side.Approved = true
	s.touch(t)
	log.Info(LogMsgTradeApproved, "trade_id", tradeID, "caller", caller.ID)
	if !t.Initiator.Approved || !t.Partner.Approved {
		defer s.mu.Unlock()
		return t.clone(), nil
	}
	t.Status = StatusExecuting
	snapshot := t.clone()
	s.mu.Unlock()

	execErr := s.execute(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if execErr != nil {
		t.Status = StatusOpen
		t.resetApprovals()
		s.touch(t)
		log.Warn(LogMsgTradeFailed, "trade_id", tradeID, "error", execErr)
		return nil, execErr
	}
	t.Status = StatusExecuted
	s.touch(t)
	s.release(t)
	log.Info(LogMsgTradeExecuted, "trade_id", tradeID,
		"initiator", t.Initiator.Owner, "partner", t.Partner.Owner)
	return t.clone(), nil
}

// Cancel closes an open trade without moving anything
func (s *service) Cancel(ctx context.Context, caller domain.Caller, tradeID string) (*Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _, err := s.lookupOpen(caller.ID, tradeID)
	if err != nil {
		return nil, err
	}
	t.Status = StatusCancelled
	s.touch(t)
	s.release(t)

	logger.FromContext(ctx).Info(LogMsgTradeCancelled, "trade_id", tradeID, "caller", caller.ID)
	return t.clone(), nil
}

// execute swaps both offers in one transaction. Ownership and balances are checked again
// under the transaction's locks, so a stale offer fails without moving anything.
func (s *service) execute(ctx context.Context, t *Trade) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf(ErrMsgBeginTransaction, err)
	}
	defer repository.SafeRollback(ctx, tx)

	// wallets are locked in a stable order so two trades cannot deadlock
	owners := []string{t.Initiator.Owner, t.Partner.Owner}
	slices.Sort(owners)
	balances := make(map[string]int64, 2)
	for _, owner := range owners {
		bal, err := tx.GetBalanceForUpdate(ctx, owner)
		if err != nil {
			return fmt.Errorf(ErrMsgLockWalletFailedFmt, owner, err)
		}
		balances[owner] = bal
	}

	reg := registry.New(tx, event.NewRecorder())
	for _, pair := range [][2]*Side{{&t.Initiator, &t.Partner}, {&t.Partner, &t.Initiator}} {
		giver, taker := pair[0], pair[1]
		reg.ActingAs(giver.Owner)
		for _, id := range giver.Offer.ItemIDs {
			if _, err := reg.GetOwned(ctx, id, giver.Owner); err != nil {
				return err
			}
			if _, err := reg.Mutate(ctx, id, domain.ItemPatch{Owner: domain.StringPtr(taker.Owner)}); err != nil {
				return err
			}
		}
	}

	net := map[string]int64{
		t.Initiator.Owner: t.Partner.Offer.Gold - t.Initiator.Offer.Gold,
		t.Partner.Owner:   t.Initiator.Offer.Gold - t.Partner.Offer.Gold,
	}
	for _, owner := range owners {
		delta := net[owner]
		if delta == 0 {
			continue
		}
		if delta > 0 && balances[owner] > math.MaxInt64-delta {
			return fmt.Errorf(ErrMsgBalanceOverflowFmt, owner, balances[owner], delta, domain.ErrInvalidInput)
		}
		if _, err := tx.AdjustBalance(ctx, owner, delta); err != nil {
			return err
		}
	}

	reg.Recorder().Record(event.NewTradeExecutedEvent(event.TradeExecutedPayloadV1{
		TradeID:   t.ID,
		Initiator: event.TradeSidePayloadV1{Owner: t.Initiator.Owner, Items: t.Initiator.Offer.ItemIDs, Gold: t.Initiator.Offer.Gold},
		Partner:   event.TradeSidePayloadV1{Owner: t.Partner.Owner, Items: t.Partner.Offer.ItemIDs, Gold: t.Partner.Offer.Gold},
	}))
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(ErrMsgCommitTransaction, err)
	}
	reg.Recorder().Flush(ctx, s.publisher)
	return nil
}

// checkOffer rejects offers the caller cannot currently cover. execute checks again.
func (s *service) checkOffer(ctx context.Context, owner string, offer Offer) error {
	for _, id := range offer.ItemIDs {
		item, err := s.store.GetItem(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get item %d: %w", id, err)
		}
		if item.Owner != owner {
			return fmt.Errorf(ErrMsgOfferNotOwnedFmt, id, item.Owner, owner, domain.ErrNotOwner)
		}
	}
	if offer.Gold == 0 {
		return nil
	}
	balance, err := s.store.GetBalance(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	if balance < offer.Gold {
		return fmt.Errorf(ErrMsgOfferGoldFmt, offer.Gold, balance, domain.ErrInsufficientFunds)
	}
	return nil
}

// lookup finds a trade the caller takes part in. Callers hold s.mu.
func (s *service) lookup(owner, tradeID string) (*Trade, *Side, error) {
	t, ok := s.sessions.Get(tradeID)
	if !ok {
		return nil, nil, fmt.Errorf(ErrMsgTradeNotFoundFmt, tradeID, domain.ErrNotFound)
	}
	side := t.side(owner)
	if side == nil {
		return nil, nil, fmt.Errorf(ErrMsgNotParticipantFmt, owner, tradeID, domain.ErrNotOwner)
	}
	return t, side, nil
}

// lookupOpen is lookup restricted to trades that still accept changes
func (s *service) lookupOpen(owner, tradeID string) (*Trade, *Side, error) {
	t, side, err := s.lookup(owner, tradeID)
	if err != nil {
		return nil, nil, err
	}
	if t.Status != StatusOpen {
		return nil, nil, fmt.Errorf(ErrMsgTradeClosedFmt, tradeID, t.Status, domain.ErrStaleItemState)
	}
	return t, side, nil
}

// openTradeOf reports the live trade owner is part of. Expired sessions do not count.
func (s *service) openTradeOf(owner string) (string, bool) {
	id, ok := s.active[owner]
	if !ok {
		return "", false
	}
	t, live := s.sessions.Get(id)
	if !live || t.Status == StatusExecuted || t.Status == StatusCancelled {
		delete(s.active, owner)
		return "", false
	}
	return id, true
}

// touch stamps the change and restarts the session's idle timer
func (s *service) touch(t *Trade) {
	t.UpdatedAt = s.now()
	s.sessions.Add(t.ID, t)
}

func (s *service) release(t *Trade) {
	for _, owner := range []string{t.Initiator.Owner, t.Partner.Owner} {
		if s.active[owner] == t.ID {
			delete(s.active, owner)
		}
	}
}
