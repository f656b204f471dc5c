// Package economy prices items and runs the shop: buying fresh items and selling owned ones.
package economy

import (
	"context"
	"fmt"
	"math"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/event"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/registry"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

// Quote is the current shop valuation of an item
type Quote struct {
	ItemID    int64  `json:"item_id"`
	Name      string `json:"name"`
	BuyPrice  int64  `json:"buy_price"`
	SellPrice int64  `json:"sell_price"`
}

// BuyResult lists purchased items and what they cost
type BuyResult struct {
	Items   []*domain.Item `json:"items"`
	Cost    int64          `json:"cost"`
	Balance int64          `json:"balance"`
}

// SellResult reports the currency credited for a sale
type SellResult struct {
	Credited int64 `json:"credited"`
	Balance  int64 `json:"balance"`
}

// Service defines the shop interface
type Service interface {
	Buy(ctx context.Context, caller domain.Caller, templateID, quantity int) (*BuyResult, error)
	Sell(ctx context.Context, caller domain.Caller, itemID int64) (*SellResult, error)
	Quote(ctx context.Context, itemID int64) (*Quote, error)
	PriceList() domain.PriceList
}

type service struct {
	store     repository.Store
	templates repository.TemplateSource
	prices    domain.PriceList
	publisher *event.Publisher
}

// NewService creates a new economy service. Quotes resolve templates through templates;
// buying and selling read them inside their transaction.
func NewService(store repository.Store, templates repository.TemplateSource, prices domain.PriceList, publisher *event.Publisher) Service {
	return &service{store: store, templates: templates, prices: prices, publisher: publisher}
}

func (s *service) PriceList() domain.PriceList {
	return s.prices
}

// Buy charges the caller and creates quantity fresh items of the template
func (s *service) Buy(ctx context.Context, caller domain.Caller, templateID, quantity int) (*BuyResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgBuyCalled, "caller", caller.ID, "template_id", templateID, "quantity", quantity)

	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	reg := registry.New(tx, event.NewRecorder())
	tmpl, err := reg.Template(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if err := checkBuyEligibility(caller, tmpl); err != nil {
		log.Warn(LogMsgBuyRejected, "caller", caller.ID, "template_id", templateID, "error", err)
		return nil, err
	}

	unit, err := Price(&s.prices, freshItem(tmpl), tmpl)
	if err != nil {
		log.Warn(LogMsgBuyRejected, "caller", caller.ID, "template_id", templateID, "error", err)
		return nil, err
	}
	cost, err := totalCost(unit, quantity)
	if err != nil {
		log.Warn(LogMsgBuyRejected, "caller", caller.ID, "template_id", templateID, "error", err)
		return nil, err
	}
	balance, err := tx.GetBalanceForUpdate(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetBalanceFailed, err)
	}
	if balance < cost {
		log.Warn(LogMsgBuyRejected, "caller", caller.ID, "cost", cost, "balance", balance)
		return nil, fmt.Errorf(ErrMsgInsufficientFundsFmt, quantity, tmpl.Name, cost, balance, domain.ErrInsufficientFunds)
	}

	newBalance, err := tx.AdjustBalance(ctx, caller.ID, -cost)
	if err != nil {
		return nil, err
	}
	result := &BuyResult{Cost: cost, Balance: newBalance, Items: make([]*domain.Item, 0, quantity)}
	ids := make([]int64, 0, quantity)
	for i := 0; i < quantity; i++ {
		item, err := reg.Create(ctx, tmpl.ID, domain.ItemAttributes{}, caller.ID)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, item)
		ids = append(ids, item.ID)
	}

	reg.Recorder().Record(event.NewShopEvent(event.ItemBought, event.ShopPayloadV1{
		CallerID: caller.ID, TemplateID: tmpl.ID, Items: ids, Amount: cost,
	}))
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}
	reg.Recorder().Flush(ctx, s.publisher)

	log.Info(LogMsgItemsBought, "caller", caller.ID, "template_id", templateID, "quantity", quantity, "cost", cost)
	return result, nil
}

// Sell destroys an owned item and credits its sell price
func (s *service) Sell(ctx context.Context, caller domain.Caller, itemID int64) (*SellResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgSellCalled, "caller", caller.ID, "item_id", itemID)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	reg := registry.New(tx, event.NewRecorder())
	item, err := reg.GetOwned(ctx, itemID, caller.ID)
	if err != nil {
		log.Warn(LogMsgSellRejected, "caller", caller.ID, "item_id", itemID, "error", err)
		return nil, err
	}
	tmpl, err := reg.Template(ctx, item.TemplateID)
	if err != nil {
		return nil, err
	}
	credit, err := SellPrice(&s.prices, item, tmpl)
	if err != nil {
		log.Warn(LogMsgSellRejected, "caller", caller.ID, "item_id", itemID, "error", err)
		return nil, err
	}
	balance, err := tx.GetBalanceForUpdate(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetBalanceFailed, err)
	}
	if credit > math.MaxInt64-balance {
		return nil, fmt.Errorf(ErrMsgBalanceOverflowFmt, caller.ID, balance, credit, domain.ErrInvalidInput)
	}

	if err := reg.Destroy(ctx, itemID); err != nil {
		return nil, err
	}
	balance, err = tx.AdjustBalance(ctx, caller.ID, credit)
	if err != nil {
		return nil, err
	}

	reg.Recorder().Record(event.NewShopEvent(event.ItemSold, event.ShopPayloadV1{
		CallerID: caller.ID, TemplateID: item.TemplateID, Items: []int64{itemID}, Amount: credit,
	}))
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}
	reg.Recorder().Flush(ctx, s.publisher)

	log.Info(LogMsgItemSold, "caller", caller.ID, "item_id", itemID, "credited", credit)
	return &SellResult{Credited: credit, Balance: balance}, nil
}

// Quote values an item without changing anything
func (s *service) Quote(ctx context.Context, itemID int64) (*Quote, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.templates.Template(ctx, item.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template %d: %w", item.TemplateID, err)
	}
	buy, err := Price(&s.prices, item, tmpl)
	if err != nil {
		return nil, err
	}
	sell, err := SellPrice(&s.prices, item, tmpl)
	if err != nil {
		return nil, err
	}
	return &Quote{
		ItemID:    itemID,
		Name:      item.DisplayName(tmpl.Name),
		BuyPrice:  buy,
		SellPrice: sell,
	}, nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf(ErrMsgInvalidQuantityFmt, quantity, domain.ErrInvalidInput)
	}
	if quantity > MaxBuyQuantity {
		return fmt.Errorf(ErrMsgQuantityExceedsMaxFmt, quantity, MaxBuyQuantity, domain.ErrInvalidInput)
	}
	return nil
}

func checkBuyEligibility(caller domain.Caller, tmpl *domain.Template) error {
	if !tmpl.InShop {
		return fmt.Errorf(ErrMsgItemNotBuyableFmt, tmpl.ID, tmpl.Name, domain.ErrMsgNotBuyable, domain.ErrNotBuyable)
	}
	if caller.Level < tmpl.RequiredLevel {
		return fmt.Errorf(ErrMsgInsufficientLevelFmt, tmpl.ID, tmpl.RequiredLevel, caller.ID, caller.Level, domain.ErrInsufficientLevel)
	}
	return nil
}
