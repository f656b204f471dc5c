package trade

import "time"

// Session defaults
const (
	DefaultSessionLimit = 1024
	DefaultSessionTTL   = 10 * time.Minute
	MaxOfferItems       = 32
)

// Formatted error messages
const (
	ErrMsgTradeNotFoundFmt    = "trade %s | %w"
	ErrMsgNotParticipantFmt   = "caller %q is not part of trade %s | %w"
	ErrMsgInvalidPartnerFmt   = "cannot trade with %q | %w"
	ErrMsgAlreadyTradingFmt   = "%q already has open trade %s | %w"
	ErrMsgTradeClosedFmt      = "trade %s is %s | %w"
	ErrMsgOfferFmt            = "offer: %v | %w"
	ErrMsgOfferNotOwnedFmt    = "item %d owned by %q, caller %q | %w"
	ErrMsgOfferGoldFmt        = "offering %d gold, balance is %d | %w"
	ErrMsgBalanceOverflowFmt  = "wallet %q at %d cannot take %d more | %w"
	ErrMsgBeginTransaction    = "failed to begin transaction: %w"
	ErrMsgCommitTransaction   = "failed to commit transaction: %w"
	ErrMsgLockWalletFailedFmt = "failed to lock wallet %q: %w"
)

// Log messages
const (
	LogMsgTradeOpened    = "Trade opened"
	LogMsgOfferSet       = "Trade offer set"
	LogMsgTradeApproved  = "Trade approved"
	LogMsgTradeExecuted  = "Trade executed"
	LogMsgTradeFailed    = "Trade execution failed, approvals reset"
	LogMsgTradeCancelled = "Trade cancelled"
)
