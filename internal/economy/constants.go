package economy

// MaxBuyQuantity caps a single purchase
const MaxBuyQuantity = 100

// Formatted error messages
const (
	ErrMsgInvalidQuantityFmt      = "invalid quantity: %d | %w"
	ErrMsgQuantityExceedsMaxFmt   = "quantity %d exceeds maximum allowed (%d) | %w"
	ErrMsgItemNotBuyableFmt       = "template %d (%s) %s | %w"
	ErrMsgInsufficientLevelFmt    = "template %d requires level %d, caller %q is level %d | %w"
	ErrMsgInsufficientFundsFmt    = "buying %d x %s costs %d, balance is %d | %w"
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgGetBalanceFailed        = "failed to get balance: %w"
	ErrMsgPriceOverflowFmt        = "price of template %d at tier %d does not fit in a balance | %w"
	ErrMsgCostOverflowFmt         = "buying %d at %d each overflows | %w"
	ErrMsgBalanceOverflowFmt      = "wallet %q at %d cannot take %d more | %w"
)

// Log messages
const (
	LogMsgBuyCalled    = "Buy called"
	LogMsgItemsBought  = "Items bought"
	LogMsgSellCalled   = "Sell called"
	LogMsgItemSold     = "Item sold"
	LogMsgBuyRejected  = "Buy rejected"
	LogMsgSellRejected = "Sell rejected"
)
