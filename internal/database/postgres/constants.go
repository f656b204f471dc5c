package postgres

// PostgreSQL error codes the store maps onto domain errors
const (
	PgCodeLockNotAvailable     = "55P03"
	PgCodeSerializationFailure = "40001"
	PgCodeDeadlockDetected     = "40P01"
	PgCodeCheckViolation       = "23514"
	PgCodeForeignKeyViolation  = "23503"
)

// ConstraintWalletNonNegative guards balances from going below zero
const ConstraintWalletNonNegative = "wallets_balance_non_negative"

const itemColumns = `item_id, template_id, category, level, additional_damage, additional_defense,
	luck, skill, excellent, owner, box, version, created_at, ground_since`

const templateColumns = `template_id, name, category, tier, max_level, catalyst, in_shop, required_level, base_price`
