package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/repository"
)

type tx struct {
	tx pgx.Tx
}

var _ repository.Tx = (*tx)(nil)

func (t *tx) InsertItem(ctx context.Context, item *domain.Item) (int64, error) {
	box, err := encodeBox(item.Box)
	if err != nil {
		return 0, err
	}
	err = t.tx.QueryRow(ctx, `INSERT INTO items
		(template_id, category, level, additional_damage, additional_defense, luck, skill, excellent, owner, box, ground_since)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CASE WHEN $9 = '' THEN NOW() END)
		RETURNING item_id, version, created_at, ground_since`,
		item.TemplateID, string(item.Category), item.Level, item.AdditionalDamage, item.AdditionalDefense,
		item.Luck, item.Skill, int32(item.Excellent), item.Owner, box,
	).Scan(&item.ID, &item.Version, &item.CreatedAt, &item.GroundSince)
	if err != nil {
		return 0, translate(err, fmt.Sprintf("insert item of template %d", item.TemplateID))
	}
	return item.ID, nil
}

func (t *tx) GetItemForUpdate(ctx context.Context, id int64) (*domain.Item, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE item_id = $1 FOR UPDATE NOWAIT`, id)
	item, err := scanItem(row)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("item %d", id))
	}
	return item, nil
}

func (t *tx) UpdateItem(ctx context.Context, item *domain.Item, expectedVersion int64) error {
	err := t.tx.QueryRow(ctx, `UPDATE items
		SET level = $2, additional_damage = $3, additional_defense = $4, owner = $5, version = version + 1,
			ground_since = CASE WHEN $5 = '' THEN COALESCE(ground_since, NOW()) END
		WHERE item_id = $1 AND version = $6
		RETURNING ground_since`,
		item.ID, item.Level, item.AdditionalDamage, item.AdditionalDefense, item.Owner, expectedVersion,
	).Scan(&item.GroundSince)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := t.GetItemForUpdate(ctx, item.ID); err != nil {
			return err
		}
		return fmt.Errorf("item %d changed since version %d | %w", item.ID, expectedVersion, domain.ErrStaleItemState)
	}
	if err != nil {
		return translate(err, fmt.Sprintf("update item %d", item.ID))
	}
	item.Version = expectedVersion + 1
	return nil
}

func (t *tx) DeleteItem(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM items WHERE item_id = $1`, id)
	if err != nil {
		return translate(err, fmt.Sprintf("delete item %d", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d | %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetBalanceForUpdate creates the wallet row when missing so there is a row to lock
func (t *tx) GetBalanceForUpdate(ctx context.Context, owner string) (int64, error) {
	if _, err := t.tx.Exec(ctx, `INSERT INTO wallets (owner, balance) VALUES ($1, 0) ON CONFLICT (owner) DO NOTHING`, owner); err != nil {
		return 0, translate(err, fmt.Sprintf("wallet %q", owner))
	}
	var balance int64
	if err := t.tx.QueryRow(ctx, `SELECT balance FROM wallets WHERE owner = $1 FOR UPDATE`, owner).Scan(&balance); err != nil {
		return 0, translate(err, fmt.Sprintf("wallet %q", owner))
	}
	return balance, nil
}

func (t *tx) AdjustBalance(ctx context.Context, owner string, delta int64) (int64, error) {
	var balance int64
	err := t.tx.QueryRow(ctx, `INSERT INTO wallets (owner, balance) VALUES ($1, $2)
		ON CONFLICT (owner) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance`, owner, delta).Scan(&balance)
	if err != nil {
		return 0, translate(err, fmt.Sprintf("wallet %q adjust by %d", owner, delta))
	}
	return balance, nil
}

func (t *tx) GetTemplate(ctx context.Context, id int) (*domain.Template, error) {
	return getTemplate(ctx, t.tx, id)
}

func (t *tx) ListTemplates(ctx context.Context, category domain.Category, tier int) ([]domain.Template, error) {
	return listTemplates(ctx, t.tx, category, tier)
}

func (t *tx) GetDropParams(ctx context.Context, tier int) (*domain.DropParams, error) {
	return getDropParams(ctx, t.tx, tier)
}

func (t *tx) GetBoxDropParams(ctx context.Context, tier int) (*domain.BoxDropParams, error) {
	return getBoxDropParams(ctx, t.tx, tier)
}

func (t *tx) GetRecipe(ctx context.Context, id int) (*domain.Recipe, error) {
	return getRecipe(ctx, t.tx, id)
}

func (t *tx) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return listRecipes(ctx, t.tx)
}

func (t *tx) GetUpgradeRules(ctx context.Context) (*domain.UpgradeRules, error) {
	return getUpgradeRules(ctx, t.tx)
}

func (t *tx) UpsertTemplate(ctx context.Context, tmpl domain.Template) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO item_templates (`+templateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (template_id) DO UPDATE SET
			name = EXCLUDED.name, category = EXCLUDED.category, tier = EXCLUDED.tier,
			max_level = EXCLUDED.max_level, catalyst = EXCLUDED.catalyst, in_shop = EXCLUDED.in_shop,
			required_level = EXCLUDED.required_level, base_price = EXCLUDED.base_price`,
		tmpl.ID, tmpl.Name, string(tmpl.Category), tmpl.Tier, tmpl.MaxLevel, string(tmpl.Catalyst),
		tmpl.InShop, tmpl.RequiredLevel, tmpl.BasePrice)
	return translate(err, fmt.Sprintf("upsert template %d", tmpl.ID))
}

func (t *tx) PutDropParams(ctx context.Context, p domain.DropParams) (int64, error) {
	return t.putParams(ctx, "drop_params", p.Tier, func(stamp int64) interface{} {
		p.BlockCreated = stamp
		return p
	})
}

func (t *tx) PutBoxDropParams(ctx context.Context, p domain.BoxDropParams) (int64, error) {
	return t.putParams(ctx, "box_drop_params", p.Tier, func(stamp int64) interface{} {
		p.BlockCreated = stamp
		return p
	})
}

// putParams stamps and replaces one odds table row. table is one of two fixed names.
func (t *tx) putParams(ctx context.Context, table string, tier int, stamped func(int64) interface{}) (int64, error) {
	var stamp int64
	if err := t.tx.QueryRow(ctx, `SELECT nextval('config_revision_seq')`).Scan(&stamp); err != nil {
		return 0, translate(err, "config revision")
	}
	body, err := json.Marshal(stamped(stamp))
	if err != nil {
		return 0, fmt.Errorf("encode %s for tier %d: %w", table, tier, err)
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO `+table+` (tier, params, block_created) VALUES ($1, $2, $3)
		ON CONFLICT (tier) DO UPDATE SET params = EXCLUDED.params, block_created = EXCLUDED.block_created`,
		tier, body, stamp)
	if err != nil {
		return 0, translate(err, fmt.Sprintf("%s for tier %d", table, tier))
	}
	return stamp, nil
}

func (t *tx) InsertRecipe(ctx context.Context, r domain.Recipe) (int, error) {
	r.ID = 0
	body, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("encode recipe %q: %w", r.Name, err)
	}
	var id int
	if err := t.tx.QueryRow(ctx, `INSERT INTO recipes (name, body) VALUES ($1, $2) RETURNING recipe_id`, r.Name, body).Scan(&id); err != nil {
		return 0, translate(err, fmt.Sprintf("insert recipe %q", r.Name))
	}
	return id, nil
}

func (t *tx) PutUpgradeRules(ctx context.Context, r domain.UpgradeRules) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode upgrade rules: %w", err)
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO upgrade_rules (singleton, rules) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET rules = EXCLUDED.rules`, body)
	return translate(err, "upgrade rules")
}

func (t *tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return repository.ErrTxClosed
		}
		return translate(err, "commit")
	}
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return repository.ErrTxClosed
		}
		return err
	}
	return nil
}

func encodeBox(box *domain.SealedBox) ([]byte, error) {
	if box == nil {
		return nil, nil
	}
	data, err := json.Marshal(box)
	if err != nil {
		return nil, fmt.Errorf("encode sealed box: %w", err)
	}
	return data, nil
}
