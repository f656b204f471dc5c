package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/osse101/ItemForge_Go/internal/domain"
)

// Configuration reads shared by Store and tx. Odds tables and recipes are stored as
// JSONB documents of their domain types; templates are plain columns so items can
// reference them.

func getTemplate(ctx context.Context, q querier, id int) (*domain.Template, error) {
	row := q.QueryRow(ctx, `SELECT `+templateColumns+` FROM item_templates WHERE template_id = $1`, id)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("template %d", id))
	}
	return t, nil
}

func listTemplates(ctx context.Context, q querier, category domain.Category, tier int) ([]domain.Template, error) {
	rows, err := q.Query(ctx, `SELECT `+templateColumns+` FROM item_templates
		WHERE category = $1 AND tier = $2 ORDER BY template_id`, string(category), tier)
	if err != nil {
		return nil, translate(err, "list templates")
	}
	defer rows.Close()

	out := []domain.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, translate(err, "scan template")
		}
		out = append(out, *t)
	}
	return out, translate(rows.Err(), "list templates")
}

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var (
		t        domain.Template
		category string
		catalyst string
	)
	if err := row.Scan(&t.ID, &t.Name, &category, &t.Tier, &t.MaxLevel, &catalyst,
		&t.InShop, &t.RequiredLevel, &t.BasePrice); err != nil {
		return nil, err
	}
	t.Category = domain.Category(category)
	t.Catalyst = domain.CatalystKind(catalyst)
	return &t, nil
}

func getDropParams(ctx context.Context, q querier, tier int) (*domain.DropParams, error) {
	var (
		raw   []byte
		stamp int64
	)
	err := q.QueryRow(ctx, `SELECT params, block_created FROM drop_params WHERE tier = $1`, tier).Scan(&raw, &stamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("drop params for tier %d | %w", tier, domain.ErrUnknownTier)
	}
	if err != nil {
		return nil, translate(err, fmt.Sprintf("drop params for tier %d", tier))
	}
	var p domain.DropParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode drop params for tier %d: %w", tier, err)
	}
	p.Tier = tier
	p.BlockCreated = stamp
	return &p, nil
}

func getBoxDropParams(ctx context.Context, q querier, tier int) (*domain.BoxDropParams, error) {
	var (
		raw   []byte
		stamp int64
	)
	err := q.QueryRow(ctx, `SELECT params, block_created FROM box_drop_params WHERE tier = $1`, tier).Scan(&raw, &stamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("box drop params for tier %d | %w", tier, domain.ErrUnknownTier)
	}
	if err != nil {
		return nil, translate(err, fmt.Sprintf("box drop params for tier %d", tier))
	}
	var p domain.BoxDropParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode box drop params for tier %d: %w", tier, err)
	}
	p.Tier = tier
	p.BlockCreated = stamp
	return &p, nil
}

func getRecipe(ctx context.Context, q querier, id int) (*domain.Recipe, error) {
	var raw []byte
	if err := q.QueryRow(ctx, `SELECT body FROM recipes WHERE recipe_id = $1`, id).Scan(&raw); err != nil {
		return nil, translate(err, fmt.Sprintf("recipe %d", id))
	}
	return decodeRecipe(id, raw)
}

func listRecipes(ctx context.Context, q querier) ([]domain.Recipe, error) {
	rows, err := q.Query(ctx, `SELECT recipe_id, body FROM recipes ORDER BY recipe_id`)
	if err != nil {
		return nil, translate(err, "list recipes")
	}
	defer rows.Close()

	out := []domain.Recipe{}
	for rows.Next() {
		var (
			id  int
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, translate(err, "scan recipe")
		}
		r, err := decodeRecipe(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, translate(rows.Err(), "list recipes")
}

func decodeRecipe(id int, raw []byte) (*domain.Recipe, error) {
	var r domain.Recipe
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode recipe %d: %w", id, err)
	}
	r.ID = id
	return &r, nil
}

// getUpgradeRules falls back to the defaults until rules are stored
func getUpgradeRules(ctx context.Context, q querier) (*domain.UpgradeRules, error) {
	var raw []byte
	err := q.QueryRow(ctx, `SELECT rules FROM upgrade_rules WHERE singleton`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		r := domain.DefaultUpgradeRules()
		return &r, nil
	}
	if err != nil {
		return nil, translate(err, "upgrade rules")
	}
	var r domain.UpgradeRules
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode upgrade rules: %w", err)
	}
	return &r, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		item      domain.Item
		category  string
		excellent int32
		box       []byte
	)
	if err := row.Scan(&item.ID, &item.TemplateID, &category, &item.Level, &item.AdditionalDamage,
		&item.AdditionalDefense, &item.Luck, &item.Skill, &excellent, &item.Owner, &box,
		&item.Version, &item.CreatedAt, &item.GroundSince); err != nil {
		return nil, err
	}
	item.Category = domain.Category(category)
	item.Excellent = domain.ExcellentFlags(excellent)
	if box != nil {
		var sealed domain.SealedBox
		if err := json.Unmarshal(box, &sealed); err != nil {
			return nil, fmt.Errorf("decode sealed box of item %d: %w", item.ID, err)
		}
		item.Box = &sealed
	}
	return &item, nil
}
