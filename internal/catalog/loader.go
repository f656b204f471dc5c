package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/osse101/ItemForge_Go/internal/domain"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/validation"
)

// ErrInvalidConfig marks a catalog file that parses but is inconsistent
var ErrInvalidConfig = errors.New("invalid catalog configuration")

// File is the JSON catalog seeded at startup
type File struct {
	Version       string                 `json:"version"`
	Description   string                 `json:"description,omitempty"`
	Templates     []domain.Template      `json:"templates"`
	DropParams    []domain.DropParams    `json:"drop_params,omitempty"`
	BoxDropParams []domain.BoxDropParams `json:"box_drop_params,omitempty"`
	Recipes       []domain.Recipe        `json:"recipes,omitempty"`
	UpgradeRules  *domain.UpgradeRules   `json:"upgrade_rules,omitempty"`

	hash string
}

// Hash is the sha256 of the file contents Load read
func (f *File) Hash() string {
	return f.hash
}

// SyncResult counts what a sync changed
type SyncResult struct {
	Templates      int
	DropParams     int
	BoxDropParams  int
	RecipesCreated int
	RecipesSkipped int
	UpgradeRules   bool
}

// Loader reads catalog files and applies them through the catalog service
type Loader interface {
	Load(path string) (*File, error)
	Validate(file *File) error
	Sync(ctx context.Context, file *File, svc Service) (*SyncResult, error)
}

type loader struct {
	schemaValidator validation.SchemaValidator
}

// NewLoader creates a new Loader instance
func NewLoader() Loader {
	return &loader{schemaValidator: validation.NewSchemaValidator()}
}

// Load reads a catalog file, checks it against the catalog schema and parses it
func (l *loader) Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	if err := l.schemaValidator.ValidateBytes(data, validation.SchemaCatalog); err != nil {
		return nil, fmt.Errorf("schema validation failed for %s: %w", path, err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	sum := sha256.Sum256(data)
	file.hash = hex.EncodeToString(sum[:])
	return &file, nil
}

// Validate checks cross references the schema cannot express
func (l *loader) Validate(file *File) error {
	if file == nil {
		return fmt.Errorf("%w: catalog is nil", ErrInvalidConfig)
	}

	templates := make(map[int]bool, len(file.Templates))
	for _, t := range file.Templates {
		if templates[t.ID] {
			return fmt.Errorf("%w: duplicate template id %d", ErrInvalidConfig, t.ID)
		}
		templates[t.ID] = true
	}

	tiers := make(map[int]bool, len(file.DropParams))
	for _, p := range file.DropParams {
		if tiers[p.Tier] {
			return fmt.Errorf("%w: duplicate drop params for tier %d", ErrInvalidConfig, p.Tier)
		}
		tiers[p.Tier] = true
	}
	boxTiers := make(map[int]bool, len(file.BoxDropParams))
	for _, p := range file.BoxDropParams {
		if boxTiers[p.Tier] {
			return fmt.Errorf("%w: duplicate box drop params for tier %d", ErrInvalidConfig, p.Tier)
		}
		boxTiers[p.Tier] = true
	}

	names := make(map[string]bool, len(file.Recipes))
	for _, r := range file.Recipes {
		if names[r.Name] {
			return fmt.Errorf("%w: duplicate recipe name %q", ErrInvalidConfig, r.Name)
		}
		names[r.Name] = true
		for _, c := range append(append([]domain.ItemConstraint{}, r.InputConstraints...), r.OutputCandidates...) {
			if !templates[c.TemplateID] {
				return fmt.Errorf("%w: recipe %q references unknown template %d", ErrInvalidConfig, r.Name, c.TemplateID)
			}
		}
	}
	return nil
}

// Sync applies the catalog idempotently. Recipes are immutable, so a recipe whose name
// already exists is skipped rather than replaced.
func (l *loader) Sync(ctx context.Context, file *File, svc Service) (*SyncResult, error) {
	log := logger.FromContext(ctx)
	result := &SyncResult{}

	for _, t := range file.Templates {
		if err := svc.UpsertTemplate(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to sync template %d: %w", t.ID, err)
		}
		result.Templates++
	}
	for _, p := range file.DropParams {
		if _, err := svc.SetDropParams(ctx, p.Tier, p); err != nil {
			return nil, fmt.Errorf("failed to sync drop params for tier %d: %w", p.Tier, err)
		}
		result.DropParams++
	}
	for _, p := range file.BoxDropParams {
		if _, err := svc.SetBoxDropParams(ctx, p.Tier, p); err != nil {
			return nil, fmt.Errorf("failed to sync box drop params for tier %d: %w", p.Tier, err)
		}
		result.BoxDropParams++
	}
	if file.UpgradeRules != nil {
		if err := svc.SetUpgradeRules(ctx, *file.UpgradeRules); err != nil {
			return nil, fmt.Errorf("failed to sync upgrade rules: %w", err)
		}
		result.UpgradeRules = true
	}

	existing, err := svc.Recipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		known[r.Name] = true
	}
	for _, r := range file.Recipes {
		if known[r.Name] {
			result.RecipesSkipped++
			continue
		}
		if _, err := svc.CreateRecipe(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to sync recipe %q: %w", r.Name, err)
		}
		result.RecipesCreated++
	}

	log.Info("Catalog synced",
		"hash", file.hash,
		"templates", result.Templates,
		"drop_params", result.DropParams,
		"box_drop_params", result.BoxDropParams,
		"recipes_created", result.RecipesCreated,
		"recipes_skipped", result.RecipesSkipped)
	return result, nil
}
