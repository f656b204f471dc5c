package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_Catalog(t *testing.T) {
	v := NewSchemaValidator()

	tests := []struct {
		name     string
		data     string
		wantErr  bool
		errorMsg string
	}{
		{
			name: "minimal catalog",
			data: `{"version": "1", "templates": [{"id": 1, "name": "short sword", "category": "weapon"}]}`,
		},
		{
			name: "full catalog",
			data: `{
				"version": "1",
				"templates": [{"id": 2, "name": "jewel of bless", "category": "jewel", "catalyst": "lesser", "in_shop": true}],
				"drop_params": [{"tier": 0, "weapons_drop_rate": 5, "box_id": 1, "max_item_level": 3}],
				"box_drop_params": [{"tier": 1, "armours_drop_rate": 1, "luck_drop_rate": 50}],
				"recipes": [{"name": "r", "input_constraints": [{"template_id": 2}], "success_rate": 50, "output_candidates": [{"template_id": 2}]}],
				"upgrade_rules": {"success_rates": [100, 50]}
			}`,
		},
		{
			name:     "missing templates",
			data:     `{"version": "1"}`,
			wantErr:  true,
			errorMsg: "required",
		},
		{
			name:     "unknown category",
			data:     `{"version": "1", "templates": [{"id": 1, "name": "x", "category": "ring"}]}`,
			wantErr:  true,
			errorMsg: "/templates/0/category",
		},
		{
			name:     "negative weight",
			data:     `{"version": "1", "templates": [{"id": 1, "name": "x", "category": "misc"}], "drop_params": [{"tier": 0, "misc_drop_rate": -1}]}`,
			wantErr:  true,
			errorMsg: "misc_drop_rate",
		},
		{
			name:     "box luck above 100",
			data:     `{"version": "1", "templates": [{"id": 1, "name": "x", "category": "misc"}], "box_drop_params": [{"tier": 1, "luck_drop_rate": 101}]}`,
			wantErr:  true,
			errorMsg: "luck_drop_rate",
		},
		{
			name:     "tier above ceiling",
			data:     `{"version": "1", "templates": [{"id": 1, "name": "x", "category": "misc", "tier": 120}]}`,
			wantErr:  true,
			errorMsg: "/templates/0/tier",
		},
		{
			name:     "unknown top level key",
			data:     `{"version": "1", "templates": [{"id": 1, "name": "x", "category": "misc"}], "items": []}`,
			wantErr:  true,
			errorMsg: "additionalProperties",
		},
		{
			name:     "invalid JSON",
			data:     `{"version": }`,
			wantErr:  true,
			errorMsg: "parse JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBytes([]byte(tt.data), SchemaCatalog)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestSchemaValidator_UnknownSchema(t *testing.T) {
	err := NewSchemaValidator().ValidateBytes([]byte(`{}`), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}
