package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSlots(t *testing.T) {
	valid := map[string]any{
		"bg":    map[string]any{"type": "Color", "value": []any{1.0, 0.0, 0.0, 1.0}},
		"hex":   map[string]any{"type": "Color", "value": "#00ff00"},
		"width": map[string]any{"type": "Scalar", "value": 4.0},
		"fade": map[string]any{"type": "Scalar", "keyframes": []any{
			map[string]any{"frame": 0.0, "value": 0.0},
			map[string]any{"frame": 10.0, "value": 1.0, "inTangent": map[string]any{"x": 0.4, "y": 0.0}},
		}},
		"grad": map[string]any{"type": "Gradient", "value": []any{
			map[string]any{"offset": 0.0, "color": []any{0.0, 0.0, 0.0}},
			map[string]any{"offset": 1.0, "color": "#ffffff"},
		}},
	}
	require.NoError(t, ValidateSlots(valid))
}

func TestValidateSlotsReportsEverySlot(t *testing.T) {
	payload := map[string]any{
		"a": map[string]any{"type": "Color", "value": "nope"},
		"b": map[string]any{"type": "Wobble", "value": 1.0},
		"c": map[string]any{"type": "Scalar"},
		"d": map[string]any{"type": "Scalar", "value": 1.0, "keyframes": []any{}},
		"e": "not an object",
		"f": map[string]any{"type": "Scalar", "value": 2.0},
	}

	err := ValidateSlots(payload)
	require.Error(t, err)
	assert.Len(t, ValidationErrors(err), 5)
	assert.Contains(t, err.Error(), `"a"`)
	assert.NotContains(t, err.Error(), `"f"`)
}

func TestRuleSchemaUnknownType(t *testing.T) {
	_, err := RuleSchema("Image")
	assert.Error(t, err)
}
