// Package schema provides a small type system for validating decoded JSON.
//
// It is used to check theme slot overrides before they reach the player, so
// that a malformed payload is rejected as a whole instead of being applied
// halfway. Schemas map field names to types:
//
//	s := schema.Schema{
//	    "offset": schema.Unit(),
//	    "color":  schema.Color(),
//	    "hold":   schema.Optional(schema.Bool()),
//	}
//
//	if err := schema.Validate(s, data); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // Handle each field failure
//	    }
//	}
//
// Slot payloads have a ready-made schema per slot type:
//
//	err := schema.ValidateSlots(map[string]any{
//	    "bg": map[string]any{"type": "Color", "value": "#ff0000"},
//	})
//
// Custom validators can be registered for domain-specific checks:
//
//	positive := schema.Custom("positive", func(v any) error {
//	    f, ok := v.(float64)
//	    if !ok || f <= 0 {
//	        return fmt.Errorf("must be positive")
//	    }
//	    return nil
//	})
package schema
