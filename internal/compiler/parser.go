// Package compiler decodes authored state machine definitions and themes.
//
// Documents may be written in JSON or YAML. Both are read through yaml.v3
// into generic maps and then decoded into domain types with mapstructure.
package compiler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/kinema/internal/logging"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser converts raw bytes into definitions and themes.
type Parser struct {
	logger *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger reports ignored keys at Debug level.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a new parser instance.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseDefinition decodes a state machine definition. It checks shape only;
// semantic validation belongs to the runtime.
func (p *Parser) ParseDefinition(data []byte) (*domain.Definition, error) {
	raw, err := decodeMap(data)
	if err != nil {
		return nil, fmt.Errorf("%w: definition: %v", domain.ErrStateMachine, err)
	}

	var def domain.Definition
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &def,
		Metadata: &md,
		TagName:  "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &domain.DefinitionError{Reason: err.Error()}
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		p.logger.Debug("Ignored definition keys", "keys", md.Unused)
	}
	if len(def.States) == 0 {
		return nil, &domain.DefinitionError{Path: "states", Reason: "at least one state is required"}
	}
	for i := range def.States {
		if def.States[i].Type == "" {
			def.States[i].Type = domain.StatePlayback
		}
	}
	return &def, nil
}

// ParseTheme decodes a theme document.
func (p *Parser) ParseTheme(data []byte) (*domain.Theme, error) {
	buf, err := ToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: theme: %v", domain.ErrLoad, err)
	}
	var theme domain.Theme
	if err := json.Unmarshal(buf, &theme); err != nil {
		return nil, fmt.Errorf("%w: theme: %v", domain.ErrLoad, err)
	}
	for i, r := range theme.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: theme rule %d has no id", domain.ErrLoad, i)
		}
	}
	return &theme, nil
}

// MarshalDefinition renders def as indented JSON.
func MarshalDefinition(def *domain.Definition) ([]byte, error) {
	return json.MarshalIndent(def, "", "  ")
}

// ToJSON converts a JSON or YAML document to JSON.
func ToJSON(data []byte) ([]byte, error) {
	raw, err := decodeMap(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func decodeMap(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("empty document")
	}
	return normalize(raw).(map[string]any), nil
}

// normalize turns YAML's map[any]any into map[string]any so that the
// result can be re-encoded as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}
