package batch

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Batch is an ordered list of expression cases.
type Batch []*Case

type Case struct {
	Expression  string  `json:"expression" mapstructure:"expression"`
	Expect      *string `json:"expect,omitempty" mapstructure:"expect"`
	ExpectError string  `json:"expect_error,omitempty" mapstructure:"expect_error"`
}

// compileBatch accepts either a list of cases or {"cases": [...]}. A case is
// a plain expression string or a map decoded into Case.
func compileBatch(root any) (Batch, error) {
	var list []any
	switch v := root.(type) {
	case []any:
		list = v

	case map[string]any:
		cases, ok := v["cases"]
		if !ok {
			return nil, fmt.Errorf("batch object must have a %q key", "cases")
		}
		if list, ok = cases.([]any); !ok {
			return nil, fmt.Errorf("cases: unexpected type %T", cases)
		}

	default:
		return nil, fmt.Errorf("unknown batch type: %T", root)
	}

	b := make(Batch, 0, len(list))
	for i, v := range list {
		c, err := compileCase(v)
		if err != nil {
			return nil, fmt.Errorf("index=%d: %w", i, err)
		}
		b = append(b, c)
	}
	return b, nil
}

func compileCase(v any) (*Case, error) {
	switch v := v.(type) {
	case string:
		return &Case{Expression: v}, nil

	case map[string]any:
		var c Case
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &c,
		})
		if err != nil {
			return nil, err
		}
		if err = decoder.Decode(v); err != nil {
			return nil, err
		}
		if _, ok := v["expression"]; !ok {
			return nil, fmt.Errorf("case has no %q", "expression")
		}
		if c.Expect != nil && c.ExpectError != "" {
			return nil, fmt.Errorf("case %q: expect and expect_error are exclusive", c.Expression)
		}
		return &c, nil

	default:
		return nil, fmt.Errorf("unknown case type: %T", v)
	}
}
