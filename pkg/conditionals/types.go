package conditionals

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Operator string

const (
	OpGTE Operator = "gte"
	OpLTE Operator = "lte"
	OpGT  Operator = "gt"
	OpLT  Operator = "lt"
	OpEQ  Operator = "eq"
	OpNE  Operator = "ne" // prior-choice conditions only
)

// Known reports whether op is understood by at least one condition shape.
// Unknown operators still evaluate (they pass); the validator uses this to
// warn content authors.
func (op Operator) Known() bool {
	switch op {
	case OpGTE, OpLTE, OpGT, OpLT, OpEQ, OpNE:
		return true
	}
	return false
}

// Condition gates a narrative entry or choice. Exactly one of Stat,
// Relationship or Choice is expected to be set:
//
//	{"stat": "gpa", "operator": "gte", "value": 70}
//	{"relationship": "mom", "operator": "lt", "value": 25}
//	{"choice": "dorm_party", "operator": "eq", "value": "stay_in"}
type Condition struct {
	Stat         string   `json:"stat,omitempty" yaml:"stat,omitempty"`
	Relationship string   `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Choice       string   `json:"choice,omitempty" yaml:"choice,omitempty"` // moment id whose choice is compared
	Operator     Operator `json:"operator" yaml:"operator"`
	Value        Value    `json:"value" yaml:"value"`
}

// Shape names which kind of condition c is.
func (c Condition) Shape() string {
	switch {
	case c.Choice != "":
		return "choice"
	case c.Relationship != "":
		return "relationship"
	case c.Stat != "":
		return "stat"
	default:
		return ""
	}
}

// Value holds either a number (stat and relationship thresholds) or a string
// (a choice id).
type Value struct {
	Num   float64
	Str   string
	IsNum bool
}

func Number(n float64) Value { return Value{Num: n, IsNum: true} }
func String(s string) Value  { return Value{Str: s} }

func (v Value) String() string {
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// MarshalJSON writes the number or the string, whichever is set.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNum {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Number(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}
	return fmt.Errorf("condition value: not a number or string: %s", string(data))
}

// UnmarshalYAML accepts a YAML scalar; numeric tags become numbers.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("condition value: expected scalar at line %d", node.Line)
	}
	if node.Tag == "!!int" || node.Tag == "!!float" {
		n, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("condition value: %w", err)
		}
		*v = Number(n)
		return nil
	}
	*v = String(node.Value)
	return nil
}
