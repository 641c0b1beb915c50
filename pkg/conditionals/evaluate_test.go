package conditionals

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

type mockStats map[string]float64

func (m mockStats) Get(name string) float64 { return m[name] }

type mockRels map[string]float64

func (m mockRels) Connection(id string) float64 { return m[id] }

type mockChoices map[string]string

func (m mockChoices) ChoiceFor(id string) (string, bool) {
	c, ok := m[id]
	return c, ok
}

func TestEvaluate(t *testing.T) {
	stats := mockStats{"gpa": 72, "burnout": 40}
	rels := mockRels{"mom": 30}
	choices := mockChoices{"dorm_party": "stay_in"}

	tests := []struct {
		name     string
		cond     Condition
		expected bool
	}{
		{"stat gte pass", Condition{Stat: "gpa", Operator: OpGTE, Value: Number(72)}, true},
		{"stat gte fail", Condition{Stat: "gpa", Operator: OpGTE, Value: Number(73)}, false},
		{"stat lte", Condition{Stat: "burnout", Operator: OpLTE, Value: Number(40)}, true},
		{"stat gt", Condition{Stat: "burnout", Operator: OpGT, Value: Number(40)}, false},
		{"stat lt", Condition{Stat: "burnout", Operator: OpLT, Value: Number(41)}, true},
		{"stat eq", Condition{Stat: "gpa", Operator: OpEQ, Value: Number(72)}, true},
		{"unknown stat reads zero", Condition{Stat: "luck", Operator: OpEQ, Value: Number(0)}, true},
		{"unknown operator passes", Condition{Stat: "gpa", Operator: "weird", Value: Number(0)}, true},
		{"unknown operator passes high value", Condition{Stat: "gpa", Operator: "weird", Value: Number(1000)}, true},
		{"numeric ne is permissive", Condition{Stat: "gpa", Operator: OpNE, Value: Number(72)}, true},
		{"relationship lt", Condition{Relationship: "mom", Operator: OpLT, Value: Number(50)}, true},
		{"unknown character reads zero", Condition{Relationship: "ghost", Operator: OpGT, Value: Number(0)}, false},
		{"choice eq", Condition{Choice: "dorm_party", Operator: OpEQ, Value: String("stay_in")}, true},
		{"choice eq mismatch", Condition{Choice: "dorm_party", Operator: OpEQ, Value: String("go_out")}, false},
		{"choice ne", Condition{Choice: "dorm_party", Operator: OpNE, Value: String("go_out")}, true},
		{"choice never made", Condition{Choice: "career_fair", Operator: OpEQ, Value: String("attend")}, false},
		{"choice never made ne", Condition{Choice: "career_fair", Operator: OpNE, Value: String("attend")}, true},
		{"choice unknown operator", Condition{Choice: "dorm_party", Operator: OpGT, Value: String("x")}, true},
		{"no shape passes", Condition{Operator: OpEQ, Value: Number(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.cond, stats, rels, choices); got != tt.expected {
				t.Errorf("Evaluate(%+v) = %v, want %v", tt.cond, got, tt.expected)
			}
		})
	}
}

func TestEvaluate_NilViews(t *testing.T) {
	c := Condition{Stat: "gpa", Operator: OpLT, Value: Number(1)}
	if !Evaluate(c, nil, nil, nil) {
		t.Error("nil stat view should read as zero")
	}
}

func TestCondition_UnmarshalJSON(t *testing.T) {
	var c Condition
	if err := json.Unmarshal([]byte(`{"stat":"gpa","operator":"gte","value":70}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !c.Value.IsNum || c.Value.Num != 70 {
		t.Errorf("expected numeric 70, got %+v", c.Value)
	}

	if err := json.Unmarshal([]byte(`{"choice":"dorm_party","operator":"eq","value":"stay_in"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Value.IsNum || c.Value.Str != "stay_in" {
		t.Errorf("expected string value, got %+v", c.Value)
	}

	if err := json.Unmarshal([]byte(`{"stat":"gpa","operator":"eq","value":[1]}`), &c); err == nil {
		t.Error("expected error for array value")
	}
}

func TestCondition_UnmarshalYAML(t *testing.T) {
	var c Condition
	src := "relationship: mom\noperator: lt\nvalue: 25\n"
	if err := yaml.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Shape() != "relationship" || !c.Value.IsNum || c.Value.Num != 25 {
		t.Errorf("unexpected condition %+v", c)
	}

	src = "choice: dorm_party\noperator: ne\nvalue: go_out\n"
	if err := yaml.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Value.IsNum || c.Value.Str != "go_out" {
		t.Errorf("unexpected value %+v", c.Value)
	}
}

func TestOperator_Known(t *testing.T) {
	for _, op := range []Operator{OpGTE, OpLTE, OpGT, OpLT, OpEQ, OpNE} {
		if !op.Known() {
			t.Errorf("%s should be known", op)
		}
	}
	if Operator("weird").Known() {
		t.Error("weird should not be known")
	}
}
