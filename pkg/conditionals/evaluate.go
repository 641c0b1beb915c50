package conditionals

// StatView provides stat values. Unknown names read as 0.
type StatView interface {
	Get(name string) float64
}

// RelationshipView provides connection scores. Unknown ids read as 0.
type RelationshipView interface {
	Connection(id string) float64
}

// ChoiceView provides the recorded choice for a completed moment.
type ChoiceView interface {
	ChoiceFor(momentID string) (string, bool)
}

// Evaluate reports whether c holds against the given views. Any view may be
// nil. Unknown operators pass, and so does a condition with no recognized
// shape; content written for newer operators keeps rendering.
func Evaluate(c Condition, stats StatView, rels RelationshipView, choices ChoiceView) bool {
	switch c.Shape() {
	case "choice":
		var got string
		if choices != nil {
			got, _ = choices.ChoiceFor(c.Choice)
		}
		return compareChoice(c.Operator, got, c.Value.String())

	case "relationship":
		var got float64
		if rels != nil {
			got = rels.Connection(c.Relationship)
		}
		return compareNumber(c.Operator, got, c.Value.Num)

	case "stat":
		var got float64
		if stats != nil {
			got = stats.Get(c.Stat)
		}
		return compareNumber(c.Operator, got, c.Value.Num)

	default:
		return true
	}
}

func compareNumber(op Operator, got, want float64) bool {
	switch op {
	case OpGTE:
		return got >= want
	case OpLTE:
		return got <= want
	case OpGT:
		return got > want
	case OpLT:
		return got < want
	case OpEQ:
		return got == want
	default:
		return true
	}
}

func compareChoice(op Operator, got, want string) bool {
	switch op {
	case OpEQ:
		return got == want
	case OpNE:
		return got != want
	default:
		return true
	}
}
