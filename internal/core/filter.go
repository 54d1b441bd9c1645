package core

// Wildcard matches every value of a filter dimension. An empty filter value
// behaves the same way.
const Wildcard = "all"

// Filter narrows a transaction list for reports and exports. Date bounds are
// inclusive and compared as strings, which the fixed-width Date format makes
// safe. All set predicates must match.
type Filter struct {
	From     Date
	To       Date
	Type     string
	Category string
}

func (f Filter) Match(t Transaction) bool {
	if f.From != "" && t.Date < f.From {
		return false
	}
	if f.To != "" && t.Date > f.To {
		return false
	}
	if f.Type != "" && f.Type != Wildcard && string(t.Type) != f.Type {
		return false
	}
	if f.Category != "" && f.Category != Wildcard && t.Category != f.Category {
		return false
	}
	return true
}

// Apply returns the matching subset in input order, in a single pass.
func (f Filter) Apply(txns []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
