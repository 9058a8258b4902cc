package settings

import (
	"encoding/json"
	"strings"
)

// StockSet is an ordered set of instrument symbols. The first occurrence of
// a symbol fixes its display position; later duplicates are dropped.
// A StockSet is immutable, so copies of a record never share mutable state.
type StockSet struct {
	symbols []string
}

// NewStockSet builds a set from symbols, trimming whitespace and skipping
// blanks and duplicates.
func NewStockSet(symbols ...string) StockSet {
	var out []string
	seen := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return StockSet{symbols: out}
}

// Symbols returns the members in insertion order.
func (s StockSet) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Len returns the number of members.
func (s StockSet) Len() int { return len(s.symbols) }

// IsEmpty reports whether no symbol is selected.
func (s StockSet) IsEmpty() bool { return len(s.symbols) == 0 }

// Contains reports whether sym is a member.
func (s StockSet) Contains(sym string) bool {
	for _, m := range s.symbols {
		if m == sym {
			return true
		}
	}
	return false
}

// Equal reports set equality, ignoring order.
func (s StockSet) Equal(o StockSet) bool {
	if len(s.symbols) != len(o.symbols) {
		return false
	}
	for _, sym := range s.symbols {
		if !o.Contains(sym) {
			return false
		}
	}
	return true
}

// String joins the members with commas.
func (s StockSet) String() string {
	return strings.Join(s.symbols, ",")
}

// MarshalJSON encodes the set as a JSON array; an empty set is [].
func (s StockSet) MarshalJSON() ([]byte, error) {
	if s.symbols == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.symbols)
}

// UnmarshalJSON decodes a JSON array of strings, dropping duplicates.
// null decodes to the empty set.
func (s *StockSet) UnmarshalJSON(data []byte) error {
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return err
	}
	*s = NewStockSet(symbols...)
	return nil
}
