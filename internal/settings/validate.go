package settings

import (
	"fmt"
	"math"

	"github.com/quantedge/quantedge/internal/core"
)

// User-facing validation messages.
const (
	MsgNumericRules = "Please enter valid numeric values for asset, target, commission, initial investment, and time frame."
	MsgNoStocks     = "Please select at least one stock."
)

// ValidationError describes a rule violation. Field is the first offending
// field; Fields lists every field the message covers, which is more than one
// only for the combined numeric rule.
type ValidationError struct {
	Field   Field
	Fields  []Field
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is match core.ErrValidationFailed.
func (e *ValidationError) Unwrap() error { return core.ErrValidationFailed }

func newValidationError(msg string, fields ...Field) *ValidationError {
	return &ValidationError{Field: fields[0], Fields: fields, Message: msg}
}

// Validate checks s and returns the first failure, or nil when s may be
// persisted. Checks run in a fixed order: condition text, the numeric
// bounds (reported together), a non-empty stock selection, then universe
// membership when universe is non-nil.
func Validate(s SimulationSettings, universe *Universe) error {
	for _, f := range []Field{FieldLongEntry, FieldLongExit, FieldShortEntry, FieldShortExit} {
		if s.Condition(f) == "" {
			return newValidationError(f.Label()+" is required", f)
		}
	}

	if bad := numericFailures(s); len(bad) > 0 {
		fields := make([]Field, len(bad))
		for i, v := range bad {
			fields[i] = v.Field
		}
		return newValidationError(MsgNumericRules, fields...)
	}

	if s.SelectedStocks.IsEmpty() {
		return newValidationError(MsgNoStocks, FieldSelectedStocks)
	}

	if universe != nil {
		for _, sym := range s.SelectedStocks.Symbols() {
			if !universe.Contains(sym) {
				return newValidationError("Unknown stock: "+sym, FieldSelectedStocks)
			}
		}
	}

	return nil
}

// AllFailures reports every violation in s, one error per field, each with
// a message naming that field. It returns nil when s is valid.
func AllFailures(s SimulationSettings, universe *Universe) []*ValidationError {
	var out []*ValidationError

	for _, f := range []Field{FieldLongEntry, FieldLongExit, FieldShortEntry, FieldShortExit} {
		if s.Condition(f) == "" {
			out = append(out, newValidationError(f.Label()+" is required", f))
		}
	}

	out = append(out, numericFailures(s)...)

	if s.SelectedStocks.IsEmpty() {
		out = append(out, newValidationError(MsgNoStocks, FieldSelectedStocks))
	} else if universe != nil {
		for _, sym := range s.SelectedStocks.Symbols() {
			if !universe.Contains(sym) {
				out = append(out, newValidationError("Unknown stock: "+sym, FieldSelectedStocks))
			}
		}
	}

	return out
}

// numericFailures checks the five numeric bounds. Commission may be zero;
// every other amount must be strictly positive. Non-finite values never pass
// because they cannot be stored as JSON.
func numericFailures(s SimulationSettings) []*ValidationError {
	var out []*ValidationError
	for _, f := range []Field{FieldAsset, FieldTarget, FieldCommission, FieldInitialInvestment, FieldTimeFrame} {
		v := s.Number(f)
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			out = append(out, newValidationError(f.Label()+" must be a finite number", f))
		case f == FieldCommission && v < 0:
			out = append(out, newValidationError(f.Label()+" must not be negative", f))
		case f != FieldCommission && v <= 0:
			out = append(out, newValidationError(fmt.Sprintf("%s must be greater than 0", f.Label()), f))
		}
	}
	return out
}
