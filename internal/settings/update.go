package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/quantedge/quantedge/internal/core"
)

// FieldUpdate replaces exactly one field of a record. Values are built with
// the typed constructors below, so an update is always well formed.
type FieldUpdate struct {
	field Field
	apply func(*SimulationSettings)
}

// Field returns the field the update targets.
func (u FieldUpdate) Field() Field { return u.field }

// Apply returns a copy of s with the update applied.
func (u FieldUpdate) Apply(s SimulationSettings) SimulationSettings {
	if u.apply != nil {
		u.apply(&s)
	}
	return s
}

func LongEntry(v string) FieldUpdate {
	return FieldUpdate{FieldLongEntry, func(s *SimulationSettings) { s.LongEntry = v }}
}

func LongExit(v string) FieldUpdate {
	return FieldUpdate{FieldLongExit, func(s *SimulationSettings) { s.LongExit = v }}
}

func ShortEntry(v string) FieldUpdate {
	return FieldUpdate{FieldShortEntry, func(s *SimulationSettings) { s.ShortEntry = v }}
}

func ShortExit(v string) FieldUpdate {
	return FieldUpdate{FieldShortExit, func(s *SimulationSettings) { s.ShortExit = v }}
}

func Asset(v float64) FieldUpdate {
	return FieldUpdate{FieldAsset, func(s *SimulationSettings) { s.Asset = v }}
}

func Target(v float64) FieldUpdate {
	return FieldUpdate{FieldTarget, func(s *SimulationSettings) { s.Target = v }}
}

func Commission(v float64) FieldUpdate {
	return FieldUpdate{FieldCommission, func(s *SimulationSettings) { s.Commission = v }}
}

func InitialInvestment(v float64) FieldUpdate {
	return FieldUpdate{FieldInitialInvestment, func(s *SimulationSettings) { s.InitialInvestment = v }}
}

func TimeFrame(v float64) FieldUpdate {
	return FieldUpdate{FieldTimeFrame, func(s *SimulationSettings) { s.TimeFrame = v }}
}

// SelectedStocks replaces the selection; duplicates collapse.
func SelectedStocks(symbols ...string) FieldUpdate {
	set := NewStockSet(symbols...)
	return FieldUpdate{FieldSelectedStocks, func(s *SimulationSettings) { s.SelectedStocks = set }}
}

// Condition builds an update for one of the four condition fields.
func Condition(f Field, v string) (FieldUpdate, error) {
	switch f {
	case FieldLongEntry:
		return LongEntry(v), nil
	case FieldLongExit:
		return LongExit(v), nil
	case FieldShortEntry:
		return ShortEntry(v), nil
	case FieldShortExit:
		return ShortExit(v), nil
	}
	return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
		fmt.Errorf("%s is not a condition field", f))
}

// Number builds an update for one of the five numeric fields.
func Number(f Field, v float64) (FieldUpdate, error) {
	switch f {
	case FieldAsset:
		return Asset(v), nil
	case FieldTarget:
		return Target(v), nil
	case FieldCommission:
		return Commission(v), nil
	case FieldInitialInvestment:
		return InitialInvestment(v), nil
	case FieldTimeFrame:
		return TimeFrame(v), nil
	}
	return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
		fmt.Errorf("%s is not a numeric field", f))
}

// ParseFieldUpdate converts command-line text into an update. Stock
// selections are comma separated.
func ParseFieldUpdate(name, text string) (FieldUpdate, error) {
	f, ok := ParseField(name)
	if !ok {
		return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
			fmt.Errorf("unknown field %q", name))
	}

	switch {
	case f.IsCondition():
		return Condition(f, text)
	case f.IsNumeric():
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
				fmt.Errorf("%s: %q is not a number", f, text))
		}
		return Number(f, v)
	default:
		return SelectedStocks(strings.Split(text, ",")...), nil
	}
}

// DecodeFieldUpdate converts a JSON value into an update. Condition fields
// take a string, numeric fields a number and selectedStocks an array of
// strings (null clears the selection).
func DecodeFieldUpdate(name string, raw json.RawMessage) (FieldUpdate, error) {
	f, ok := ParseField(name)
	if !ok {
		return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
			fmt.Errorf("unknown field %q", name))
	}
	if len(raw) == 0 {
		return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
			fmt.Errorf("%s: missing value", f))
	}

	switch {
	case f.IsCondition():
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
				fmt.Errorf("%s: expected a string: %w", f, err))
		}
		return Condition(f, v)
	case f.IsNumeric():
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
				fmt.Errorf("%s: expected a number: %w", f, err))
		}
		return Number(f, v)
	default:
		var set StockSet
		if err := json.Unmarshal(raw, &set); err != nil {
			return FieldUpdate{}, core.WrapError(core.ErrInvalidField,
				fmt.Errorf("%s: expected an array of symbols: %w", f, err))
		}
		return SelectedStocks(set.Symbols()...), nil
	}
}
