// Package settings owns the simulation settings record that parameterizes a
// backtest request: its fields, validation rules, and durable persistence.
package settings

// Field names a single attribute of SimulationSettings. The string value is
// the JSON key used in the persisted record.
type Field string

const (
	FieldLongEntry         Field = "longEntry"
	FieldLongExit          Field = "longExit"
	FieldShortEntry        Field = "shortEntry"
	FieldShortExit         Field = "shortExit"
	FieldAsset             Field = "asset"
	FieldTarget            Field = "target"
	FieldCommission        Field = "commission"
	FieldInitialInvestment Field = "initialInvestment"
	FieldTimeFrame         Field = "timeFrame"
	FieldSelectedStocks    Field = "selectedStocks"
)

// Fields lists every field in validation order.
var Fields = []Field{
	FieldLongEntry,
	FieldLongExit,
	FieldShortEntry,
	FieldShortExit,
	FieldAsset,
	FieldTarget,
	FieldCommission,
	FieldInitialInvestment,
	FieldTimeFrame,
	FieldSelectedStocks,
}

var fieldLabels = map[Field]string{
	FieldLongEntry:         "Long Entry",
	FieldLongExit:          "Long Exit",
	FieldShortEntry:        "Short Entry",
	FieldShortExit:         "Short Exit",
	FieldAsset:             "Asset",
	FieldTarget:            "Target",
	FieldCommission:        "Commission",
	FieldInitialInvestment: "Initial Investment",
	FieldTimeFrame:         "Time Frame",
	FieldSelectedStocks:    "Selected Stocks",
}

// Label returns the human-readable name shown in messages.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// ParseField resolves a field by its JSON name.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	_, ok := fieldLabels[f]
	return f, ok
}

// IsCondition reports whether f holds free-form condition text.
func (f Field) IsCondition() bool {
	switch f {
	case FieldLongEntry, FieldLongExit, FieldShortEntry, FieldShortExit:
		return true
	}
	return false
}

// IsNumeric reports whether f holds a number.
func (f Field) IsNumeric() bool {
	switch f {
	case FieldAsset, FieldTarget, FieldCommission, FieldInitialInvestment, FieldTimeFrame:
		return true
	}
	return false
}

// SimulationSettings is the configuration record handed to the backtest
// execution service. Condition fields are opaque text; amounts are in
// currency units, Target is a percentage and TimeFrame is in days.
type SimulationSettings struct {
	LongEntry         string   `json:"longEntry"`
	LongExit          string   `json:"longExit"`
	ShortEntry        string   `json:"shortEntry"`
	ShortExit         string   `json:"shortExit"`
	Asset             float64  `json:"asset"`
	Target            float64  `json:"target"`
	Commission        float64  `json:"commission"`
	InitialInvestment float64  `json:"initialInvestment"`
	TimeFrame         float64  `json:"timeFrame"`
	SelectedStocks    StockSet `json:"selectedStocks"`
}

// Defaults returns the all-empty record used before anything is persisted.
func Defaults() SimulationSettings {
	return SimulationSettings{}
}

// Condition returns the text of a condition field.
func (s SimulationSettings) Condition(f Field) string {
	switch f {
	case FieldLongEntry:
		return s.LongEntry
	case FieldLongExit:
		return s.LongExit
	case FieldShortEntry:
		return s.ShortEntry
	case FieldShortExit:
		return s.ShortExit
	}
	return ""
}

// Number returns the value of a numeric field.
func (s SimulationSettings) Number(f Field) float64 {
	switch f {
	case FieldAsset:
		return s.Asset
	case FieldTarget:
		return s.Target
	case FieldCommission:
		return s.Commission
	case FieldInitialInvestment:
		return s.InitialInvestment
	case FieldTimeFrame:
		return s.TimeFrame
	}
	return 0
}

// Equal compares two records field by field. Stock selections compare as
// sets, so insertion order does not matter.
func (s SimulationSettings) Equal(o SimulationSettings) bool {
	return s.LongEntry == o.LongEntry &&
		s.LongExit == o.LongExit &&
		s.ShortEntry == o.ShortEntry &&
		s.ShortExit == o.ShortExit &&
		s.Asset == o.Asset &&
		s.Target == o.Target &&
		s.Commission == o.Commission &&
		s.InitialInvestment == o.InitialInvestment &&
		s.TimeFrame == o.TimeFrame &&
		s.SelectedStocks.Equal(o.SelectedStocks)
}
