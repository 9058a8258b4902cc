package backtest

import (
	"encoding/json"

	"github.com/quantedge/quantedge/internal/settings"
)

// Request is the body sent to the backtest service.
type Request struct {
	Settings settings.SimulationSettings `json:"settings"`
	Strategy string                      `json:"strategy,omitempty"`
}

// Result holds the complete backtest output
type Result struct {
	Series      []Point             `json:"series"`
	Histogram   []Bin               `json:"histogram"`
	MonthlyPnL  []MonthlyRow        `json:"monthly_pnl"`
	Metrics     []Metric            `json:"metrics"`
	Instruments map[string][]Candle `json:"instruments,omitempty"`
}

// Point is one day of the equity curve.
type Point struct {
	Date      string  `json:"date"`
	Equity    float64 `json:"value"`
	Benchmark float64 `json:"benchmark"`
	Drawdown  float64 `json:"drawdown"`
	Returns   float64 `json:"returns,omitempty"`
}

// Bin is one bucket of the returns histogram.
type Bin struct {
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Label     string  `json:"return"`
	Frequency int     `json:"frequency"`
}

// Metric is a pre-formatted performance figure.
type Metric struct {
	Name        string `json:"metric"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Candle is one bar of an instrument's price history with the held position.
type Candle struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Position *string `json:"position"`
}

// MonthlyRow holds one year of monthly P&L, January first.
type MonthlyRow struct {
	Year   int
	Months [12]float64
}

type monthlyRowJSON struct {
	Year int     `json:"year"`
	Jan  float64 `json:"Jan"`
	Feb  float64 `json:"Feb"`
	Mar  float64 `json:"Mar"`
	Apr  float64 `json:"Apr"`
	May  float64 `json:"May"`
	Jun  float64 `json:"Jun"`
	Jul  float64 `json:"Jul"`
	Aug  float64 `json:"Aug"`
	Sep  float64 `json:"Sep"`
	Oct  float64 `json:"Oct"`
	Nov  float64 `json:"Nov"`
	Dec  float64 `json:"Dec"`
}

func (m MonthlyRow) MarshalJSON() ([]byte, error) {
	v := m.Months
	return json.Marshal(monthlyRowJSON{
		Year: m.Year,
		Jan:  v[0], Feb: v[1], Mar: v[2], Apr: v[3], May: v[4], Jun: v[5],
		Jul: v[6], Aug: v[7], Sep: v[8], Oct: v[9], Nov: v[10], Dec: v[11],
	})
}

func (m *MonthlyRow) UnmarshalJSON(data []byte) error {
	var raw monthlyRowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Year = raw.Year
	m.Months = [12]float64{
		raw.Jan, raw.Feb, raw.Mar, raw.Apr, raw.May, raw.Jun,
		raw.Jul, raw.Aug, raw.Sep, raw.Oct, raw.Nov, raw.Dec,
	}
	return nil
}
