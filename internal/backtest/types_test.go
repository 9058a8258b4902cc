package backtest

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMonthlyRow_JSON(t *testing.T) {
	row := MonthlyRow{Year: 2023, Months: [12]float64{1.5, -2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3.25}}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"year":2023`, `"Jan":1.5`, `"Feb":-2`, `"Dec":3.25`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in %s", want, data)
		}
	}

	var decoded MonthlyRow
	if err := json.Unmarshal([]byte(`{"year":2024,"Mar":4.5,"Nov":-1}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Year != 2024 || decoded.Months[2] != 4.5 || decoded.Months[10] != -1 {
		t.Errorf("unexpected row %+v", decoded)
	}
}

func TestResult_DecodesServicePayload(t *testing.T) {
	payload := `{
		"series": [{"date": "2024-01-01", "value": 100000, "benchmark": 100000, "drawdown": 0}],
		"histogram": [{"lower": -0.01, "upper": 0, "return": "-1%", "frequency": 4}],
		"monthly_pnl": [{"year": 2024, "Jan": 2.1}],
		"metrics": [{"metric": "Sharpe Ratio", "value": "1.20", "description": "risk adjusted"}],
		"instruments": {"INFY": [{"date": "2024-01-01", "open": 1, "high": 2, "low": 0.5, "close": 1.5, "position": "long"}]}
	}`

	var r Result
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Series[0].Equity != 100000 {
		t.Errorf("expected equity from value key, got %v", r.Series[0].Equity)
	}
	if r.Histogram[0].Label != "-1%" || r.Histogram[0].Frequency != 4 {
		t.Errorf("unexpected bin %+v", r.Histogram[0])
	}
	if r.MonthlyPnL[0].Months[0] != 2.1 {
		t.Errorf("unexpected monthly row %+v", r.MonthlyPnL[0])
	}
	if r.Metrics[0].Name != "Sharpe Ratio" {
		t.Errorf("unexpected metric %+v", r.Metrics[0])
	}
	if c := r.Instruments["INFY"][0]; c.Position == nil || *c.Position != "long" {
		t.Errorf("unexpected candle %+v", c)
	}
}
