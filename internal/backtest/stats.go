package backtest

import (
	"fmt"
	"math"
)

// Stats holds performance statistics derived from an equity curve.
type Stats struct {
	TotalReturn float64 // Net return percentage
	MaxDrawdown float64 // Largest peak-to-trough decline, percentage
	SharpeRatio float64 // Risk-adjusted return (annualized)
	WinRate     float64 // Percentage of positive days
	Days        int
}

// CalculateStats computes statistics from the equity values of series.
// Steps from zero equity have no defined return and are left out of the
// win rate and Sharpe ratio; drawdown is read off the curve itself.
func CalculateStats(series []Point) Stats {
	if len(series) < 2 {
		return Stats{Days: len(series)}
	}

	returns := make([]float64, 0, len(series)-1)
	var winning int
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Equity
		if prev == 0 {
			continue
		}
		r := series[i].Equity/prev - 1
		returns = append(returns, r)
		if r > 0 {
			winning++
		}
	}

	var total, winRate float64
	if first := series[0].Equity; first != 0 {
		total = series[len(series)-1].Equity/first - 1
	}
	if len(returns) > 0 {
		winRate = float64(winning) / float64(len(returns)) * 100
	}

	return Stats{
		TotalReturn: total * 100,
		MaxDrawdown: calculateMaxDrawdown(series) * 100,
		SharpeRatio: calculateSharpeRatio(returns),
		WinRate:     winRate,
		Days:        len(series),
	}
}

// Metrics renders s in the service's pre-formatted metric shape.
func (s Stats) Metrics() []Metric {
	return []Metric{
		{Name: "Total Return", Value: fmt.Sprintf("%.2f%%", s.TotalReturn), Description: "Net change in portfolio value"},
		{Name: "Max Drawdown", Value: fmt.Sprintf("%.2f%%", -s.MaxDrawdown), Description: "Largest peak-to-trough decline"},
		{Name: "Sharpe Ratio", Value: fmt.Sprintf("%.2f", s.SharpeRatio), Description: "Annualized return over volatility"},
		{Name: "Win Rate", Value: fmt.Sprintf("%.1f%%", s.WinRate), Description: "Share of days with a positive return"},
	}
}

// calculateMaxDrawdown finds the largest decline of the equity curve from
// its running peak, as a fraction of that peak.
func calculateMaxDrawdown(series []Point) float64 {
	if len(series) == 0 {
		return 0
	}

	var maxDD float64
	peak := series[0].Equity

	for _, p := range series[1:] {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// calculateSharpeRatio computes risk-adjusted return
// Assumes risk-free rate of 0 for simplicity
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))

	if stdDev == 0 {
		return 0
	}

	// Annualize (assuming ~252 trading days)
	annualizedReturn := mean * 252
	annualizedStdDev := stdDev * math.Sqrt(252)

	return annualizedReturn / annualizedStdDev
}
