package domain

import "time"

// SeedStrategies 策略集合为空时写入的演示策略
func SeedStrategies(now time.Time) []*Strategy {
	day := 24 * time.Hour
	return []*Strategy{
		{
			Name:        "Conservative Growth Strategy",
			Description: "A low-risk strategy focused on stable growth",
			Type:        "Conservative",
			Risk:        RiskLow,
			Performance: Performance{
				Returns: []ReturnPoint{
					{Date: now, Value: 10550000, Benchmark: 10320000},
				},
				Statistics: Statistics{
					ROI:         5.5,
					CAGR:        4.2,
					SharpeRatio: 1.2,
					MaxDrawdown: 2.1,
					WinRate:     0.65,
					Volatility:  0.08,
					Alpha:       0.02,
					Beta:        0.85,
				},
				Allocation: []Allocation{
					{Symbol: "RELIANCE.NS", Percentage: 25, Sector: "Energy"},
					{Symbol: "TCS.NS", Percentage: 20, Sector: "Technology"},
					{Symbol: "HDFCBANK.NS", Percentage: 20, Sector: "Finance"},
					{Symbol: "INFY.NS", Percentage: 15, Sector: "Technology"},
					{Symbol: "BHARTIARTL.NS", Percentage: 20, Sector: "Telecom"},
				},
			},
			Trades: []Trade{
				{Date: now, Symbol: "RELIANCE.NS", Type: TradeBuy, Quantity: 50, Price: 2750.50, Fees: 99.99, Sector: "Energy"},
				{Date: now.Add(-day), Symbol: "TCS.NS", Type: TradeBuy, Quantity: 25, Price: 3800.75, Fees: 99.99, Sector: "Technology"},
				{Date: now.Add(-2 * day), Symbol: "HDFCBANK.NS", Type: TradeSell, Quantity: 100, Price: 1750.25, Fees: 99.99, Sector: "Finance"},
			},
			Metrics: Metrics{
				TotalValue: 10000000,
				Invested:   8000000,
				Available:  2000000,
				DailyPnL:   150000,
				WeeklyPnL:  500000,
				MonthlyPnL: 1500000,
				YearlyPnL:  5000000,
			},
			RiskMetrics: RiskMetrics{
				VaR:               200000,
				ExpectedShortfall: 300000,
				StressTestResults: StressTestResults{
					MarketCrash:    -2500000,
					HighVolatility: -1500000,
					Recession:      -2000000,
				},
			},
			LastUpdated: now,
		},
	}
}
