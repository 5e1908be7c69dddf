// Package domain 市场资讯卡片
package domain

import "time"

// Impact 对市场的影响方向
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNeutral  Impact = "neutral"
	ImpactNegative Impact = "negative"
)

// MarketUpdate 市场资讯，每次请求即时生成，不持久化
type MarketUpdate struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Impact      Impact    `json:"impact"`
	Category    string    `json:"category"`
}

type feedItem struct {
	title       string
	description string
	impact      Impact
	category    string
	hoursAgo    int
}

var feed = []feedItem{
	{
		title:       "Fed Announces Interest Rate Decision",
		description: "The Federal Reserve maintains interest rates steady at 5.25-5.50% range, signaling potential cuts later in the year as inflation shows signs of cooling.",
		impact:      ImpactPositive,
		category:    "Monetary Policy",
		hoursAgo:    2,
	},
	{
		title:       "Tech Sector Rally",
		description: "Major tech stocks surge on strong earnings reports and AI developments. NVIDIA reaches new all-time high.",
		impact:      ImpactPositive,
		category:    "Market Trends",
		hoursAgo:    4,
	},
	{
		title:       "Oil Prices Volatility",
		description: "Crude oil prices experience volatility amid geopolitical tensions in the Middle East and concerns over global demand.",
		impact:      ImpactNegative,
		category:    "Commodities",
		hoursAgo:    6,
	},
	{
		title:       "European Markets Update",
		description: "European stocks trade mixed as ECB signals continuation of tight monetary policy to combat inflation.",
		impact:      ImpactNeutral,
		category:    "Global Markets",
		hoursAgo:    8,
	},
	{
		title:       "Crypto Market Analysis",
		description: "Bitcoin and major cryptocurrencies show strong momentum following spot ETF approvals and institutional adoption.",
		impact:      ImpactPositive,
		category:    "Cryptocurrency",
		hoursAgo:    10,
	},
	{
		title:       "Manufacturing PMI Data",
		description: "Latest manufacturing PMI data indicates continued expansion in the sector, though at a slower pace than previous month.",
		impact:      ImpactNeutral,
		category:    "Economic Indicators",
		hoursAgo:    12,
	},
	{
		title:       "Retail Sector Earnings",
		description: "Major retailers report mixed Q4 earnings, with online sales showing strength while brick-and-mortar faces challenges.",
		impact:      ImpactNegative,
		category:    "Earnings",
		hoursAgo:    14,
	},
	{
		title:       "AI Sector Development",
		description: "New breakthroughs in artificial intelligence drive investment surge in tech companies focused on AI development.",
		impact:      ImpactPositive,
		category:    "Technology",
		hoursAgo:    16,
	},
}

// UpdatesAt 以 now 为基准生成资讯，时间戳为 now 减去整小时偏移
func UpdatesAt(now time.Time) []MarketUpdate {
	out := make([]MarketUpdate, len(feed))
	for i, item := range feed {
		out[i] = MarketUpdate{
			ID:          i + 1,
			Title:       item.title,
			Description: item.description,
			Timestamp:   now.Add(-time.Duration(item.hoursAgo) * time.Hour),
			Impact:      item.impact,
			Category:    item.category,
		}
	}
	return out
}
