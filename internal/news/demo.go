package news

import "time"

var demoArticles = []Article{
	{Title: "S&P 500 Hits New Record High as Tech Stocks Rally", Source: "Financial Times", URL: "https://www.ft.com/markets"},
	{Title: "Federal Reserve Signals Potential Rate Cut in September", Source: "Wall Street Journal", URL: "https://www.wsj.com/news/markets"},
	{Title: "Apple Reports Strong Q3 Earnings, Stock Up 5%", Source: "Reuters", URL: "https://www.reuters.com/markets"},
	{Title: "Tesla Announces New Battery Technology Breakthrough", Source: "Bloomberg", URL: "https://www.bloomberg.com/markets"},
	{Title: "Oil Prices Surge on Middle East Tensions", Source: "CNBC", URL: "https://www.cnbc.com/markets"},
	{Title: "Microsoft Cloud Revenue Exceeds Expectations", Source: "MarketWatch", URL: "https://www.marketwatch.com"},
	{Title: "Bitcoin Reaches $50,000 as Institutional Adoption Grows", Source: "CoinDesk", URL: "https://www.coindesk.com"},
	{Title: "Goldman Sachs Upgrades Market Outlook for 2024", Source: "Yahoo Finance", URL: "https://finance.yahoo.com"},
}

// demoHeadlines stamps the demo articles two hours apart, newest first.
func demoHeadlines(now time.Time) *HeadlinesResult {
	articles := make([]Article, len(demoArticles))
	for i, a := range demoArticles {
		a.PublishedAt = now.Add(-time.Duration(2*i) * time.Hour).Format(time.RFC3339)
		articles[i] = a
	}
	return &HeadlinesResult{
		Status:       "ok",
		TotalResults: len(articles),
		Articles:     articles,
		DemoMode:     true,
	}
}
