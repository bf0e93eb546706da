package entity

// MatchedLot は1つの売りが1つの買いロットを（部分的に）消化した結果です。
type MatchedLot struct {
	Asset         string
	BuyTradeID    string
	SellTradeID   string
	BuyPrice      float64
	SellPrice     float64
	Quantity      float64
	Profit        float64
	ProfitPct     float64
	IsWin         bool
	BuyTimestamp  int64
	SellTimestamp int64
}

// UnmatchedSell は対応する買いロットがなかった売り数量です。エラーではなく警告として報告します。
type UnmatchedSell struct {
	TradeID   string
	Asset     string
	Timestamp int64
	Price     float64
	Quantity  float64
}

// OpenLot は計算終了時点で未消化の買いロットです。
type OpenLot struct {
	TradeID   string
	Quantity  float64
	Price     float64
	Timestamp int64
}

type Stats struct {
	TradeCount  int
	Wins        int
	Losses      int
	WinRate     float64
	AverageWin  float64
	AverageLoss float64
	TotalPnL    float64
	Best        *MatchedLot
	Worst       *MatchedLot
}

type AssetBreakdown struct {
	Asset string
	Stats Stats
}

// Report はFIFO照合の結果一式です。
type Report struct {
	MatchedLots      []MatchedLot
	TotalRealizedPnL float64
	PerAsset         []AssetBreakdown
	Summary          Stats
	OpenLots         map[string][]OpenLot
	Unmatched        []UnmatchedSell
}

// DailyPnL は売却日（UTC）ごとの実現損益です。
type DailyPnL struct {
	Date   string
	PnL    float64
	Trades int
	Wins   int
	Losses int
}
