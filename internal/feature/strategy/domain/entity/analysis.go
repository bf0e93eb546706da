package entity

// AnalysisResult は1銘柄・1時間足に対するストラテジー実行結果です。
// 実行時刻などの壁時計の値は含まず、同じ入力からは常に同じ結果になります。
type AnalysisResult struct {
	Strategy  StrategyID
	Symbol    string
	Timeframe string
	// Params は既定値を補完した後のパラメータです。
	Params map[string]string

	CurrentSignal SignalType
	Position      Position
	CurrentPrice  float64
	LastTimestamp int64
	CandleCount   int

	Extrema    []Extremum
	Support    *Trendline
	Resistance *Trendline
	Signals    []Signal

	TotalBuySignals  int
	TotalSellSignals int
}

// ScanResult はScanにおける1銘柄分の結果です。ResultかErrのどちらか一方が設定されます。
type ScanResult struct {
	Symbol string
	Result *AnalysisResult
	Err    error
}
