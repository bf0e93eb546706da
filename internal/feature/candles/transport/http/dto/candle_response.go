package dto

// CandleResponse はローソク足データのレスポンスDTOです。
type CandleResponse struct {
	Timestamp int64   `json:"timestamp"` // 始値時刻（ミリ秒）
	Time      string  `json:"time"`      // 始値時刻（RFC3339, UTC）
	Open      float64 `json:"open"`      // 始値
	High      float64 `json:"high"`      // 高値
	Low       float64 `json:"low"`       // 安値
	Close     float64 `json:"close"`     // 終値
	Volume    float64 `json:"volume"`    // 出来高
}
