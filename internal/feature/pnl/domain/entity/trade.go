// Package entity はP&L計算で扱うエンティティを定義します。
package entity

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade は約定済みの取引です。台帳からは読み取り専用として扱います。
type Trade struct {
	ID        string
	Timestamp int64 // 約定時刻（ミリ秒）
	Symbol    string
	Side      Side
	Price     float64
	Quantity  float64
	Value     float64 // 約定代金（price * quantity）
}

// TradeFilter はトレード取得時の絞り込み条件です。ゼロ値は無条件を表します。
type TradeFilter struct {
	Symbol string
	Since  int64
	Limit  int
	Offset int
}
