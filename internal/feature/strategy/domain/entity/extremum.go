// Package entity はシグナル生成で扱う派生エンティティを定義します。
// いずれもリクエストごとに再計算され、永続化されません。
package entity

// ExtremumKind は局所極値の種類です。
type ExtremumKind string

const (
	Top    ExtremumKind = "TOP"
	Bottom ExtremumKind = "BOTTOM"
)

// Extremum はローソク足系列上の局所高値・安値です。
type Extremum struct {
	Index     int
	Timestamp int64
	Price     float64
	Kind      ExtremumKind
}
