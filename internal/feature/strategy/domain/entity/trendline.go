package entity

// TrendlineKind はトレンドラインの種類です。
type TrendlineKind string

const (
	Support    TrendlineKind = "SUPPORT"
	Resistance TrendlineKind = "RESISTANCE"
)

// SourceKind はトレンドラインの当てはめに使う極値の種類を返します。
// サポートは安値、レジスタンスは高値から引きます。
func (k TrendlineKind) SourceKind() ExtremumKind {
	if k == Support {
		return Bottom
	}
	return Top
}

// Trendline はインデックスを説明変数とした価格の回帰直線です。
// 極値が2点未満の場合は生成されず、nilで表現します。
type Trendline struct {
	Kind      TrendlineKind
	Slope     float64
	Intercept float64
	// FittedFrom, FittedTo は外れ値除去後に残った極値のインデックス範囲です。
	FittedFrom int
	FittedTo   int
	Points     int
}

// ValueAt はインデックスiにおける直線の値を返します。
func (t *Trendline) ValueAt(i int) float64 {
	return t.Slope*float64(i) + t.Intercept
}

// ActiveAt はインデックスjで直線が有効かどうかを返します。nilは常に無効です。
func (t *Trendline) ActiveAt(j int) bool {
	return t != nil && j >= t.FittedFrom
}
