package entity

// StrategyID は登録済みストラテジーの識別子です。
type StrategyID string

const (
	TrendlineBreakout StrategyID = "trendline_breakout"
	RSI               StrategyID = "rsi"
	MACrossover       StrategyID = "ma_crossover"
	BollingerBands    StrategyID = "bollinger_bands"
	VolumeSpike       StrategyID = "volume_spike"
)

type ParamType string

const (
	ParamInt   ParamType = "int"
	ParamFloat ParamType = "float"
	ParamEnum  ParamType = "enum"
)

// ParamSpec はストラテジーパラメータ1つ分の型・既定値・範囲を表します。
// Enumの場合はMin/Maxを使わずOptionsで値を制限します。
type ParamSpec struct {
	Name        string
	Type        ParamType
	Default     string
	Min         float64
	Max         float64
	Options     []string
	Description string
}

// Descriptor はストラテジー一覧APIで公開するメタデータです。
type Descriptor struct {
	ID          StrategyID
	Name        string
	Description string
	Category    string
	Params      []ParamSpec
}
