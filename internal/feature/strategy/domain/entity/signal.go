package entity

type SignalType string

const (
	Buy  SignalType = "BUY"
	Sell SignalType = "SELL"
	Hold SignalType = "HOLD"
)

type Position string

const (
	Flat Position = "FLAT"
	Long Position = "LONG"
)

// シグナル発生理由
const (
	ReasonResistanceBreakout  = "resistance_breakout"
	ReasonSupportBreakout     = "support_breakout"
	ReasonSupportBreakdown    = "support_breakdown"
	ReasonResistanceBreakdown = "resistance_breakdown"
	ReasonLevelBreak          = "level_break"

	ReasonRSIOversold     = "rsi_oversold"
	ReasonRSIOverbought   = "rsi_overbought"
	ReasonRSIMomentumLoss = "rsi_momentum_loss"
	ReasonGoldenCross     = "golden_cross"
	ReasonDeathCross      = "death_cross"

	ReasonBollingerLower       = "bollinger_lower_band"
	ReasonBollingerUpper       = "bollinger_upper_band"
	ReasonBollingerMiddleCross = "bollinger_middle_cross"

	ReasonVolumeSpikeBullish = "volume_spike_bullish"
	ReasonVolumeSpikeBearish = "volume_spike_bearish"
	ReasonTakeProfit         = "take_profit"
	ReasonStopLoss           = "stop_loss"
	ReasonMaxHold            = "max_hold"
)

// Signal は1本のローソク足で発生した売買シグナルです。
type Signal struct {
	Index     int
	Timestamp int64
	Price     float64
	Type      SignalType
	Reason    string
}

// FinalPosition はシグナル列を先頭から適用した後のポジションを返します。
func FinalPosition(signals []Signal) Position {
	if len(signals) > 0 && signals[len(signals)-1].Type == Buy {
		return Long
	}
	return Flat
}
