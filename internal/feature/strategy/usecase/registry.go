package usecase

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain"
	"crypto_backend/internal/feature/strategy/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/momentum"
	"crypto_backend/internal/feature/strategy/domain/trendline"
)

// Strategy は登録済みストラテジーが共通して実装する3段階パイプラインです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Strategy interface {
	// MinCandles は分析に必要な最小本数です。
	MinCandles() int
	DetectExtrema(candles []candleentity.Candle) ([]entity.Extremum, error)
	FitTrendlines(extrema []entity.Extremum) (support, resistance *entity.Trendline)
	GenerateSignals(candles []candleentity.Candle, extrema []entity.Extremum, support, resistance *entity.Trendline) []entity.Signal
}

var (
	_ Strategy = (*trendline.Strategy)(nil)
	_ Strategy = (*momentum.RSIStrategy)(nil)
	_ Strategy = (*momentum.CrossoverStrategy)(nil)
	_ Strategy = (*momentum.BollingerStrategy)(nil)
	_ Strategy = (*momentum.VolumeSpikeStrategy)(nil)
)

var registry = []entity.Descriptor{
	{
		ID:          entity.TrendlineBreakout,
		Name:        "Trendline Breakout",
		Description: "Fits support and resistance lines through recent swing lows and highs and trades breakouts.",
		Category:    "technical",
		Params: []entity.ParamSpec{
			{Name: "window_order", Type: entity.ParamInt, Default: "4", Min: 1, Max: 20, Description: "candles on each side a swing point must dominate"},
			{Name: "lookback_count", Type: entity.ParamInt, Default: "30", Min: 2, Max: 100, Description: "most recent swing points used per line"},
			{Name: "tolerance", Type: entity.ParamFloat, Default: "2", Min: 0.5, Max: 5, Description: "outlier threshold in standard deviations"},
		},
	},
	{
		ID:          entity.RSI,
		Name:        "RSI Reversal",
		Description: "Buys when RSI falls into oversold territory and exits on overbought or loss of momentum.",
		Category:    "momentum",
		Params: []entity.ParamSpec{
			{Name: "period", Type: entity.ParamInt, Default: "14", Min: 2, Max: 50},
			{Name: "overbought", Type: entity.ParamFloat, Default: "70", Min: 50, Max: 100},
			{Name: "oversold", Type: entity.ParamFloat, Default: "30", Min: 0, Max: 50},
		},
	},
	{
		ID:          entity.MACrossover,
		Name:        "Moving Average Crossover",
		Description: "Buys on a golden cross of the fast average over the slow one and exits on a death cross.",
		Category:    "trend",
		Params: []entity.ParamSpec{
			{Name: "fast_period", Type: entity.ParamInt, Default: "10", Min: 2, Max: 100},
			{Name: "slow_period", Type: entity.ParamInt, Default: "30", Min: 3, Max: 400},
			{Name: "ma_type", Type: entity.ParamEnum, Default: "sma", Options: []string{"sma", "ema"}},
		},
	},
	{
		ID:          entity.BollingerBands,
		Name:        "Bollinger Bands",
		Description: "Buys when the close touches the lower band and exits at the upper band or on a drop through the middle line.",
		Category:    "volatility",
		Params: []entity.ParamSpec{
			{Name: "period", Type: entity.ParamInt, Default: "20", Min: 10, Max: 50},
			{Name: "std_dev", Type: entity.ParamFloat, Default: "2", Min: 1.5, Max: 3, Description: "band width in standard deviations"},
		},
	},
	{
		ID:          entity.VolumeSpike,
		Name:        "Volume Spike",
		Description: "Buys on unusual volume with a bullish candle and exits on a bearish spike, take profit, stop loss or a holding limit.",
		Category:    "volume",
		Params: []entity.ParamSpec{
			{Name: "volume_period", Type: entity.ParamInt, Default: "20", Min: 10, Max: 50},
			{Name: "spike_multiplier", Type: entity.ParamFloat, Default: "2", Min: 1.5, Max: 5},
			{Name: "price_change_threshold", Type: entity.ParamFloat, Default: "0.01", Min: 0.005, Max: 0.03, Description: "minimum open-to-close move as a fraction"},
		},
	},
}

// Descriptors は登録済みストラテジーのメタデータを返します。
func Descriptors() []entity.Descriptor {
	out := make([]entity.Descriptor, len(registry))
	for i, d := range registry {
		d.Params = slices.Clone(d.Params)
		out[i] = d
	}
	return out
}

func lookup(id entity.StrategyID) (entity.Descriptor, bool) {
	for _, d := range registry {
		if d.ID == id {
			return d, true
		}
	}
	return entity.Descriptor{}, false
}

// BuildStrategy はパラメータを検証してストラテジーを生成し、既定値を補完したパラメータと共に返します。
// 定義にないパラメータ名は無視します。
func BuildStrategy(id entity.StrategyID, params map[string]string) (Strategy, map[string]string, error) {
	desc, ok := lookup(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, id)
	}

	values := make(map[string]float64, len(desc.Params))
	resolved := make(map[string]string, len(desc.Params))
	for _, spec := range desc.Params {
		raw := strings.TrimSpace(params[spec.Name])
		if raw == "" {
			raw = spec.Default
		}
		v, canonical, err := parseParam(spec, raw)
		if err != nil {
			return nil, nil, err
		}
		values[spec.Name] = v
		resolved[spec.Name] = canonical
	}

	switch id {
	case entity.TrendlineBreakout:
		return trendline.New(trendline.Params{
			WindowOrder:   int(values["window_order"]),
			LookbackCount: int(values["lookback_count"]),
			Tolerance:     values["tolerance"],
		}), resolved, nil

	case entity.RSI:
		if values["oversold"] >= values["overbought"] {
			return nil, nil, fmt.Errorf("%w: oversold must be below overbought", domain.ErrInvalidParameter)
		}
		return momentum.NewRSI(momentum.RSIParams{
			Period:     int(values["period"]),
			Overbought: values["overbought"],
			Oversold:   values["oversold"],
		}), resolved, nil

	case entity.MACrossover:
		fast, slow := int(values["fast_period"]), int(values["slow_period"])
		if fast >= slow {
			return nil, nil, fmt.Errorf("%w: fast_period %d must be less than slow_period %d", domain.ErrInvalidParameter, fast, slow)
		}
		return momentum.NewCrossover(momentum.CrossoverParams{
			FastPeriod: fast,
			SlowPeriod: slow,
			Type:       momentum.MAType(resolved["ma_type"]),
		}), resolved, nil

	case entity.BollingerBands:
		return momentum.NewBollinger(momentum.BollingerParams{
			Period: int(values["period"]),
			StdDev: values["std_dev"],
		}), resolved, nil

	case entity.VolumeSpike:
		return momentum.NewVolumeSpike(momentum.VolumeSpikeParams{
			VolumePeriod:         int(values["volume_period"]),
			SpikeMultiplier:      values["spike_multiplier"],
			PriceChangeThreshold: values["price_change_threshold"],
		}), resolved, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, id)
}

// parseParam は文字列値を型に従って解釈し、範囲を検証します。
// enumの場合は数値として0を返し、正規化した文字列のみを使います。
func parseParam(spec entity.ParamSpec, raw string) (float64, string, error) {
	switch spec.Type {
	case entity.ParamEnum:
		v := strings.ToLower(raw)
		if !slices.Contains(spec.Options, v) {
			return 0, "", fmt.Errorf("%w: %s must be one of %s, got %q", domain.ErrInvalidParameter, spec.Name, strings.Join(spec.Options, "|"), raw)
		}
		return 0, v, nil

	case entity.ParamInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidParameter, spec.Name, raw)
		}
		if err := inRange(spec, float64(n)); err != nil {
			return 0, "", err
		}
		return float64(n), strconv.Itoa(n), nil

	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, "", fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidParameter, spec.Name, raw)
		}
		if err := inRange(spec, f); err != nil {
			return 0, "", err
		}
		return f, strconv.FormatFloat(f, 'f', -1, 64), nil
	}
}

func inRange(spec entity.ParamSpec, v float64) error {
	if v < spec.Min || v > spec.Max {
		return fmt.Errorf("%w: %s must be between %g and %g, got %g", domain.ErrInvalidParameter, spec.Name, spec.Min, spec.Max, v)
	}
	return nil
}
