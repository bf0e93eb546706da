package trendline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	candleentity "crypto_backend/internal/feature/candles/domain/entity"
	"crypto_backend/internal/feature/strategy/domain/entity"
)

func flat(kind entity.TrendlineKind, level float64, from int) *entity.Trendline {
	return &entity.Trendline{Kind: kind, Intercept: level, FittedFrom: from, FittedTo: from + 10, Points: 2}
}

type sig struct {
	Index  int
	Type   entity.SignalType
	Reason string
}

func sigs(in []entity.Signal) []sig {
	out := make([]sig, 0, len(in))
	for _, s := range in {
		out = append(out, sig{s.Index, s.Type, s.Reason})
	}
	return out
}

func TestGenerateSignals(t *testing.T) {
	t.Parallel()

	support := flat(entity.Support, 95, 0)
	resistance := flat(entity.Resistance, 105, 0)

	tests := []struct {
		name       string
		closes     []float64
		support    *entity.Trendline
		resistance *entity.Trendline
		extrema    []entity.Extremum
		window     int
		want       []sig
	}{
		{
			name:       "breakout then support breakdown wins over resistance breakdown",
			closes:     []float64{100, 106, 94},
			support:    support,
			resistance: resistance,
			want: []sig{
				{1, entity.Buy, entity.ReasonResistanceBreakout},
				{2, entity.Sell, entity.ReasonSupportBreakdown},
			},
		},
		{
			name:       "failed breakout",
			closes:     []float64{100, 106, 100},
			support:    support,
			resistance: resistance,
			want: []sig{
				{1, entity.Buy, entity.ReasonResistanceBreakout},
				{2, entity.Sell, entity.ReasonResistanceBreakdown},
			},
		},
		{
			name:       "support reclaim buys, dip while flat is ignored",
			closes:     []float64{100, 94, 96},
			support:    support,
			resistance: resistance,
			want:       []sig{{2, entity.Buy, entity.ReasonSupportBreakout}},
		},
		{
			name:       "touching the line is not a cross",
			closes:     []float64{100, 105, 106},
			support:    support,
			resistance: resistance,
			want:       []sig{},
		},
		{
			name:       "line inactive before fitted range",
			closes:     []float64{100, 106, 100, 106},
			resistance: flat(entity.Resistance, 105, 2),
			want:       []sig{{3, entity.Buy, entity.ReasonResistanceBreakout}},
		},
		{
			name:   "nil lines never cross",
			closes: []float64{100, 106, 94, 106},
			want:   []sig{},
		},
		{
			name:       "confirmed level break",
			closes:     []float64{100, 106, 109, 107},
			resistance: resistance,
			extrema:    []entity.Extremum{{Index: 0, Price: 108, Kind: entity.Top}},
			window:     1,
			want: []sig{
				{1, entity.Buy, entity.ReasonResistanceBreakout},
				{3, entity.Sell, entity.ReasonLevelBreak},
			},
		},
		{
			name:       "unconfirmed extremum is ignored",
			closes:     []float64{100, 106, 109, 107},
			resistance: resistance,
			extrema:    []entity.Extremum{{Index: 2, Price: 108, Kind: entity.Top}},
			window:     1,
			want:       []sig{{1, entity.Buy, entity.ReasonResistanceBreakout}},
		},
		{
			name:   "empty input",
			closes: nil,
			want:   []sig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := GenerateSignals(fromCloses(tt.closes...), tt.support, tt.resistance, tt.extrema, tt.window)
			assert.Equal(t, tt.want, sigs(got))
		})
	}
}

func TestGenerateSignals_StampsCandle(t *testing.T) {
	t.Parallel()

	candles := fromCloses(100, 106)
	got := GenerateSignals(candles, nil, flat(entity.Resistance, 105, 0), nil, 1)

	require.Len(t, got, 1)
	assert.Equal(t, candles[1].Timestamp, got[0].Timestamp)
	assert.Equal(t, 106.0, got[0].Price)
}

// TestGenerateSignals_Cardinality はランダムウォーク上でシグナルが1足1つ以下かつBUY/SELL交互であることを検証します。
func TestGenerateSignals_Cardinality(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		closes := make([]float64, 400)
		price := 100.0
		for i := range closes {
			price += rng.NormFloat64()
			closes[i] = price
		}
		candles := fromCloses(closes...)

		s := New(Params{WindowOrder: 3, LookbackCount: 20, Tolerance: DefaultTolerance})
		extrema, err := s.DetectExtrema(candles)
		require.NoError(t, err)
		support, resistance := s.FitTrendlines(extrema)
		got := s.GenerateSignals(candles, extrema, support, resistance)

		prevIndex := 0
		for k, sg := range got {
			assert.Greater(t, sg.Index, prevIndex, "seed %d: indices must strictly increase", seed)
			prevIndex = sg.Index
			if k%2 == 0 {
				assert.Equal(t, entity.Buy, sg.Type, "seed %d", seed)
			} else {
				assert.Equal(t, entity.Sell, sg.Type, "seed %d", seed)
			}
		}
	}
}

// breakoutCandles は4つの安値（5,15,25,35）と3つの高値（10,20,30）を持ち、
// 40本目で水平レジスタンス110.5を上抜ける50本の系列です。
func breakoutCandles() []candleentity.Candle {
	anchors := []struct {
		i int
		v float64
	}{
		{0, 108}, {5, 100}, {10, 110}, {15, 102}, {20, 110}, {25, 104.04},
		{30, 110}, {35, 106.1208}, {39, 110}, {40, 112}, {49, 116.5},
	}
	out := make([]candleentity.Candle, 50)
	for k := 0; k+1 < len(anchors); k++ {
		a, b := anchors[k], anchors[k+1]
		for i := a.i; i <= b.i; i++ {
			c := a.v + (b.v-a.v)*float64(i-a.i)/float64(b.i-a.i)
			out[i] = candleentity.Candle{
				Symbol:    "BTC/USDT",
				Timeframe: "1h",
				Timestamp: 1_704_067_200_000 + int64(i)*3_600_000,
				Open:      c,
				High:      c + 0.5,
				Low:       c - 0.5,
				Close:     c,
				Volume:    1,
			}
		}
	}
	return out
}

func TestStrategy_EndToEndBreakout(t *testing.T) {
	t.Parallel()

	candles := breakoutCandles()
	s := New(Params{WindowOrder: 4, LookbackCount: 30, Tolerance: DefaultTolerance})
	require.Equal(t, 38, s.MinCandles())

	extrema, err := s.DetectExtrema(candles)
	require.NoError(t, err)
	assert.Equal(t, []kindAt{
		{5, entity.Bottom}, {10, entity.Top}, {15, entity.Bottom}, {20, entity.Top},
		{25, entity.Bottom}, {30, entity.Top}, {35, entity.Bottom},
	}, kinds(extrema))

	support, resistance := s.FitTrendlines(extrema)
	require.NotNil(t, support)
	require.NotNil(t, resistance)

	assert.InDelta(t, 0, resistance.Slope, 1e-9)
	assert.InDelta(t, 110.5, resistance.Intercept, 1e-9)
	assert.Equal(t, 10, resistance.FittedFrom)
	assert.Equal(t, 30, resistance.FittedTo)
	assert.Equal(t, 3, resistance.Points)

	assert.InDelta(t, 0.204024, support.Slope, 1e-9)
	assert.InDelta(t, 98.45972, support.Intercept, 1e-6)
	assert.Equal(t, 5, support.FittedFrom)
	assert.Equal(t, 35, support.FittedTo)
	assert.Equal(t, 4, support.Points)

	signals := s.GenerateSignals(candles, extrema, support, resistance)
	assert.Equal(t, []sig{{40, entity.Buy, entity.ReasonResistanceBreakout}}, sigs(signals))
	assert.Equal(t, entity.Long, entity.FinalPosition(signals))
}
