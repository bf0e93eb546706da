package trendline

import (
	"math"
	"slices"

	"crypto_backend/internal/feature/strategy/domain/entity"
)

const (
	// DefaultTolerance は外れ値とみなす残差の標準偏差倍率です。
	DefaultTolerance = 2.0

	residualEpsilon = 1e-9
)

// FitTrendline はkindに対応する極値のうち直近lookback個に最小二乗法で直線を当てはめます。
//
// 残差の絶対値が最大の点がtolerance×σ（母標準偏差）を超え、かつ3点以上残っている間は
// その点を除外して再計算します。絶対値が同じ場合はインデックスの小さい点を除外します。
// 対象の極値が2点未満ならnilを返します。tolerance<=0はDefaultTolerance、
// lookback<=0は全点を使います。
func FitTrendline(points []entity.Extremum, kind entity.TrendlineKind, lookback int, tolerance float64) *entity.Trendline {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	src := kind.SourceKind()
	var pts []entity.Extremum
	for _, p := range points {
		if p.Kind == src {
			pts = append(pts, p)
		}
	}
	slices.SortStableFunc(pts, func(a, b entity.Extremum) int { return a.Index - b.Index })
	if lookback > 0 && len(pts) > lookback {
		pts = pts[len(pts)-lookback:]
	}
	if len(pts) < 2 {
		return nil
	}

	slope, intercept := ols(pts)
	for len(pts) > 2 {
		worst, worstAbs, sigma := worstResidual(pts, slope, intercept)
		if worstAbs < residualEpsilon || worstAbs <= tolerance*sigma {
			break
		}
		pts = slices.Delete(pts, worst, worst+1)
		slope, intercept = ols(pts)
	}

	return &entity.Trendline{
		Kind:       kind,
		Slope:      slope,
		Intercept:  intercept,
		FittedFrom: pts[0].Index,
		FittedTo:   pts[len(pts)-1].Index,
		Points:     len(pts),
	}
}

// ols は (index, price) の単回帰を計算します。xの分散が0の場合は水平線を返します。
func ols(pts []entity.Extremum) (slope, intercept float64) {
	n := float64(len(pts))
	var mx, my float64
	for _, p := range pts {
		mx += float64(p.Index)
		my += p.Price
	}
	mx /= n
	my /= n

	var sxy, sxx float64
	for _, p := range pts {
		dx := float64(p.Index) - mx
		sxy += dx * (p.Price - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, my
	}
	slope = sxy / sxx
	return slope, my - slope*mx
}

// worstResidual は残差の絶対値が最大の点の位置・その絶対値・残差の母標準偏差を返します。
func worstResidual(pts []entity.Extremum, slope, intercept float64) (int, float64, float64) {
	res := make([]float64, len(pts))
	var mean float64
	for i, p := range pts {
		res[i] = p.Price - (slope*float64(p.Index) + intercept)
		mean += res[i]
	}
	mean /= float64(len(res))

	var ss float64
	worst, worstAbs := 0, -1.0
	for i, r := range res {
		ss += (r - mean) * (r - mean)
		if a := math.Abs(r); a > worstAbs {
			worst, worstAbs = i, a
		}
	}
	return worst, worstAbs, math.Sqrt(ss / float64(len(res)))
}
