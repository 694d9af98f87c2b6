package profile

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"datalens/domain/core"
)

// SummaryStats holds the describe-style statistics for one numeric column
type SummaryStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// DistributionStats characterizes the shape of a numeric column
type DistributionStats struct {
	Skewness    float64 `json:"skewness"`
	Kurtosis    float64 `json:"kurtosis"`
	IsNormal    bool    `json:"is_normal"`
	NormalityP  float64 `json:"normality_p"`
	OutlierRows int     `json:"outlier_rows"`
}

// ColumnBrief bundles everything computed for one numeric column
type ColumnBrief struct {
	Name         string            `json:"name"`
	Summary      SummaryStats      `json:"summary"`
	Distribution DistributionStats `json:"distribution"`
}

// ComputeSummary calculates describe-style statistics for a numeric series
func ComputeSummary(data []float64) (SummaryStats, error) {
	if len(data) == 0 {
		return SummaryStats{}, core.ErrInsufficientData
	}

	mean, _ := stats.Mean(data)
	stdDev, _ := stats.StandardDeviation(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	median, _ := stats.Median(data)
	q25, _ := stats.Percentile(data, 25)
	q75, _ := stats.Percentile(data, 75)

	return SummaryStats{
		Count:  len(data),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Q25:    q25,
		Median: median,
		Q75:    q75,
		Max:    max,
	}, nil
}

// ComputeBrief calculates the full statistical brief for a numeric column
func ComputeBrief(name string, data []float64) (ColumnBrief, error) {
	summary, err := ComputeSummary(data)
	if err != nil {
		return ColumnBrief{}, err
	}

	skew := calculateSkewness(data, summary.Mean, summary.StdDev)
	kurt := calculateKurtosis(data, summary.Mean, summary.StdDev)
	isNormal, pValue := testNormality(data, skew, kurt)

	return ColumnBrief{
		Name:    name,
		Summary: summary,
		Distribution: DistributionStats{
			Skewness:    skew,
			Kurtosis:    kurt,
			IsNormal:    isNormal,
			NormalityP:  pValue,
			OutlierRows: countIQROutliers(data, summary.Q25, summary.Q75),
		},
	}, nil
}

// calculateSkewness computes sample skewness (third standardized moment)
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	n := float64(len(data))
	if n < 3 || stdDev == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		z := (v - mean) / stdDev
		sum += z * z * z
	}
	return (n / ((n - 1) * (n - 2))) * sum
}

// calculateKurtosis computes excess kurtosis (fourth standardized moment minus 3)
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	n := float64(len(data))
	if n < 4 || stdDev == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		z := (v - mean) / stdDev
		sum += z * z * z * z
	}
	adjust := 3 * (n - 1) * (n - 1) / ((n - 2) * (n - 3))
	return ((n * (n + 1)) / ((n - 1) * (n - 2) * (n - 3)))*sum - adjust
}

// testNormality runs a Jarque-Bera test against a chi-squared distribution
// with 2 degrees of freedom. Small samples are treated as inconclusive.
func testNormality(data []float64, skew, excessKurt float64) (bool, float64) {
	n := float64(len(data))
	if n < 8 {
		return false, 0
	}
	jb := (n / 6) * (skew*skew + (excessKurt*excessKurt)/4)
	chi2 := distuv.ChiSquared{K: 2}
	pValue := 1 - chi2.CDF(jb)
	if math.IsNaN(pValue) {
		return false, 0
	}
	return pValue > 0.05, pValue
}

// countIQROutliers counts values outside 1.5 IQR fences
func countIQROutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr
	count := 0
	for _, v := range data {
		if v < lower || v > upper {
			count++
		}
	}
	return count
}
