package describe

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionProfile captures shape information beyond the summary
// snapshot, used by the insights report to describe a column.
type DistributionProfile struct {
	IsNormal      bool    `json:"is_normal"`
	NormalPValue  float64 `json:"normal_p_value"`
	ZeroVariance  bool    `json:"zero_variance"`
	SparsityRatio float64 `json:"sparsity_ratio"`
}

// Profile runs a Jarque-Bera style normality approximation over the
// values: the combined skewness/kurtosis statistic is compared against a
// chi-squared distribution with 2 degrees of freedom.
func Profile(values []float64) DistributionProfile {
	p := DistributionProfile{}
	if len(values) < 3 {
		p.NormalPValue = 1.0
		return p
	}

	s := FromValues(values)
	p.ZeroVariance = *s.Variance < 1e-10
	p.SparsityRatio = sparsityRatio(values)

	if p.ZeroVariance {
		// Skewness/kurtosis are NaN for constant columns; the test is
		// meaningless, report non-normal with p=1.
		p.NormalPValue = 1.0
		return p
	}

	testStat := math.Abs(*s.Skewness) + math.Abs(*s.Kurtosis)/2
	chiDist := distuv.ChiSquared{K: 2}
	p.NormalPValue = 1 - chiDist.CDF(testStat*testStat)
	p.IsNormal = p.NormalPValue > 0.05

	return p
}

func sparsityRatio(values []float64) float64 {
	zeros := 0
	for _, v := range values {
		if v == 0 {
			zeros++
		}
	}
	return float64(zeros) / float64(len(values))
}
