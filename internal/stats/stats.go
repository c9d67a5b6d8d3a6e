package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mkeller/ablate/internal/record"
)

// SignificanceLevel is fixed policy: p must be strictly below it.
const SignificanceLevel = 0.05

// ErrBaselineMissing is returned when the designated baseline key is absent
// from the result set. Callers report it and degrade instead of failing.
var ErrBaselineMissing = errors.New("baseline not found in results")

// TestResult holds one two-sample t-test outcome.
type TestResult struct {
	T float64
	P float64
}

// Comparison is the derived record for one non-baseline key, computed fresh
// on every analysis and never persisted.
type Comparison struct {
	Key         string
	AccDiff     float64 // percentage points vs baseline
	TimeDiff    float64 // seconds vs baseline
	TimeDiffPct float64
	Acc         TestResult
	Time        TestResult
	Significant bool
}

// TTest performs an independent two-sample t-test with pooled (equal)
// variance, two-sided. Each sample needs at least two observations.
func TTest(xs, ys []float64) (TestResult, error) {
	if len(xs) < 2 || len(ys) < 2 {
		return TestResult{}, fmt.Errorf("t-test needs at least 2 observations per sample, got %d and %d", len(xs), len(ys))
	}
	nx := float64(len(xs))
	ny := float64(len(ys))
	mx := stat.Mean(xs, nil)
	my := stat.Mean(ys, nil)
	vx := stat.Variance(xs, nil)
	vy := stat.Variance(ys, nil)

	df := nx + ny - 2
	pooled := ((nx-1)*vx + (ny-1)*vy) / df
	se := math.Sqrt(pooled * (1/nx + 1/ny))

	t := (mx - my) / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	return TestResult{T: t, P: p}, nil
}

// Significant reports whether either p-value clears the significance level.
// Exactly 0.05 does not.
func Significant(pAcc, pTime float64) bool {
	return pAcc < SignificanceLevel || pTime < SignificanceLevel
}

// Compare tests every non-baseline key in the set against the baseline.
// Comparisons come back in the set's key order. An absent baseline yields
// ErrBaselineMissing with no comparisons.
func Compare(set *record.Set, baseline string) ([]Comparison, error) {
	base, ok := set.Get(baseline)
	if !ok {
		return nil, ErrBaselineMissing
	}

	var comps []Comparison
	for _, key := range set.Keys {
		if key == baseline {
			continue
		}
		rec := set.Records[key]
		accTest, err := TTest(rec.Accs, base.Accs)
		if err != nil {
			return nil, fmt.Errorf("accuracy test for %s: %w", key, err)
		}
		timeTest, err := TTest(rec.Times, base.Times)
		if err != nil {
			return nil, fmt.Errorf("time test for %s: %w", key, err)
		}
		timeDiff := rec.MeanTime - base.MeanTime
		comps = append(comps, Comparison{
			Key:         key,
			AccDiff:     (rec.MeanAcc - base.MeanAcc) * 100,
			TimeDiff:    timeDiff,
			TimeDiffPct: timeDiff / base.MeanTime * 100,
			Acc:         accTest,
			Time:        timeTest,
			Significant: Significant(accTest.P, timeTest.P),
		})
	}
	return comps, nil
}

// ByKey indexes comparisons for lookup.
func ByKey(comps []Comparison) map[string]Comparison {
	m := make(map[string]Comparison, len(comps))
	for _, c := range comps {
		m[c.Key] = c
	}
	return m
}
