package cohort

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// parseLabValue accepts plain decimal numbers only. Censored values such as
// ">1000" or "<0.5" are not numbers for cohort statistics.
func parseLabValue(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// meanStdDev returns the mean and population standard deviation.
func meanStdDev(values []float64) (mean, sd float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)))
}

// percentages converts counts to percentages with one decimal that sum to
// exactly 100 (largest remainder method). Ties go to the earlier index.
func percentages(counts []int) []float64 {
	out := make([]float64, len(counts))
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return out
	}

	const units = 1000 // tenths of a percent
	tenths := make([]int, len(counts))
	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(counts))
	assigned := 0
	for i, c := range counts {
		exact := float64(c) * units / float64(total)
		tenths[i] = int(math.Floor(exact))
		assigned += tenths[i]
		rems[i] = rem{idx: i, frac: exact - float64(tenths[i])}
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; assigned < units; i++ {
		tenths[rems[i%len(rems)].idx]++
		assigned++
	}

	for i, t := range tenths {
		out[i] = float64(t) / 10
	}
	return out
}
