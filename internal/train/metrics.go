package train

import "math"

// Top-1 accuracy alone undersells a chord model: several chords are often
// plausible continuations of the same progression, so the monitored
// metric counts a prediction correct when the true chord is anywhere in
// the top k outputs.
const topKRank = 3

func argmax(vec []float32) int {
	maxIdx := 0
	maxVal := vec[0]
	for i, v := range vec {
		if v > maxVal {
			maxIdx = i
			maxVal = v
		}
	}
	return maxIdx
}

// inTopK reports whether target is among the k highest-scored entries.
func inTopK(vec []float32, target, k int) bool {
	if target < 0 || target >= len(vec) {
		return false
	}
	higher := 0
	for i, v := range vec {
		if i == target {
			continue
		}
		// Ties resolve in favor of the lower index, matching argmax.
		if v > vec[target] || (v == vec[target] && i < target) {
			higher++
			if higher >= k {
				return false
			}
		}
	}
	return true
}

// crossEntropy is the negative log probability assigned to the true
// chord, clamped away from zero so an overconfident wrong prediction
// does not produce Inf.
func crossEntropy(probs []float32, target int) float64 {
	const eps = 1e-12
	p := float64(probs[target])
	if p < eps {
		p = eps
	}
	return -math.Log(p)
}
