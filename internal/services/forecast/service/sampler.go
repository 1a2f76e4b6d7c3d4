package service

import "time"

// sampleRate estimates current units per hour from a trailing event window
//
// an empty window falls back to the target rate; sampled rates above
// clampFactor x target are treated as bursty duplicate-timestamp artifacts
// and discarded in favor of the target as well
func sampleRate(count int64, window time.Duration, targetPPH, clampFactor float64) float64 {
	if count <= 0 || window <= 0 {
		return targetPPH
	}
	rate := float64(count) / window.Minutes() * 60
	if rate <= 0 {
		return targetPPH
	}
	if clampFactor > 0 && targetPPH > 0 && rate > clampFactor*targetPPH {
		return targetPPH
	}
	return rate
}
