// Package snr provides the WSJT-X-style dB estimate reported alongside
// a decode: a quick pre-decode figure derived from the coarse sync
// score, used the same way WSJT-X's ft8d.f90 reports an initial SNR
// before the transmitted tones are known.
package snr

import "math"

// EstimateFromSyncScore converts a sync8.Candidate's score into an
// approximate dB SNR, clamped to WSJT-X's [-24, 99] reporting range.
// Ported from audio_extensions/ft8/snr.go's CalculateSNRFromSync
// (itself a port of WSJT-X's ft8d.f90 line 53:
// nsnr = min(99, nint(10*log10(sync) - 25.5))), which expects WSJT-X's
// own linear matched-filter sync statistic as input; sync8.Candidate's
// score is this core's own dB neighbor-contrast figure, not that exact
// quantity, so this is an approximate analog using the same formula
// and clamp, not a calibrated reproduction of WSJT-X's reported dB.
func EstimateFromSyncScore(score float64) float64 {
	if score <= 0 {
		return -24.0
	}

	db := 10*math.Log10(score) - 25.5
	if db > 99.0 {
		db = 99.0
	}
	if db < -24.0 {
		db = -24.0
	}
	return db
}
