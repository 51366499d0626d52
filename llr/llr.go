// Package llr extracts the 174 channel log-likelihood ratios that
// feed the LDPC decoder (spec.md §4.F), from the demodulator's 79x8
// tone-power matrix and the Gray-coded tone mapping.
//
// Ported from audio_extensions/ft8/extract.go's extractSymbolFT8 /
// normalizeLikelihood, dropping the FT4 branch (ambient per-mode
// plumbing the teacher kept regardless of spec.md's FT8-only scope)
// and its verbose per-symbol debug logging, generalized to read the
// demod package's ToneMatrix instead of the teacher's flat uint8
// waterfall magnitude buffer.
package llr

import (
	"math"

	"github.com/cwsl/ft8core/demod"
	"github.com/cwsl/ft8core/ftx"
)

// defaultTargetVariance is the teacher's empirically fixed
// normalization target (ft8_lib-derived).
const defaultTargetVariance = 24.0

// Extract returns 174 variance-normalized soft bits, three per data
// symbol across the two 29-symbol data spans, Costas symbols skipped,
// scaled to the teacher's default target variance of 24.
func Extract(tm *demod.ToneMatrix) []float64 {
	return ExtractWithTarget(tm, defaultTargetVariance)
}

// ExtractWithTarget is Extract with the normalization target variance
// exposed, for the spec's open-ended "LLR pre-scale factor" tunable
// (Config.LLRScale) — a caller decoding consistently weaker or
// stronger signals than the teacher's original tuning can retarget the
// same max-log extraction without touching this package.
func ExtractWithTarget(tm *demod.ToneMatrix, targetVariance float64) []float64 {
	llr := make([]float64, ftx.LDPCN)

	ranges := ftx.DataSymbolRanges()
	bitIdx := 0
	for _, r := range ranges {
		for sym := r[0]; sym < r[1]; sym++ {
			extractSymbol(tm.Power[sym], llr[bitIdx:bitIdx+3])
			bitIdx += 3
		}
	}

	normalize(llr, targetVariance)
	return llr
}

// extractSymbol computes the 3 soft bits of one 8-FSK symbol: each bit
// splits the Gray-mapped tones into two groups of 4, and the soft
// value is the max log-power in the bit=1 group minus the max in the
// bit=0 group.
func extractSymbol(power [ftx.NumTones]float64, bits []float64) {
	var s [ftx.NumTones]float64
	for j := 0; j < ftx.NumTones; j++ {
		s[j] = power[ftx.GrayMap[j]]
	}

	bits[0] = max4(s[4], s[5], s[6], s[7]) - max4(s[0], s[1], s[2], s[3])
	bits[1] = max4(s[2], s[3], s[6], s[7]) - max4(s[0], s[1], s[4], s[5])
	bits[2] = max4(s[1], s[3], s[5], s[7]) - max4(s[0], s[2], s[4], s[6])
}

// normalize rescales llr in place so its variance matches target, the
// empirically chosen scale ft8_lib-derived decoders use so the
// belief-propagation decoder's fastTanh clamping behaves consistently
// across signal strengths.
func normalize(llr []float64, target float64) {
	var sum, sum2 float64
	n := float64(len(llr))
	for _, v := range llr {
		sum += v
		sum2 += v * v
	}
	variance := (sum2 - sum*sum/n) / n
	if variance <= 0 {
		return
	}
	scale := math.Sqrt(target / variance)
	for i := range llr {
		llr[i] *= scale
	}
}

func max4(a, b, c, d float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	if d > m {
		m = d
	}
	return m
}
