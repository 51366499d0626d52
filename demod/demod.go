// Package demod implements the symbol demodulator (spec.md §4.E): it
// mixes a downmixed baseband down to exact DC using the fine-sync
// frequency offset, re-STFTs it symbol-by-symbol with a boxcar window
// and produces the 79x8 tone-power dB matrix later stages read.
//
// Grounded on audio_extensions/ft8/extract.go's per-symbol tone-power
// loop, adapted to run off the downmix/finesync baseband instead of
// directly off the coarse waterfall, per spec.md §4.E step 2's boxcar
// (rectangular) window requirement.
package demod

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwsl/ft8core/downmix"
	"github.com/cwsl/ft8core/finesync"
	"github.com/cwsl/ft8core/ftx"
)

// ToneMatrix is the dB tone-power grid spec.md §4.E produces: one row
// per channel symbol (79 rows), one column per FT8 tone (8 columns).
type ToneMatrix struct {
	Power [ftx.NumSymbols][ftx.NumTones]float64
}

// Demodulate mixes bb to DC using fine's residual offset, then
// computes one boxcar-windowed single-symbol DFT per channel symbol,
// evaluated at the 8 tone frequencies, in dB.
func Demodulate(bb *downmix.Baseband, fine finesync.Result) (*ToneMatrix, error) {
	freqCorrectionHz := bb.F0Down + fine.DeltaFreqHz
	omega := 2 * math.Pi * freqCorrectionHz / bb.SampleRate

	mixed := make([]complex128, len(bb.Samples))
	for i, s := range bb.Samples {
		phase := complex(math.Cos(-omega*float64(i)), math.Sin(-omega*float64(i)))
		mixed[i] = s * phase
	}

	symSize := bb.SymbolSize
	start0 := fine.DeltaTimeSamples
	needed := start0 + symSize*ftx.NumSymbols
	if start0 < 0 || needed > len(mixed) {
		return nil, fmt.Errorf("demod: baseband does not hold %d symbols at offset %d (need %d, have %d)",
			ftx.NumSymbols, start0, needed, len(mixed))
	}

	cfft := fourier.NewCmplxFFT(symSize)
	var tm ToneMatrix

	for sym := 0; sym < ftx.NumSymbols; sym++ {
		start := start0 + sym*symSize
		segment := mixed[start : start+symSize]

		spectrum := cfft.Coefficients(nil, segment)
		for tone := 0; tone < ftx.NumTones; tone++ {
			mag := cmplxAbs(spectrum[tone])
			tm.Power[sym][tone] = 20 * math.Log10(mag+1e-12)
		}
	}

	normalizeColumns(&tm)
	return &tm, nil
}

// normalizeColumns subtracts, from every symbol row, the row's own
// peak dB power (spec.md §4.E: each symbol's 8 entries end up <= 0 dB),
// matching extract.go's per-symbol normalization so absolute gain
// differences between candidates don't bias soft bits.
func normalizeColumns(tm *ToneMatrix) {
	for sym := 0; sym < ftx.NumSymbols; sym++ {
		peak := tm.Power[sym][0]
		for tone := 1; tone < ftx.NumTones; tone++ {
			if tm.Power[sym][tone] > peak {
				peak = tm.Power[sym][tone]
			}
		}
		for tone := 0; tone < ftx.NumTones; tone++ {
			tm.Power[sym][tone] -= peak
		}
	}
}

func cmplxAbs(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}
