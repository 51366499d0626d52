// Package finesync refines a coarse candidate's (frequency, time)
// offset using the downmixed baseband (spec.md §4.D): a matched-filter
// search over (Δf, Δt) scored by comparing each Costas sync symbol's
// tone power against its two neighboring tones.
//
// No teacher component does this directly; it is grounded on spec.md
// §4.D's algorithm, sharing the Costas-group iteration idiom used in
// sync8 (ported from audio_extensions/ft8/sync.go) and using a Kaiser
// window, which the pack's only window library (gonum/dsp/window)
// does not provide — see DESIGN.md for why that one piece stays on
// stdlib math.
package finesync

import (
	"math"
	"math/cmplx"

	"github.com/cwsl/ft8core/downmix"
	"github.com/cwsl/ft8core/ftx"
)

// Result is the refined offset and its match score.
type Result struct {
	DeltaFreqHz      float64
	DeltaTimeSamples int
	Score            float64
}

// Options configures the search grid; zero fields fall back to
// spec.md §4.D defaults (±3.2 Hz in 0.2 Hz steps, ±sym_size2/2
// samples, Kaiser β=2.0).
type Options struct {
	FreqSpanHz float64
	FreqStepHz float64
	KaiserBeta float64
}

func (o Options) withDefaults() Options {
	if o.FreqSpanHz == 0 {
		o.FreqSpanHz = 3.2
	}
	if o.FreqStepHz == 0 {
		o.FreqStepHz = 0.2
	}
	if o.KaiserBeta == 0 {
		o.KaiserBeta = 2.0
	}
	return o
}

// Search scans (Δf, Δt) around a baseband produced by downmix.Build
// and returns the offset with the highest signal/noise match score
// across the 21 Costas sync symbols.
func Search(bb *downmix.Baseband, opts Options) Result {
	opts = opts.withDefaults()

	steps := int(math.Round(2*opts.FreqSpanHz/opts.FreqStepHz)) + 1
	if steps < 1 {
		steps = 1
	}
	tSpan := bb.SymbolSize / 2

	win := kaiser(bb.SymbolSize, opts.KaiserBeta)

	var best Result
	best.Score = math.Inf(-1)

	for fi := 0; fi < steps; fi++ {
		deltaF := -opts.FreqSpanHz + float64(fi)*opts.FreqStepHz
		for deltaT := -tSpan; deltaT <= tSpan; deltaT++ {
			score := matchScore(bb, win, deltaF, deltaT)
			if score > best.Score {
				best = Result{DeltaFreqHz: deltaF, DeltaTimeSamples: deltaT, Score: score}
			}
		}
	}

	return best
}

// matchScore accumulates, over the 21 sync symbols, the expected
// tone's squared magnitude as signal power and the average of its two
// neighbors' squared magnitude as noise, per spec.md §4.D.
func matchScore(bb *downmix.Baseband, win []float64, deltaFreqHz float64, deltaT int) float64 {
	var signal, noise float64
	n := 0

	for g := 0; g < ftx.NumSyncGroups; g++ {
		for k := 0; k < ftx.SyncLength; k++ {
			symStart := deltaT + bb.SymbolSize*(g*ftx.SyncOffset+k)
			if symStart < 0 || symStart+bb.SymbolSize > len(bb.Samples) {
				continue
			}

			tone := int(ftx.CostasPattern[k])
			magExpected := toneDFT(bb, win, symStart, tone, deltaFreqHz)
			magBelow := toneDFT(bb, win, symStart, tone-1, deltaFreqHz)
			magAbove := toneDFT(bb, win, symStart, tone+1, deltaFreqHz)

			signal += magExpected * magExpected
			noise += (magBelow*magBelow + magAbove*magAbove) / 2
			n++
		}
	}

	if n == 0 || noise == 0 {
		return 0
	}
	return signal / noise
}

// toneDFT computes a single-bin DFT of the windowed segment starting
// at sample start, at the frequency of tone index `tone` offset by
// deltaFreqHz, and returns its magnitude. tone may be -1 or NumTones
// (one below/above the valid range) to probe the neighboring bins;
// those degenerate to zero score contribution via math, matching
// spec.md's "if inside band" neighbor handling.
func toneDFT(bb *downmix.Baseband, win []float64, start, tone int, deltaFreqHz float64) float64 {
	if tone < 0 || tone >= ftx.NumTones {
		return 0
	}
	toneHz := float64(tone)*ftx.ToneSpacingHz + deltaFreqHz - bb.F0Down
	omega := 2 * math.Pi * toneHz / bb.SampleRate

	var acc complex128
	for i := 0; i < bb.SymbolSize; i++ {
		s := bb.Samples[start+i] * complex(win[i], 0)
		phase := complex(math.Cos(-omega*float64(i)), math.Sin(-omega*float64(i)))
		acc += s * phase
	}
	return cmplx.Abs(acc)
}

// kaiser generates a length-n Kaiser window with shape parameter beta,
// using the standard I0(beta*sqrt(1-(2n/(N-1)-1)^2))/I0(beta) form.
// gonum's dsp/window package does not provide a Kaiser generator, so
// this stays on stdlib math (see DESIGN.md).
func kaiser(n int, beta float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	denom := besselI0(beta)
	for i := 0; i < n; i++ {
		r := 2*float64(i)/float64(n-1) - 1
		w[i] = besselI0(beta*math.Sqrt(1-r*r)) / denom
	}
	return w
}

// besselI0 is the modified Bessel function of the first kind, order
// zero, via its power series (converges quickly for the small beta
// values used by audio windowing).
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 30; k++ {
		term *= (halfX * halfX) / float64(k*k)
		sum += term
		if term < 1e-15*sum {
			break
		}
	}
	return sum
}
