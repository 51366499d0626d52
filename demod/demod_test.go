package demod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwsl/ft8core/downmix"
	"github.com/cwsl/ft8core/finesync"
	"github.com/cwsl/ft8core/ftx"
)

func synthBaseband(sampleRate float64, tones []int) *downmix.Baseband {
	symSize := int(math.Round(sampleRate * ftx.SymbolPeriod))
	samples := make([]complex128, symSize*len(tones))
	for sym, tone := range tones {
		freq := float64(tone) * ftx.ToneSpacingHz
		omega := 2 * math.Pi * freq / sampleRate
		for i := 0; i < symSize; i++ {
			idx := sym*symSize + i
			samples[idx] = complex(math.Cos(omega*float64(idx)), math.Sin(omega*float64(idx)))
		}
	}
	return &downmix.Baseband{Samples: samples, SampleRate: sampleRate, SymbolSize: symSize}
}

func TestDemodulateRejectsShortBaseband(t *testing.T) {
	bb := synthBaseband(100, make([]int, 5))
	_, err := Demodulate(bb, finesync.Result{})
	assert.Error(t, err, "5 symbols is far short of the 79 needed")
}

func TestDemodulateTonePeakMatchesInput(t *testing.T) {
	tones := make([]int, ftx.NumSymbols)
	for i := range tones {
		tones[i] = (i % ftx.NumTones)
	}
	bb := synthBaseband(100, tones)

	tm, err := Demodulate(bb, finesync.Result{})
	require.NoError(t, err)

	for sym, tone := range tones {
		bestTone, bestDB := 0, math.Inf(-1)
		for j := 0; j < ftx.NumTones; j++ {
			if tm.Power[sym][j] > bestDB {
				bestDB = tm.Power[sym][j]
				bestTone = j
			}
		}
		assert.Equal(t, tone, bestTone, "symbol %d should peak at its synthesized tone", sym)
	}
}

func TestDemodulateConstantToneDominatesOtherBins(t *testing.T) {
	tones := make([]int, ftx.NumSymbols)
	for i := range tones {
		tones[i] = 3
	}
	bb := synthBaseband(100, tones)

	tm, err := Demodulate(bb, finesync.Result{})
	require.NoError(t, err)
	assert.Greater(t, tm.Power[0][3], tm.Power[0][0])
}
