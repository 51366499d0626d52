package finesync

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwsl/ft8core/downmix"
	"github.com/cwsl/ft8core/ftx"
)

// synthBaseband builds a Baseband whose tone 0 sits at DC (matching
// downmix.Build's convention) and carries the Costas sync pattern at
// the three protocol offsets, an arbitrary fixed tone elsewhere.
func synthBaseband(sampleRate float64) *downmix.Baseband {
	symSize := int(math.Round(sampleRate * ftx.SymbolPeriod))

	tones := make([]int, ftx.NumSymbols)
	for i := range tones {
		tones[i] = 2
	}
	for g := 0; g < ftx.NumSyncGroups; g++ {
		for k := 0; k < ftx.SyncLength; k++ {
			tones[g*ftx.SyncOffset+k] = int(ftx.CostasPattern[k])
		}
	}

	samples := make([]complex128, symSize*ftx.NumSymbols)
	for sym, tone := range tones {
		freq := float64(tone) * ftx.ToneSpacingHz
		omega := 2 * math.Pi * freq / sampleRate
		for i := 0; i < symSize; i++ {
			idx := sym*symSize + i
			samples[idx] = complex(math.Cos(omega*float64(idx)), math.Sin(omega*float64(idx)))
		}
	}

	return &downmix.Baseband{
		Samples:    samples,
		SampleRate: sampleRate,
		F0Down:     0,
		SymbolSize: symSize,
	}
}

func TestSearchFindsZeroOffsetOnCleanSignal(t *testing.T) {
	bb := synthBaseband(100)
	result := Search(bb, Options{})

	assert.Equal(t, 0.0, result.DeltaFreqHz, "grid is centered on 0, clean signal should match exactly there")
	assert.Equal(t, 0, result.DeltaTimeSamples)
	assert.Greater(t, result.Score, 0.0)
}

func TestKaiserWindowIsSymmetricAndBounded(t *testing.T) {
	w := kaiser(32, 2.0)
	require.Len(t, w, 32)
	for i, v := range w {
		assert.InDelta(t, v, w[len(w)-1-i], 1e-9, "kaiser window should be symmetric")
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0+1e-9)
	}
	assert.InDelta(t, 1.0, w[len(w)/2], 0.05, "kaiser window should peak near its center")
}

func TestBesselI0AtZeroIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, besselI0(0), 1e-9)
}
