package downmix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwsl/ft8core/ftx"
	"github.com/cwsl/ft8core/waterfall"
)

func buildToneWaterfall(t *testing.T, toneHz, fs float64, seconds float64) *waterfall.Waterfall {
	t.Helper()
	n := int(fs * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * toneHz * float64(i) / fs)
	}
	wf, err := waterfall.Build(samples, fs, waterfall.Options{FreqMinHz: 300, FreqMaxHz: 3000})
	require.NoError(t, err)
	return wf
}

func TestBuildProducesNonEmptyBaseband(t *testing.T) {
	fs := 12000.0
	toneHz := 1000.0
	wf := buildToneWaterfall(t, toneHz, fs, 2.0)

	binF0 := int(toneHz/ftx.ToneSpacingHz) - wf.MinBin/wf.FreqOSR

	bb, err := Build(wf, binF0, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, bb.Samples)
	assert.Equal(t, 100.0, bb.SampleRate)
	assert.Greater(t, bb.SymbolSize, 0)
}

func TestBuildZeroFillsOutOfRangeStripAndRejectsLowRate(t *testing.T) {
	fs := 12000.0
	wf := buildToneWaterfall(t, 1000, fs, 1.0)

	_, err := Build(wf, -1000, Options{})
	assert.NoError(t, err, "strip rows outside the grid are zero-filled, not an error")

	_, err = Build(wf, 0, Options{SampleRate2: 1})
	assert.Error(t, err, "fs2 too low for a symbol to contain any samples")
}

func TestRollComplexIsACircularShift(t *testing.T) {
	x := make([]complex128, 5)
	for i := range x {
		x[i] = complex(float64(i), 0)
	}

	rolled := rollComplex(x, 2)
	for i := range x {
		want := x[((i-2)%5+5)%5]
		assert.Equal(t, want, rolled[i])
	}
}

func TestRollComplexZeroShiftIsIdentity(t *testing.T) {
	x := []complex128{1, 2, 3, 4}
	rolled := rollComplex(x, 0)
	assert.Equal(t, x, rolled)
}
