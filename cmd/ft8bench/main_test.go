package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwsl/ft8core/sync8"
	"github.com/cwsl/ft8core/waterfall"
)

func TestSynthFT8ProducesAFindableCandidate(t *testing.T) {
	fs := 12000.0
	samples := synthFT8(1500, fs)

	wf, err := waterfall.Build(samples, fs, waterfall.Options{})
	require.NoError(t, err)

	cands := sync8.Search(wf, sync8.Options{})
	require.NotEmpty(t, cands)
}

func BenchmarkWaterfallAndSync(b *testing.B) {
	fs := 12000.0
	samples := synthFT8(1500, fs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wf, err := waterfall.Build(samples, fs, waterfall.Options{})
		if err != nil {
			b.Fatal(err)
		}
		sync8.Search(wf, sync8.Options{})
	}
}
