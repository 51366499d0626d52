// Command ft8bench is a minimal in-memory driver used by benchmarks
// and manual smoke checks: it synthesizes a clean FT8-shaped signal,
// runs it through the waterfall and coarse-sync stages and reports
// what it found. It never touches a WAV file or a flag parser --
// those are the external collaborators spec.md excludes from this
// module -- so it stays a handful of lines rather than growing into
// the teacher's full CLI.
package main

import (
	"log"
	"math"

	"github.com/cwsl/ft8core/ftx"
	"github.com/cwsl/ft8core/sync8"
	"github.com/cwsl/ft8core/waterfall"
)

// synthFT8 lays a fixed tone on every data symbol and the Costas
// pattern on the three sync groups, matching spec.md §3's frame
// layout, for a signal sync8 can actually find.
func synthFT8(baseHz, fs float64) []float64 {
	symSize := int(math.Round(fs * ftx.SymbolPeriod))
	samples := make([]float64, symSize*ftx.NumSymbols)

	tones := make([]int, ftx.NumSymbols)
	for i := range tones {
		tones[i] = 2
	}
	for g := 0; g < ftx.NumSyncGroups; g++ {
		for k := 0; k < ftx.SyncLength; k++ {
			tones[g*ftx.SyncOffset+k] = int(ftx.CostasPattern[k])
		}
	}

	for sym, tone := range tones {
		freq := baseHz + float64(tone)*ftx.ToneSpacingHz
		for i := 0; i < symSize; i++ {
			t := float64(i) / fs
			samples[sym*symSize+i] = math.Sin(2 * math.Pi * freq * t)
		}
	}
	return samples
}

func main() {
	fs := 12000.0
	samples := synthFT8(1500, fs)

	wf, err := waterfall.Build(samples, fs, waterfall.Options{})
	if err != nil {
		log.Fatalf("waterfall: %v", err)
	}

	cands := sync8.Search(wf, sync8.Options{})
	log.Printf("waterfall: %d bins x %d cols, %d candidates found", wf.Rows(), wf.Cols(), len(cands))
	for i, c := range cands {
		if i >= 5 {
			break
		}
		log.Printf("  candidate %d: freq=%.2fHz t0=%.3fs score=%.2f", i, c.FreqHz(wf), c.TimeS(wf), c.Score)
	}
}
