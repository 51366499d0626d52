// Package sync8 performs the coarse synchronization search (spec.md
// §4.B): it scans a waterfall's (bin, time, sub-bin, sub-time) grid
// for the three Costas sync groups embedded in every FT8 frame and
// returns deduplicated, top-scoring candidates.
//
// Grounded on audio_extensions/ft8/sync.go's calculateFT8SyncScore
// and insertCandidate, generalized with the ±2 bin x ±2 column
// local-maximum dedup rule spec.md §4.B requires (the teacher keeps
// only a flat top-N list with no locality check).
package sync8

import (
	"sort"

	"github.com/cwsl/ft8core/ftx"
	"github.com/cwsl/ft8core/waterfall"
)

// Mode selects the scoring strategy.
type Mode int

const (
	ModeNeighborContrast Mode = iota
	ModeInBandSNR
)

// Candidate is a proposed frame anchor: lowest-tone frequency, start
// time and a sync score (spec.md §3).
type Candidate struct {
	Score float64
	// Bin/TimeBlock address the waterfall in symbol/tone units;
	// FreqSub/TimeSub select the sub-bin/sub-step within those units.
	Bin, TimeBlock, FreqSub, TimeSub int
}

// FreqHz returns the audio frequency of the candidate's lowest tone.
func (c Candidate) FreqHz(wf *waterfall.Waterfall) float64 {
	return (float64(wf.MinBin)/float64(wf.FreqOSR) + float64(c.Bin) + float64(c.FreqSub)/float64(wf.FreqOSR)) * ftx.ToneSpacingHz
}

// TimeS returns the nominal time of the first sync symbol, including
// the quarter-symbol bias correction from spec.md §4.B:
// t0_s = t*time_step - 0.160/4, where t is the raw (oversampled)
// column index.
func (c Candidate) TimeS(wf *waterfall.Waterfall) float64 {
	col := wf.Col(c.TimeBlock, c.TimeSub)
	return float64(col)*wf.TimeStep - ftx.SymbolPeriod/4
}

// Options configures Search. A zero MaxCand falls back to 40 and the
// zero Mode is neighbor-contrast; MinScore has no fallback, so zero
// keeps every candidate scoring at least 0 (config.Default carries the
// 2.5 reference threshold).
type Options struct {
	Mode     Mode
	MinScore float64
	MaxCand  int
}

func (o Options) withDefaults() Options {
	if o.MaxCand == 0 {
		o.MaxCand = 40
	}
	return o
}

// Search scans wf for candidate frame anchors and returns the top
// MaxCand by score, each a local maximum within a ±2 bin x ±2 column
// neighborhood, above MinScore.
func Search(wf *waterfall.Waterfall, opts Options) []Candidate {
	opts = opts.withDefaults()

	type key struct{ bin, t int }
	best := make(map[key]Candidate)

	minBinIdx := 0
	maxBinIdx := wf.NumBins - ftx.NumTones + 1
	if maxBinIdx <= minBinIdx {
		return nil
	}

	for timeSub := 0; timeSub < wf.TimeOSR; timeSub++ {
		for freqSub := 0; freqSub < wf.FreqOSR; freqSub++ {
			for t := -10 * wf.TimeOSR; t < 21*wf.TimeOSR; t += wf.TimeOSR {
				tBlock := t / wf.TimeOSR
				for bin := minBinIdx; bin < maxBinIdx; bin++ {
					var score float64
					switch opts.Mode {
					case ModeInBandSNR:
						score = scoreInBandSNR(wf, bin, tBlock, freqSub, timeSub)
					default:
						score = scoreNeighborContrast(wf, bin, tBlock, freqSub, timeSub)
					}

					if score < opts.MinScore {
						continue
					}

					cand := Candidate{
						Score:     score,
						Bin:       bin,
						TimeBlock: tBlock,
						FreqSub:   freqSub,
						TimeSub:   timeSub,
					}
					insertDedup(best, key{bin, tBlock}, cand)
				}
			}
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > opts.MaxCand {
		out = out[:opts.MaxCand]
	}
	return out
}

// insertDedup enforces the ±2 bin x ±2 column local-maximum rule from
// spec.md §4.B: before inserting, reject the candidate if any
// existing neighbor scores at least as high; otherwise evict any
// strictly weaker neighbors first.
func insertDedup(best map[struct{ bin, t int }]Candidate, k struct{ bin, t int }, cand Candidate) {
	for db := -2; db <= 2; db++ {
		for dt := -2; dt <= 2; dt++ {
			nk := struct{ bin, t int }{k.bin + db, k.t + dt}
			if existing, ok := best[nk]; ok {
				if existing.Score >= cand.Score {
					return
				}
			}
		}
	}
	for db := -2; db <= 2; db++ {
		for dt := -2; dt <= 2; dt++ {
			nk := struct{ bin, t int }{k.bin + db, k.t + dt}
			if existing, ok := best[nk]; ok && existing.Score < cand.Score {
				delete(best, nk)
			}
		}
	}
	best[k] = cand
}

// scoreNeighborContrast averages, over the 21 sync symbols, the dB
// gap between each expected Costas tone and its in-band/in-time
// neighbors. Ported from calculateFT8SyncScore in sync.go.
func scoreNeighborContrast(wf *waterfall.Waterfall, bin, tBlock, freqSub, timeSub int) float64 {
	sum := 0.0
	n := 0

	for g := 0; g < ftx.NumSyncGroups; g++ {
		for k := 0; k < ftx.SyncLength; k++ {
			block := tBlock + g*ftx.SyncOffset + k
			if block < 0 {
				continue
			}
			if block >= wf.NumBlocks {
				break
			}

			sm := int(ftx.CostasPattern[k])
			col := wf.Col(block, timeSub)
			expected := wf.MagDB(wf.Row(bin+sm, freqSub), col)

			if sm > 0 {
				sum += expected - wf.MagDB(wf.Row(bin+sm-1, freqSub), col)
				n++
			}
			if sm < ftx.NumTones-1 {
				sum += expected - wf.MagDB(wf.Row(bin+sm+1, freqSub), col)
				n++
			}
			if k > 0 && block > 0 {
				sum += expected - wf.MagDB(wf.Row(bin+sm, freqSub), wf.Col(block-1, timeSub))
				n++
			}
			if k+1 < ftx.SyncLength && block+1 < wf.NumBlocks {
				sum += expected - wf.MagDB(wf.Row(bin+sm, freqSub), wf.Col(block+1, timeSub))
				n++
			}
		}
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// scoreInBandSNR is the optional mode-0 scorer from spec.md §4.B:
// signal power at the expected tone against the summed power of the
// other seven tones divided by six, in dB: 10*log10(signal/(noise/6)).
func scoreInBandSNR(wf *waterfall.Waterfall, bin, tBlock, freqSub, timeSub int) float64 {
	var signal, noise float64
	n := 0

	for g := 0; g < ftx.NumSyncGroups; g++ {
		for k := 0; k < ftx.SyncLength; k++ {
			block := tBlock + g*ftx.SyncOffset + k
			if block < 0 {
				continue
			}
			if block >= wf.NumBlocks {
				break
			}
			col := wf.Col(block, timeSub)
			sm := int(ftx.CostasPattern[k])

			for tone := 0; tone < ftx.NumTones; tone++ {
				db := wf.MagDB(wf.Row(bin+tone, freqSub), col)
				power := dbToPower(db)
				if tone == sm {
					signal += power
				} else {
					noise += power
				}
			}
			n++
		}
	}

	if n == 0 || noise == 0 {
		return 0
	}
	return 10 * log10(signal/(noise/6))
}
