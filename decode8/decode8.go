// Package decode8 wires components C through G behind a single
// per-candidate entry point, and fans that out over a worker pool for
// a whole waterfall's candidate list.
//
// Grounded on the teacher's top-level decode orchestration in
// decoder.go (one goroutine per in-flight decode, errors collected
// rather than propagated) and on session.go's use of
// github.com/google/uuid for per-request identifiers, generalized from
// the teacher's live-session bookkeeping into a single batch call.
package decode8

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cwsl/ft8core/config"
	"github.com/cwsl/ft8core/demod"
	"github.com/cwsl/ft8core/downmix"
	"github.com/cwsl/ft8core/finesync"
	"github.com/cwsl/ft8core/ftx"
	"github.com/cwsl/ft8core/ldpc"
	"github.com/cwsl/ft8core/llr"
	"github.com/cwsl/ft8core/metrics"
	"github.com/cwsl/ft8core/snr"
	"github.com/cwsl/ft8core/sync8"
	"github.com/cwsl/ft8core/waterfall"
)

// ErrCRCFailed is returned when belief propagation converges to a
// zero-parity-error codeword that still fails the CRC-14 gate — a
// normal rejection outcome, not an invariant violation.
var ErrCRCFailed = errors.New("decode8: crc check failed")

// Options configures one candidate decode; zero fields fall back to
// config.Default().
type Options struct {
	Downmix          downmix.Options
	FineSync         finesync.Options
	UseFine          bool
	MaxIterations    int
	MaxNoImprovement int
	// LLRScale is the target soft-bit variance passed to
	// llr.ExtractWithTarget (spec.md §9's open LLR pre-scale
	// question); zero falls back to the teacher's default of 24.
	LLRScale float64
}

// FromConfig builds Options from a loaded Config.
func FromConfig(c config.Config) Options {
	return Options{
		Downmix: downmix.Options{
			SampleRate2: c.DownmixRate,
		},
		FineSync: finesync.Options{
			FreqSpanHz: c.FineFreqSpan,
			FreqStepHz: c.FineFreqStep,
		},
		UseFine:          c.UseFineSync,
		MaxIterations:    c.MaxIterations,
		MaxNoImprovement: c.MaxNoImprovement,
		LLRScale:         c.LLRScale,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxIterations == 0 {
		o.MaxIterations = 30
	}
	if o.MaxNoImprovement == 0 {
		o.MaxNoImprovement = 15
	}
	if o.LLRScale == 0 {
		o.LLRScale = 24
	}
	return o
}

// Frame is a fully decoded FT8 frame: the candidate it came from, the
// 174 channel bits, and the BP decoder's convergence stats.
type Frame struct {
	Candidate  sync8.Candidate
	Bits       [ftx.LDPCN]uint8
	Errors     int
	Iterations int
	// SNRDB is the WSJT-X-style dB estimate derived from the
	// candidate's sync score (see package snr).
	SNRDB float64
}

// Candidate runs components C-G on one coarse-sync candidate and
// returns the decoded frame, or an error: ErrCRCFailed if BP converges
// but the CRC check fails, an error naming the remaining parity errors
// if BP does not converge, or a wrapped error if downmix/demod fail
// on malformed input.
func Candidate(wf *waterfall.Waterfall, cand sync8.Candidate, opts Options) (*Frame, error) {
	opts = opts.withDefaults()

	bb, err := downmix.Build(wf, cand.Bin, opts.Downmix)
	if err != nil {
		return nil, fmt.Errorf("decode8: downmix: %w", err)
	}

	fine := finesync.Result{}
	if opts.UseFine {
		fine = finesync.Search(bb, opts.FineSync)
	}

	tm, err := demod.Demodulate(bb, fine)
	if err != nil {
		return nil, fmt.Errorf("decode8: demod: %w", err)
	}

	soft := llr.ExtractWithTarget(tm, opts.LLRScale)
	result := ldpc.Decode(soft, opts.MaxIterations, opts.MaxNoImprovement)
	if result.Errors != 0 {
		return nil, fmt.Errorf("decode8: ldpc: %d parity errors remain", result.Errors)
	}
	if !result.CRCOK {
		return nil, ErrCRCFailed
	}

	return &Frame{
		Candidate:  cand,
		Bits:       result.Bits,
		Errors:     result.Errors,
		Iterations: result.Iterations,
		SNRDB:      snr.EstimateFromSyncScore(cand.Score),
	}, nil
}

// Session bundles one waterfall's candidates and decoded frames under
// a UUID, for correlating log lines and metrics across a batch.
type Session struct {
	ID        uuid.UUID
	Waterfall *waterfall.Waterfall
	Frames    []Frame
}

// DecodeAll runs Candidate over every entry in cands concurrently,
// bounded by workers, collecting successful decodes and discarding
// every per-candidate failure (CRC/parity rejection or a downmix/demod
// error), none of which is surfaced as an error.
// Metrics, when non-nil, record attempts/successes/CRC failures and
// BP iteration counts.
func DecodeAll(ctx context.Context, wf *waterfall.Waterfall, cands []sync8.Candidate, opts Options, workers int, m *metrics.Metrics) (*Session, error) {
	if workers < 1 {
		workers = 1
	}

	sess := &Session{ID: uuid.New(), Waterfall: wf}
	frames := make([]*Frame, len(cands))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, cand := range cands {
		i, cand := i, cand
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if m != nil {
				m.DecodesAttempted.Inc()
			}

			frame, err := Candidate(wf, cand, opts)
			if err != nil {
				if errors.Is(err, ErrCRCFailed) && m != nil {
					m.DecodesCRCFailed.Inc()
				}
				return nil
			}

			if m != nil {
				m.DecodesSucceeded.Inc()
				m.BPIterations.Observe(float64(frame.Iterations))
			}
			frames[i] = frame
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("decode8: batch decode: %w", err)
	}

	for _, f := range frames {
		if f != nil {
			sess.Frames = append(sess.Frames, *f)
		}
	}

	return sess, nil
}
