// Package downmix implements the narrow-band downmixer (spec.md
// §4.C): given a waterfall and a coarse candidate, it extracts a
// masked strip of STFT bins around the candidate's 8 tones and
// inverse-STFTs it into a complex baseband signal centered near DC.
//
// No component in the teacher (audio_extensions/ft8) does this — the
// teacher decodes straight off the coarse waterfall. This package is
// grounded on the teacher's STFT/window idiom (waterfall.go) run in
// the inverse direction, using gonum's complex FFT for the inverse
// per-column transform exactly as the teacher uses the real FFT for
// the forward one.
package downmix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwsl/ft8core/ftx"
	"github.com/cwsl/ft8core/waterfall"
)

// Options configures the downmix; zero fields fall back to spec.md
// §4.C defaults (fs2=100 Hz, taper=2 bins, timeOSROut=2).
type Options struct {
	SampleRate2 float64 // fs2, default 100 Hz
	TaperBins   int     // default 2
	TimeOSROut  int     // default 2
}

func (o Options) withDefaults() Options {
	if o.SampleRate2 == 0 {
		o.SampleRate2 = 100
	}
	if o.TaperBins == 0 {
		o.TaperBins = 2
	}
	if o.TimeOSROut == 0 {
		o.TimeOSROut = 2
	}
	return o
}

// Baseband is the complex signal produced by the downmixer, along
// with the sample rate it was synthesized at and the residual
// frequency offset (f0_down) between the signal band's start and DC,
// per spec.md §4.C.
type Baseband struct {
	Samples     []complex128
	SampleRate  float64
	F0Down      float64 // Hz, residual offset fine-sync treats as known
	SymbolSize  int     // samples per symbol at SampleRate
}

// Build extracts the narrow-band baseband around candidate bin
// binF0 (the lowest of the 8 FT8 tones, in tone-bin units: its
// waterfall row is binF0*FreqOSR).
func Build(wf *waterfall.Waterfall, binF0 int, opts Options) (*Baseband, error) {
	opts = opts.withDefaults()

	symSize2 := int(math.Round(opts.SampleRate2 * ftx.SymbolPeriod))
	if symSize2 < 4 {
		return nil, fmt.Errorf("downmix: fs2 %g too low", opts.SampleRate2)
	}
	nfft2 := symSize2 * wf.FreqOSR

	signalRows := ftx.NumTones * wf.FreqOSR
	taper := opts.TaperBins * wf.FreqOSR
	pad := nfft2 - signalRows - 2*taper
	if pad < 0 {
		return nil, fmt.Errorf("downmix: nfft2=%d too small for %d signal rows + taper", nfft2, signalRows)
	}

	lowPad := pad / 2
	highPad := pad - lowPad

	// Strip rows: [binF0*freqOSR - taper - lowPad, binF0*freqOSR + signalRows + taper + highPad)
	stripStart := binF0*wf.FreqOSR - taper - lowPad

	// Build the trapezoidal mask once: zero over pad, linear ramp over
	// taper, unity over the 8-tone signal band, linear ramp down,
	// zero pad, per spec.md §4.C step 3.
	mask := make([]float64, nfft2)
	for i := 0; i < lowPad; i++ {
		mask[i] = 0
	}
	for i := 0; i < taper; i++ {
		mask[lowPad+i] = float64(i+1) / float64(taper+1)
	}
	for i := 0; i < signalRows; i++ {
		mask[lowPad+taper+i] = 1
	}
	for i := 0; i < taper; i++ {
		mask[lowPad+taper+signalRows+i] = 1 - float64(i+1)/float64(taper+1)
	}
	for i := lowPad + 2*taper + signalRows; i < nfft2; i++ {
		mask[i] = 0
	}

	hop := symSize2 / opts.TimeOSROut
	if hop < 1 {
		hop = 1
	}

	cfft := fourier.NewCmplxFFT(nfft2)
	// One column per symbol: the strip is time-decimated to
	// H[:, ::time_osr] by always reading timeSub=0.
	numCols := wf.NumBlocks

	strip := make([]complex128, nfft2)
	outLen := (numCols-1)*hop + nfft2
	out := make([]complex128, outLen)
	weight := make([]float64, outLen)

	win := synthesisWindow(nfft2)

	for col := 0; col < numCols; col++ {
		wfCol := wf.Col(col, 0)
		for i := 0; i < nfft2; i++ {
			row := stripStart + i
			h := complex128(0)
			if row >= 0 && row < wf.Rows() {
				h = wf.At(row, wfCol)
			}
			strip[i] = h * complex(mask[i], 0)
		}

		rolled := rollComplex(strip, -(taper + lowPad))

		segment := cfft.Sequence(nil, rolled)
		base := col * hop
		for i := 0; i < nfft2; i++ {
			out[base+i] += segment[i] * complex(win[i], 0)
			weight[base+i] += win[i]
		}
	}

	for i := range out {
		if weight[i] > 1e-9 {
			out[i] /= complex(weight[i], 0)
		}
	}

	// The circular roll places the candidate's lowest tone (row
	// stripStart+taper+lowPad, i.e. binF0*FreqOSR) at spectral bin 0, so it
	// reconstructs at exactly 0 Hz in the synthesized baseband: no
	// residual offset survives the downmix itself. F0Down stays on the
	// Baseband as the hook fine sync and demod mix against, in case a
	// future non-integer bin alignment needs to report one.
	return &Baseband{
		Samples:    out,
		SampleRate: opts.SampleRate2,
		F0Down:     0,
		SymbolSize: symSize2,
	}, nil
}

// rollComplex returns a copy of x circularly shifted by n positions
// (negative n shifts left / earlier).
func rollComplex(x []complex128, n int) []complex128 {
	l := len(x)
	n = ((n % l) + l) % l
	out := make([]complex128, l)
	copy(out, x[l-n:])
	copy(out[n:], x[:l-n])
	return out
}

// synthesisWindow is a Hann window used for the inverse-STFT
// overlap-add reconstruction (spec.md §4.C step 5).
func synthesisWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		x := math.Sin(math.Pi * float64(i) / float64(n))
		w[i] = x * x
	}
	return w
}
