// Package waterfall computes the oversampled time-frequency
// representation (the "waterfall") that every later stage of the FT8
// receiver reads from. Grounded on the STFT/Hann-window machinery in
// audio_extensions/ft8/waterfall.go, generalized from that package's
// "mutate a running buffer one audio block at a time" streaming style
// into a single pure build over a complete audio clip (spec.md §4.A).
package waterfall

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Waterfall is the immutable time-frequency grid spec.md §3 defines:
// complex STFT coefficients H, magnitude A = |H|, power Apow = A^2
// and magnitude in dB Adb = 20*log10(A + 1e-12), all sharing one
// shape Rows() x Cols(). That shape covers at least
// (NumBins*FreqOSR) x (NumBlocks*TimeOSR); a trailing partial tone bin
// or symbol block adds up to FreqOSR-1 rows or TimeOSR-1 columns.
type Waterfall struct {
	FreqOSR int
	TimeOSR int

	// NumBins is the number of 6.25 Hz tone bins in [f_min, f_max);
	// each is subdivided into FreqOSR rows.
	NumBins int
	// NumBlocks is the number of 0.160 s symbol periods spanned by
	// the input audio; each is subdivided into TimeOSR columns.
	NumBlocks int

	MinBin int // first FFT bin included (floor(f_min/freq_step))

	FreqStep float64 // Hz per row = ToneSpacingHz / FreqOSR
	TimeStep float64 // seconds per column = SymbolPeriod / TimeOSR

	// H, A, Apow, Adb are stored row-major as
	// [row*FreqOSR + freqSub][col*TimeOSR + timeSub], flattened to
	// rows*cols contiguous slices with Rows()/Cols() describing shape.
	H    []complex128
	A    []float64
	Apow []float64
	Adb  []float64

	// Quantized is the optional 0.5 dB / 256-phase quantized complex
	// grid spec.md §4.A describes for coarse-search bandwidth
	// reduction (Open Question O2). Nil unless requested.
	Quantized []complex64

	rows, cols int
}

// Rows returns the number of frequency rows, one per FFT bin from
// floor(f_min/freq_step) to floor(f_max/freq_step) inclusive.
func (w *Waterfall) Rows() int { return w.rows }

// Cols returns the number of time columns, one per full analysis
// window.
func (w *Waterfall) Cols() int { return w.cols }

func (w *Waterfall) index(row, col int) int { return row*w.cols + col }

// Row maps a (tone bin, frequency sub-bin) pair to the underlying
// oversampled row index, matching the teacher's 4D
// [block][timeSub][freqSub][bin] addressing collapsed onto a flat
// (row, col) grid.
func (w *Waterfall) Row(bin, freqSub int) int { return bin*w.FreqOSR + freqSub }

// Col maps a (symbol block, time sub-step) pair to the underlying
// oversampled column index.
func (w *Waterfall) Col(block, timeSub int) int { return block*w.TimeOSR + timeSub }

// At returns the complex STFT coefficient at (row, col).
func (w *Waterfall) At(row, col int) complex128 { return w.H[w.index(row, col)] }

// MagDB returns the dB magnitude at (row, col), or -240 (effectively
// silence) outside the grid — callers doing neighbor lookups near an
// edge get a very quiet neighbor rather than an index panic.
func (w *Waterfall) MagDB(row, col int) float64 {
	if row < 0 || row >= w.rows || col < 0 || col >= w.cols {
		return -240
	}
	return w.Adb[w.index(row, col)]
}

// Options configures Build. Zero-valued fields fall back to the
// reference defaults from spec.md §3 (freq_osr=2, time_osr=2, a
// 300-3000 Hz band).
type Options struct {
	FreqOSR    int
	TimeOSR    int
	FreqMinHz  float64
	FreqMaxHz  float64
	Quantize   bool
}

func (o Options) withDefaults() Options {
	if o.FreqOSR == 0 {
		o.FreqOSR = 2
	}
	if o.TimeOSR == 0 {
		o.TimeOSR = 2
	}
	if o.FreqMinHz == 0 && o.FreqMaxHz == 0 {
		o.FreqMinHz, o.FreqMaxHz = 300, 3000
	}
	return o
}

const symbolPeriod = 0.160 // seconds, FT8 symbol period
const toneSpacingHz = 6.25

// Build computes the waterfall for a real audio clip at sample rate
// fs, following spec.md §4.A: a Hann window of length
// sym_size*freq_osr with hop sym_size/time_osr, one complex STFT
// column produced per hop, no boundary padding.
func Build(samples []float64, fs float64, opts Options) (*Waterfall, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("waterfall: sample rate must be positive, got %g", fs)
	}
	opts = opts.withDefaults()
	if opts.FreqOSR < 1 || opts.TimeOSR < 1 {
		return nil, fmt.Errorf("waterfall: freq_osr and time_osr must be >= 1")
	}
	if opts.FreqMaxHz <= opts.FreqMinHz {
		return nil, fmt.Errorf("waterfall: freq_max_hz must exceed freq_min_hz")
	}

	symSize := int(math.Round(fs * symbolPeriod))
	if symSize < opts.FreqOSR {
		return nil, fmt.Errorf("waterfall: sample rate %g too low for symbol period", fs)
	}
	nfft := symSize * opts.FreqOSR
	hop := symSize / opts.TimeOSR
	if hop < 1 {
		return nil, fmt.Errorf("waterfall: time_osr too high for sample rate")
	}

	if len(samples) < nfft {
		return nil, fmt.Errorf("waterfall: need at least %d samples, got %d", nfft, len(samples))
	}
	numCols := (len(samples)-nfft)/hop + 1

	freqStep := toneSpacingHz / float64(opts.FreqOSR)
	binMin := int(math.Floor(opts.FreqMinHz / freqStep))
	binMax := int(math.Floor(opts.FreqMaxHz/freqStep)) + 1
	rows := binMax - binMin
	if rows <= 0 {
		return nil, fmt.Errorf("waterfall: empty frequency range")
	}

	win := window.Hann(make([]float64, nfft))

	fft := fourier.NewFFT(nfft)
	frame := make([]float64, nfft)

	wf := &Waterfall{
		FreqOSR:   opts.FreqOSR,
		TimeOSR:   opts.TimeOSR,
		NumBins:   rows / opts.FreqOSR,
		NumBlocks: numCols / opts.TimeOSR,
		MinBin:    binMin,
		FreqStep:  freqStep,
		TimeStep:  symbolPeriod / float64(opts.TimeOSR),
		rows:      rows,
		cols:      numCols,
	}
	wf.H = make([]complex128, rows*numCols)
	wf.A = make([]float64, rows*numCols)
	wf.Apow = make([]float64, rows*numCols)
	wf.Adb = make([]float64, rows*numCols)
	if opts.Quantize {
		wf.Quantized = make([]complex64, rows*numCols)
	}

	for col := 0; col < numCols; col++ {
		start := col * hop
		for i := 0; i < nfft; i++ {
			frame[i] = samples[start+i] * win[i]
		}
		spectrum := fft.Coefficients(nil, frame)

		for row := 0; row < rows; row++ {
			bin := binMin + row
			h := complex128(0)
			if bin >= 0 && bin < len(spectrum) {
				h = spectrum[bin]
			}
			idx := wf.index(row, col)
			wf.H[idx] = h
			mag := cmplxAbs(h)
			wf.A[idx] = mag
			wf.Apow[idx] = mag * mag
			wf.Adb[idx] = 20 * math.Log10(mag+1e-12)
			if opts.Quantize {
				wf.Quantized[idx] = quantize(h)
			}
		}
	}

	return wf, nil
}

func cmplxAbs(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}

// quantize rounds magnitude to 0.5 dB steps (ceil) and phase to
// 256 divisions of the unit circle, per spec.md §4.A. It feeds only
// the optional Quantized grid, never Adb; no stage of this module,
// the downmixer included, reads Quantized.
func quantize(h complex128) complex64 {
	mag := cmplxAbs(h)
	db := 20 * math.Log10(mag+1e-12)
	qDB := math.Ceil(db*2) / 2
	qMag := math.Pow(10, qDB/20)

	phase := math.Atan2(imag(h), real(h))
	const divs = 256
	qPhase := math.Round(phase/(2*math.Pi)*divs) * (2 * math.Pi / divs)

	return complex64(complex(qMag*math.Cos(qPhase), qMag*math.Sin(qPhase)))
}
