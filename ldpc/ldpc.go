// Package ldpc implements the belief-propagation decoder and CRC-14
// acceptance gate for FT8's (174,91) LDPC code (spec.md §4.G).
//
// The sum-product (tanh/atanh rule) message passing loop is ported from
// audio_extensions/ft8/ldpc.go's bpDecode/ldpcCheck/fastTanh/fastAtanh,
// generalized to read the deterministic Tanner graph this package
// builds in table.go instead of the teacher's (missing) const tables,
// and extended with the max-no-improvement stall counter spec.md §4.G
// calls for, which the teacher's loop does not have.
package ldpc

import (
	"github.com/cwsl/ft8core/ftx"
)

// Result is the outcome of one decode attempt.
type Result struct {
	Bits       [ftx.LDPCN]uint8
	Errors     int // remaining parity check failures; 0 = clean decode
	Iterations int
	CRCOK      bool
}

// Decode runs belief propagation for up to maxIters rounds, stopping
// early either on a zero-error codeword or after maxNoImprovement
// consecutive rounds with no reduction in parity errors (spec.md
// §4.G's stall rule; the teacher tracks minErrors but never stops on
// it, running the full iteration budget regardless).
func Decode(llr []float64, maxIters, maxNoImprovement int) Result {
	g := Graph()

	var tov [ftx.LDPCN][3]float64
	var toc [ftx.LDPCM][]float64
	for m := 0; m < ftx.LDPCM; m++ {
		toc[m] = make([]float64, len(g.Nm[m]))
	}

	var plain [ftx.LDPCN]uint8
	minErrors := ftx.LDPCM
	noImprovement := 0
	iterUsed := 0

	for iter := 0; iter < maxIters; iter++ {
		iterUsed = iter + 1
		plainSum := 0
		for n := 0; n < ftx.LDPCN; n++ {
			sum := llr[n] + tov[n][0] + tov[n][1] + tov[n][2]
			if sum > 0 {
				plain[n] = 1
			} else {
				plain[n] = 0
			}
			plainSum += int(plain[n])
		}
		if plainSum == 0 {
			break
		}

		errors := checkParity(g, plain)
		if errors < minErrors {
			minErrors = errors
			noImprovement = 0
		} else {
			noImprovement++
		}
		if errors == 0 {
			break
		}
		if maxNoImprovement > 0 && noImprovement >= maxNoImprovement {
			break
		}

		for m := 0; m < ftx.LDPCM; m++ {
			nodes := g.Nm[m]
			for i, n := range nodes {
				tnm := llr[n]
				for slot := 0; slot < 3; slot++ {
					if g.Mn[n][slot] != m {
						tnm += tov[n][slot]
					}
				}
				toc[m][i] = fastTanh(-tnm / 2)
			}
		}

		for n := 0; n < ftx.LDPCN; n++ {
			for slot := 0; slot < 3; slot++ {
				m := g.Mn[n][slot]
				tmn := 1.0
				for i, other := range g.Nm[m] {
					if other != n {
						tmn *= toc[m][i]
					}
				}
				tov[n][slot] = -2 * fastAtanh(tmn)
			}
		}
	}

	errors := checkParity(g, plain)
	crcOK := errors == 0 && VerifyCRC(PackPayload(plain))
	return Result{Bits: plain, Errors: errors, Iterations: iterUsed, CRCOK: crcOK}
}

// checkParity returns the number of the 83 parity checks that fail
// under codeword (XOR of all connected variable bits must be zero).
func checkParity(g *Tanner, codeword [ftx.LDPCN]uint8) int {
	errors := 0
	for m := 0; m < ftx.LDPCM; m++ {
		x := uint8(0)
		for _, n := range g.Nm[m] {
			x ^= codeword[n]
		}
		if x != 0 {
			errors++
		}
	}
	return errors
}

// fastTanh is the rational polynomial approximation of tanh used by
// the teacher's decoder, ported verbatim (at float64 precision).
func fastTanh(x float64) float64 {
	if x < -4.97 {
		return -1
	}
	if x > 4.97 {
		return 1
	}
	x2 := x * x
	a := x * (945 + x2*(105+x2))
	b := 945 + x2*(420+x2*15)
	return a / b
}

// fastAtanh is the rational polynomial approximation of atanh used by
// the teacher's decoder, ported verbatim (at float64 precision).
func fastAtanh(x float64) float64 {
	x2 := x * x
	a := x * (945 + x2*(-735+x2*64))
	b := 945 + x2*(-1050+x2*225)
	return a / b
}

// PackPayload packs the 91 leading information bits of a clean
// codeword into bytes, the form ftx.ExtractCRC and ftx.ComputeCRC
// expect.
func PackPayload(bits [ftx.LDPCN]uint8) []uint8 {
	return ftx.PackBits(bits[:ftx.LDPCK], ftx.LDPCK)
}

// VerifyCRC checks the packed 91-bit payload's trailing CRC-14 against
// its own recomputation over the first 77 bits, the gate spec.md §4.G
// requires before a decode is accepted.
func VerifyCRC(payload91 []uint8) bool {
	return ftx.ExtractCRC(payload91) == ftx.ComputeCRC(payload91, 77)
}
