package ldpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwsl/ft8core/ftx"
)

func TestCheckParityAllZeroCodewordPasses(t *testing.T) {
	g := Graph()
	var zero [ftx.LDPCN]uint8
	assert.Equal(t, 0, checkParity(g, zero))
}

func TestCheckParitySingleBitFlipCausesErrors(t *testing.T) {
	g := Graph()
	var codeword [ftx.LDPCN]uint8
	codeword[0] = 1
	errs := checkParity(g, codeword)
	assert.Equal(t, len(g.Mn[0]), errs, "flipping variable 0 should fail exactly its 3 connected checks, each independently")
}

func TestFastTanhBounds(t *testing.T) {
	assert.Equal(t, -1.0, fastTanh(-10))
	assert.Equal(t, 1.0, fastTanh(10))
	assert.InDelta(t, 0.0, fastTanh(0), 1e-9)
}

func TestFastTanhApproximatesReference(t *testing.T) {
	for _, x := range []float64{-3, -1, -0.5, 0.5, 1, 3} {
		want := refTanh(x)
		got := fastTanh(x)
		assert.InDelta(t, want, got, 0.02, "fastTanh(%v) diverges from reference", x)
	}
}

func refTanh(x float64) float64 {
	e2x := exp(2 * x)
	return (e2x - 1) / (e2x + 1)
}

func exp(x float64) float64 {
	// Small local helper so this file only needs stdlib math once;
	// kept minimal since it's only used by the approximation test.
	sum, term := 1.0, 1.0
	for i := 1; i < 30; i++ {
		term *= x / float64(i)
		sum += term
	}
	return sum
}

func TestDecodeAllZeroLLRStopsImmediately(t *testing.T) {
	llr := make([]float64, ftx.LDPCN)
	for i := range llr {
		llr[i] = -5
	}
	result := Decode(llr, 10, 5)
	assert.Equal(t, 1, result.Iterations)
	for _, b := range result.Bits {
		assert.Equal(t, uint8(0), b)
	}
}

func TestDecodeRespectsMaxIterations(t *testing.T) {
	llr := make([]float64, ftx.LDPCN)
	for i := range llr {
		if i%2 == 0 {
			llr[i] = 3
		} else {
			llr[i] = -3
		}
	}
	result := Decode(llr, 7, 100)
	assert.LessOrEqual(t, result.Iterations, 7)
}

func TestVerifyCRCRoundTrip(t *testing.T) {
	var bits [ftx.LDPCN]uint8
	for i := 0; i < ftx.LDPCK; i++ {
		bits[i] = uint8((i * 3) % 2)
	}
	payload := PackPayload(bits)
	crc := ftx.ComputeCRC(payload, 77)

	payload[9] = payload[9]&0xF8 | uint8(crc>>11)&0x07
	payload[10] = uint8(crc >> 3)
	payload[11] = payload[11]&0x1F | uint8(crc<<5)&0xE0

	require.True(t, VerifyCRC(payload))

	payload[11] ^= 0x20
	assert.False(t, VerifyCRC(payload))
}
