package ftx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBitsRoundTrip(t *testing.T) {
	bits := []uint8{1, 0, 1, 1, 0, 0, 1, 0, 1}
	packed := PackBits(bits, len(bits))
	require.Len(t, packed, 2)

	for i, want := range bits {
		got := (packed[i/8] >> (7 - uint(i%8))) & 1
		assert.Equal(t, want, got, "bit %d mismatch", i)
	}
}

func TestComputeCRCDeterministic(t *testing.T) {
	msg := []uint8{0xAB, 0xCD, 0xEF, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	a := ComputeCRC(msg, 77)
	b := ComputeCRC(msg, 77)
	assert.Equal(t, a, b)
	assert.Less(t, a, uint16(1<<CRCWidth))
}

func TestComputeCRCSensitiveToInput(t *testing.T) {
	msg1 := []uint8{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	msg2 := []uint8{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	assert.NotEqual(t, ComputeCRC(msg1, 77), ComputeCRC(msg2, 77))
}

func TestExtractCRCMatchesPackedBits(t *testing.T) {
	var a91 [12]uint8
	a91[9] = 0x05  // low 3 bits of the CRC's top byte
	a91[10] = 0xAA
	a91[11] = 0x40 // top 3 bits of the CRC's bottom byte

	want := uint16(0x05)<<11 | uint16(0xAA)<<3 | uint16(0x40>>5)
	assert.Equal(t, want, ExtractCRC(a91[:]))
}

func TestDataSymbolRanges(t *testing.T) {
	ranges := DataSymbolRanges()
	total := 0
	for _, r := range ranges {
		total += r[1] - r[0]
	}
	assert.Equal(t, NumDataSymbols, total)
}

func TestSyncSymbolIndex(t *testing.T) {
	for _, base := range []int{0, SyncOffset, 2 * SyncOffset} {
		for pos := 0; pos < SyncLength; pos++ {
			g, p, ok := SyncSymbolIndex(base + pos)
			require.True(t, ok)
			assert.Equal(t, pos, p)
			assert.Equal(t, base/SyncOffset, g)
		}
	}

	_, _, ok := SyncSymbolIndex(SyncLength)
	assert.False(t, ok, "symbol 7 is the first data symbol, not a sync symbol")
}

func TestGrayMapIsAPermutation(t *testing.T) {
	seen := make(map[uint8]bool)
	for _, v := range GrayMap {
		assert.False(t, seen[v], "duplicate tone %d in GrayMap", v)
		seen[v] = true
		assert.Less(t, v, uint8(NumTones))
	}
}
