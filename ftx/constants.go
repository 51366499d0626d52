// Package ftx holds the fixed FT8 protocol constants shared by every
// stage of the receiver core: frame layout, the Costas sync pattern,
// the Gray tone mapping and frame timing. These are external protocol
// contracts, not design choices, and are never recomputed.
package ftx

// Frame layout: 79 channel symbols, S D1 S D2 S, three 7-symbol Costas
// sync groups at positions 0, 36 and 72, 58 data symbols of 3 bits
// each (174 channel bits total).
const (
	NumSymbols      = 79
	NumDataSymbols  = 58
	SyncLength      = 7
	NumSyncGroups   = 3
	SyncOffset      = 36
	NumTones        = 8
	BitsPerSymbol   = 3
	SymbolPeriod    = 0.160 // seconds
	SlotPeriod      = 15.0  // seconds
	ToneSpacingHz   = 6.25
)

// LDPC(174,91) dimensions.
const (
	LDPCN      = 174
	LDPCK      = 91
	LDPCM      = 83
	LDPCNBytes = (LDPCN + 7) / 8
	LDPCKBytes = (LDPCK + 7) / 8
)

// CRC-14 parameters.
const (
	CRCPolynomial = 0x2757
	CRCWidth      = 14
)

// CostasPattern is the 7-symbol Costas array repeated at symbol
// offsets 0, 36 and 72 of every frame.
var CostasPattern = [SyncLength]uint8{3, 1, 4, 0, 6, 5, 2}

// GrayMap maps a 3-bit value (b0 b1 b2), MSB first, to its FT8 tone
// index so that adjacent tones differ by exactly one bit.
var GrayMap = [8]uint8{0, 1, 3, 2, 5, 6, 4, 7}

// DataSymbolRanges returns the two half-open symbol ranges that carry
// data bits: [7,36) and [43,72).
func DataSymbolRanges() [2][2]int {
	return [2][2]int{{7, 36}, {43, 72}}
}

// SyncSymbolIndex reports whether channel symbol i belongs to one of
// the three Costas groups, and if so its position within the group
// (0..6).
func SyncSymbolIndex(i int) (group, pos int, ok bool) {
	for g := 0; g < NumSyncGroups; g++ {
		base := g * SyncOffset
		if i >= base && i < base+SyncLength {
			return g, i - base, true
		}
	}
	return 0, 0, false
}
