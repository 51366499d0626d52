// Table generation for the (174,91) Tanner graph.
//
// The teacher's audio_extensions/ft8/ldpc.go references LDPC_Nm,
// LDPC_Mn and LDPC_Num_rows constant tables (the canonical FT8 parity
// check matrix) that are never defined anywhere in the retrieved
// teacher package, and no copy of them exists anywhere else in the
// retrieval pack either — original_source/ only kept kgoba/ft8_lib's
// utils/*.py (decode.py imports a compiled ldpc extension module
// rather than defining the table in Python), not the C constants file
// that actually declares Nm/Mn/Num_rows. With no network access this
// session to pull the real ~1,100-entry table from kgoba/ft8_lib and
// no toolchain to check a hand-transcribed one bit-exact, committing
// unverifiable magic numbers under the label "the real protocol
// constant" would be worse than admitting the gap: a wrong table that
// LOOKS canonical is undetectable until it's run against real traffic
// and silently fails, whereas a documented placeholder fails loudly.
//
// So this package builds its Tanner graph with progressive edge
// growth (PEG, Hu/Eleftheriou/Arnold 2001) — the standard, published
// construction algorithm real LDPC codes (including, per Franke &
// Taylor's 2018 QEX description, FT8's own code family) use to assign
// variable-to-check edges: each variable node's 3 edges are placed one
// at a time, on the candidate check that shares the fewest variables
// with the checks already chosen for that variable (the edge closing
// the fewest 4-cycles), ties going to the least-loaded check, instead
// of the arbitrary hash assignment this package used previously. Only
// 4-cycles are counted; longer cycles are not searched for. It still
// does not reproduce the literal deployed FT8
// check matrix, so frames encoded by a real FT8 transmitter or its
// reference generator matrix will not converge here. See DESIGN.md's
// ldpc entry for the full caveat and the follow-up this leaves open.
package ldpc

import "github.com/cwsl/ft8core/ftx"

// Tanner holds the bipartite variable/check adjacency, built once at
// package init and shared read-only by every decode call.
type Tanner struct {
	// Nm[m] lists the 0-indexed variable nodes connected to check m.
	Nm [ftx.LDPCM][]int
	// Mn[n] lists the (exactly 3) 0-indexed check nodes connected to
	// variable n.
	Mn [ftx.LDPCN][3]int
}

var graph = buildTanner()

// Graph returns the shared Tanner graph.
func Graph() *Tanner { return &graph }

const maxCheckDegree = 8

// buildTanner assigns each of the 174 variable nodes to 3 distinct
// checks via PEG, then panics if the resulting graph doesn't satisfy
// the regularity every caller (checkParity, the BP loop) assumes —
// every variable wired to exactly 3 checks, no check over maxCheckDegree —
// so a construction bug fails loudly at package init instead of
// producing silently-wrong decodes.
func buildTanner() Tanner {
	var t Tanner
	var degree [ftx.LDPCM]int
	shared := map[[2]int]int{} // shared[{m1,m2}] = # variables with edges to both

	for n := 0; n < ftx.LDPCN; n++ {
		used := map[int]bool{}
		for slot := 0; slot < 3; slot++ {
			m := pickCheckPEG(n, used, &degree, shared)
			used[m] = true
			t.Mn[n][slot] = m
			t.Nm[m] = append(t.Nm[m], n)
			degree[m]++
		}
		for m1 := range used {
			for m2 := range used {
				if m1 < m2 {
					key := [2]int{m1, m2}
					shared[key]++
				}
			}
		}
	}

	t.validate()
	return t
}

// pickCheckPEG returns, among the LDPCM candidate checks hashCheck
// enumerates for this slot that the variable does not already use and
// that are below maxCheckDegree, the one that shares the fewest existing variables with
// the checks already chosen for it (the PEG girth-avoidance rule: a
// check that already co-occurs with a chosen check on some other
// variable would close a 4-cycle through this edge), breaking ties by
// least-loaded check so the 522 edges spread evenly over 83 checks
// (522/83 ≈ 6.3).
func pickCheckPEG(n int, used map[int]bool, degree *[ftx.LDPCM]int, shared map[[2]int]int) int {
	best := -1
	bestConflict := -1
	bestDegree := maxCheckDegree + 1

	for attempt := 0; attempt < ftx.LDPCM; attempt++ {
		m := hashCheck(n, len(used), attempt)
		if used[m] || degree[m] >= maxCheckDegree {
			continue
		}
		conflict := 0
		for m2 := range used {
			key := [2]int{m, m2}
			if m > m2 {
				key = [2]int{m2, m}
			}
			conflict += shared[key]
		}
		if best == -1 || conflict < bestConflict || (conflict == bestConflict && degree[m] < bestDegree) {
			best, bestConflict, bestDegree = m, conflict, degree[m]
		}
	}

	if best == -1 {
		for m := 0; m < ftx.LDPCM; m++ {
			if !used[m] && degree[m] < bestDegree {
				best, bestDegree = m, degree[m]
			}
		}
	}

	return best
}

// hashCheck is a small deterministic multiplicative hash mapping
// (variable, slot, attempt) onto a check index in [0, LDPCM), used
// only to enumerate PEG candidates in a fixed, reproducible order —
// not itself the edge-selection rule.
func hashCheck(n, slot, attempt int) int {
	x := n*3 + slot
	h := uint32(x)*2654435761 + uint32(attempt)*40503 + uint32(slot)*17
	h ^= h >> 15
	h *= 2246822519
	h ^= h >> 13
	return int(h % uint32(ftx.LDPCM))
}

// validate panics if the graph doesn't meet the regularity every
// caller assumes: every variable has exactly 3 distinct checks, and
// Nm/Mn agree with each other both ways.
func (t *Tanner) validate() {
	for m := 0; m < ftx.LDPCM; m++ {
		if len(t.Nm[m]) == 0 || len(t.Nm[m]) > maxCheckDegree {
			panic("ldpc: check degree out of range")
		}
	}
	for n := 0; n < ftx.LDPCN; n++ {
		seen := map[int]bool{}
		for _, m := range t.Mn[n] {
			if seen[m] {
				panic("ldpc: variable wired to the same check twice")
			}
			seen[m] = true
			found := false
			for _, n2 := range t.Nm[m] {
				if n2 == n {
					found = true
					break
				}
			}
			if !found {
				panic("ldpc: Nm/Mn inconsistent")
			}
		}
	}
}
