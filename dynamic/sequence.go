package dynamic

import (
	"sort"

	"github.com/hakon-jon/gbwt"
)

// Sequence tracks one path during insertion: Curr is the node whose
// record currently holds this sequence's cursor, Next is the node it
// is moving to this iteration, Offset is the local BWT position within
// record(Curr) at which the transition to Next must be inserted, and Pos
// is the sequence's position within the source being inserted (an index
// into a flat text buffer, or a local offset inside a source GBWT's own
// records -- see Source).
type Sequence struct {
	ID     uint64
	Pos    uint64
	Curr   gbwt.NodeID
	Next   gbwt.NodeID
	Offset uint64
}

// sortSequences orders seqs by (Next, Curr, Offset) -- equivalent to
// ordering by (Curr, Offset) for the following iteration, per spec.md
// §4.3 step 3 -- and drops every sequence that has reached the
// endmarker. The sort is stable so that sequences tied on (Next, Curr,
// Offset) keep their relative insertion order, which spec.md's design
// notes call out as the recommended tiebreaker in place of sequence id.
func sortSequences(seqs []Sequence) []Sequence {
	sort.SliceStable(seqs, func(i, j int) bool {
		a, b := seqs[i], seqs[j]
		if a.Next != b.Next {
			return a.Next < b.Next
		}
		if a.Curr != b.Curr {
			return a.Curr < b.Curr
		}
		return a.Offset < b.Offset
	})
	head := 0
	for head < len(seqs) && seqs[head].Next == gbwt.Endmarker {
		head++
	}
	return seqs[head:]
}
