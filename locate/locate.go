// Package locate implements sample-based position recovery (spec.md
// §4.5): turning a SearchState produced by pattern search into the set of
// sequence ids whose paths pass through it.
//
// Grounded on DynamicGBWT::locate(SearchState) and
// DynamicGBWT::tryLocate() in
// _examples/original_source/dynamic_gbwt.cpp, which the reference
// implementation marks as sharing its shape with the static GBWT's
// locate() (the "FIXME" there asks for a common implementation; this
// package is that common implementation, driven off the Index interface
// below so it works unchanged for any record-backed GBWT).
package locate

import (
	"sort"

	"github.com/hakon-jon/gbwt"
	"github.com/hakon-jon/gbwt/record"
)

// Index is the read-only record access locate needs. DynamicGBWT
// satisfies it via its Record method.
type Index interface {
	Record(node gbwt.NodeID) *record.DynamicRecord
}

// position is a BWT coordinate being walked backward in lock step with
// every other still-unresolved position in the same locate call.
type position struct {
	node gbwt.NodeID
	pos  uint64
}

// Locate returns the sorted, deduplicated sequence ids whose paths visit
// state. It returns nil for an empty state.
func Locate(index Index, state gbwt.SearchState) []uint64 {
	if state.Empty() {
		return nil
	}

	positions := make([]position, 0, state.Size())
	for i := state.Start; i <= state.End; i++ {
		positions = append(positions, position{node: state.Node, pos: i})
	}

	var result []uint64
	for len(positions) > 0 {
		next := make([]position, 0, len(positions))

		var (
			curr       gbwt.NodeID
			rec        *record.DynamicRecord
			haveRecord bool
			sampleIdx  int
			lfNode     gbwt.NodeID
			lfOffset   uint64
			lfStart    uint64
			lfRunEnd   uint64
		)

		for _, p := range positions {
			if !haveRecord || p.node != curr {
				curr = p.node
				rec = index.Record(curr)
				haveRecord = true
				sampleIdx = rec.NextSample(p.pos)
				lfStart = p.pos
				lfNode, lfOffset, lfRunEnd = runLF(rec, p.pos)
			}

			for sampleIdx < rec.Samples() && rec.IDs[sampleIdx].Offset < p.pos {
				sampleIdx++
			}

			if sampleIdx < rec.Samples() && rec.IDs[sampleIdx].Offset == p.pos {
				result = append(result, rec.IDs[sampleIdx].Seq)
				continue
			}

			if p.pos > lfRunEnd {
				lfStart = p.pos
				lfNode, lfOffset, lfRunEnd = runLF(rec, p.pos)
			}
			next = append(next, position{node: lfNode, pos: lfOffset + (p.pos - lfStart)})
		}

		sort.Slice(next, func(i, j int) bool {
			if next[i].node != next[j].node {
				return next[i].node < next[j].node
			}
			return next[i].pos < next[j].pos
		})
		positions = next
	}

	return dedupeSorted(result)
}

// runLF panics on out-of-range offsets: locate only ever derives its
// positions from a validated SearchState or from a prior, successful
// runLF step, so the index would have to be corrupt for this to fail.
func runLF(rec *record.DynamicRecord, pos uint64) (succ gbwt.NodeID, offset uint64, runEnd uint64) {
	succ, offset, runEnd, err := rec.RunLF(pos)
	if err != nil {
		panic(err)
	}
	return succ, offset, runEnd
}

func dedupeSorted(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
