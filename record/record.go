// Package record implements DynamicRecord, the per-node mutable BWT
// record that the insertion algorithm in package dynamic updates in
// place, and RunMerger, the scratch accumulator it uses to rebuild a
// record's body one group of sequences at a time.
//
// Grounded on the per-node bookkeeping in
// _examples/original_source/dynamic_gbwt.{h,cpp} (DynamicRecord,
// RunMerger) and on the struct-of-slices, method-per-field style of
// github.com/dolthub/dolt/go/store/nbs's on-disk record types.
package record

import (
	"sort"

	"github.com/hakon-jon/gbwt"
)

// Edge is one entry in a record's outgoing-edge list: a successor node
// and the cumulative offset at which this record's contribution to that
// successor begins. The offset is a transient accounting field, rebuilt
// on every insertion (spec.md §3).
type Edge struct {
	Node   gbwt.NodeID
	Offset uint64
}

// Run is a maximal run of consecutive body positions sharing the same
// outrank (index into the record's outgoing edges).
type Run struct {
	Rank   uint32
	Length uint64
}

// Sample records that BWT position Offset (local to the owning record)
// belongs to sequence Seq.
type Sample struct {
	Offset uint64
	Seq    uint64
}

// Incoming is one entry in a record's incoming-edge list: a predecessor
// node and how many BWT positions in this record it contributes.
type Incoming struct {
	Node  gbwt.NodeID
	Count uint64
}

// DynamicRecord is the mutable per-node BWT record described in
// spec.md §3/§4.1.
type DynamicRecord struct {
	Outgoing []Edge
	Body     []Run
	BodySize uint64
	Incoming []Incoming
	IDs      []Sample
}

// Clear resets the record to its zero state, keeping the backing arrays.
func (r *DynamicRecord) Clear() {
	r.Outgoing = r.Outgoing[:0]
	r.Body = r.Body[:0]
	r.BodySize = 0
	r.Incoming = r.Incoming[:0]
	r.IDs = r.IDs[:0]
}

// Outdegree returns the number of distinct successors currently known.
func (r *DynamicRecord) Outdegree() int {
	return len(r.Outgoing)
}

// EdgeTo returns the outrank of successor w, or gbwt.InvalidEdge (cast to
// an out-of-range rank) if w is not currently a successor.
func (r *DynamicRecord) EdgeTo(w gbwt.NodeID) uint32 {
	for i, e := range r.Outgoing {
		if e.Node == w {
			return uint32(i)
		}
	}
	return uint32(gbwt.InvalidEdge)
}

// Successor returns the node at outrank r.
func (r *DynamicRecord) Successor(rank uint32) gbwt.NodeID {
	return r.Outgoing[rank].Node
}

// Offset returns the cumulative offset stored for outrank r.
func (r *DynamicRecord) Offset(rank uint32) uint64 {
	return r.Outgoing[rank].Offset
}

// SetOffset overwrites the cumulative offset stored for outrank r.
func (r *DynamicRecord) SetOffset(rank uint32, offset uint64) {
	r.Outgoing[rank].Offset = offset
}

// AddEdge appends a new successor with cumulative offset 0 and returns
// its rank.
func (r *DynamicRecord) AddEdge(w gbwt.NodeID) uint32 {
	r.Outgoing = append(r.Outgoing, Edge{Node: w})
	return uint32(len(r.Outgoing) - 1)
}

// AddIncoming appends predecessor p with count k, used when rebuilding
// incoming edges from scratch during deserialization.
func (r *DynamicRecord) AddIncoming(p gbwt.NodeID, k uint64) {
	r.Incoming = append(r.Incoming, Incoming{Node: p, Count: k})
}

// Increment bumps the count of predecessor p, appending a new entry with
// count 1 if p is not yet present.
func (r *DynamicRecord) Increment(p gbwt.NodeID) {
	for i := range r.Incoming {
		if r.Incoming[i].Node == p {
			r.Incoming[i].Count++
			return
		}
	}
	r.Incoming = append(r.Incoming, Incoming{Node: p, Count: 1})
}

// Runs returns the number of runs in the body.
func (r *DynamicRecord) Runs() int {
	return len(r.Body)
}

// Samples returns the number of stored samples.
func (r *DynamicRecord) Samples() int {
	return len(r.IDs)
}

// NextSample returns the index into IDs of the first sample with
// Offset >= i, or len(IDs) if there is none.
func (r *DynamicRecord) NextSample(i uint64) int {
	return sort.Search(len(r.IDs), func(k int) bool { return r.IDs[k].Offset >= i })
}

// RunLF performs the LF-mapping step described in spec.md's glossary:
// given BWT position i within this record, it returns the successor
// node and the corresponding local offset within the successor's own
// record, plus the index of the last position sharing i's run (so that
// callers can batch repeated lookups within the same run). The returned
// offset already includes the successor edge's cumulative-offset base,
// so it is directly usable both to walk the locator backward and to
// advance a merge source forward through its own (already finalized)
// structure.
func (r *DynamicRecord) RunLF(i uint64) (succ gbwt.NodeID, offset uint64, runEnd uint64, err error) {
	if i >= r.BodySize {
		return 0, 0, 0, gbwt.ErrOutOfRange
	}
	var pos uint64
	counts := make([]uint64, len(r.Outgoing))
	for _, run := range r.Body {
		end := pos + run.Length - 1
		if i <= end {
			edge := r.Outgoing[run.Rank]
			return edge.Node, edge.Offset + counts[run.Rank] + (i - pos), end, nil
		}
		counts[run.Rank] += run.Length
		pos = end + 1
	}
	return 0, 0, 0, gbwt.ErrOutOfRange
}

// Recode sorts the outgoing edges by successor node ascending,
// permuting every body run's rank accordingly, then sorts the incoming
// edges by predecessor node ascending. Called once at the end of every
// public insert/merge so the record is in canonical, serializable order.
func (r *DynamicRecord) Recode() {
	if len(r.Outgoing) > 1 {
		order := make([]int, len(r.Outgoing))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return r.Outgoing[order[a]].Node < r.Outgoing[order[b]].Node
		})

		perm := make([]uint32, len(r.Outgoing))
		sorted := make([]Edge, len(r.Outgoing))
		for newRank, oldRank := range order {
			perm[oldRank] = uint32(newRank)
			sorted[newRank] = r.Outgoing[oldRank]
		}
		r.Outgoing = sorted

		for i := range r.Body {
			r.Body[i].Rank = perm[r.Body[i].Rank]
		}
	}

	sort.Slice(r.Incoming, func(a, b int) bool { return r.Incoming[a].Node < r.Incoming[b].Node })
}
