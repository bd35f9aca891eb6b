package dynamic

import "github.com/hakon-jon/gbwt"

// Source abstracts the thing being inserted: either a flat batch of node
// ids (InsertBatch) or another dynamic GBWT (Merge, see spec.md §9 design
// note (a)). Both are driven by the same insertion loop in insert.go.
type Source interface {
	// NextPosition returns the source-local offset within record next's
	// source structure, given the current source-local offset pos within
	// record curr's source structure (spec.md §4.3 step 2, nextPosition).
	NextPosition(curr gbwt.NodeID, pos uint64) uint64

	// NodeAt returns the node occupying source-local offset pos within
	// record node's source structure -- the forward successor actually
	// visited next along the path (spec.md §4.3 step 6, advancePosition).
	NodeAt(node gbwt.NodeID, pos uint64) gbwt.NodeID
}

// textSource is a flat buffer of node ids, one or more sequences
// concatenated and each terminated by the endmarker.
type textSource struct {
	text []gbwt.NodeID
}

func (s textSource) NextPosition(_ gbwt.NodeID, pos uint64) uint64 {
	return pos + 1
}

func (s textSource) NodeAt(_ gbwt.NodeID, pos uint64) gbwt.NodeID {
	return s.text[pos]
}

// dynamicSource merges another, already-finalized dynamic GBWT. Both
// NextPosition and NodeAt are answered by the source's own records via
// DynamicRecord.RunLF, since the source's outgoing-edge offsets are
// stable (the source is not being mutated) and RunLF's LF-mapping step
// is exactly the "rank within a run" computation spec.md §4.3 step 2
// calls for.
type dynamicSource struct {
	index *DynamicGBWT
}

func (s dynamicSource) NextPosition(curr gbwt.NodeID, pos uint64) uint64 {
	_, offset, _, err := s.index.record(curr).RunLF(pos)
	if err != nil {
		panic(err)
	}
	return offset
}

func (s dynamicSource) NodeAt(node gbwt.NodeID, pos uint64) gbwt.NodeID {
	succ, _, _, err := s.index.record(node).RunLF(pos)
	if err != nil {
		panic(err)
	}
	return succ
}
