// Package gbwt defines the shared vocabulary of the dynamic Burrows-Wheeler
// Transform index over paths through a node-labelled graph: node and
// sequence identifiers, the endmarker, the alphabet header, search states,
// and the sentinel values and errors that every other package in this
// module builds on.
package gbwt

import (
	"fmt"

	"github.com/pkg/errors"
)

// NodeID identifies a node in the underlying graph. The reserved value
// Endmarker terminates every path indexed by the GBWT.
type NodeID uint64

// Endmarker is the reserved node id that terminates every sequence.
const Endmarker NodeID = 0

// SeqID identifies one of the paths inserted into the index, assigned in
// insertion order starting from zero.
type SeqID uint64

// DefaultSampleInterval is the period at which non-endmarker BWT positions
// are sampled along each inserted sequence. Every endmarker position is
// always sampled, regardless of this interval.
const DefaultSampleInterval uint64 = 1024

// Sentinel return values for lookups that may legitimately fail; callers
// recover locally rather than treating these as fatal (spec: "Missing
// edge / successor lookups during search").
const (
	InvalidOffset   = ^uint64(0)
	InvalidEdge     = ^uint32(0)
	InvalidSequence = ^uint64(0)
)

// Input-shape and persisted-state error taxonomy. These are the only
// errors the construction path produces; none of them is retriable.
var (
	ErrEmptyBatch            = errors.New("gbwt: batch is empty")
	ErrBatchNotTerminated    = errors.New("gbwt: batch does not end with the endmarker")
	ErrSequenceTooLong       = errors.New("gbwt: sequence is too long for the buffer")
	ErrTextLengthOutOfRange  = errors.New("gbwt: text_length is larger than the text container")
	ErrInvalidAlphabetResize = errors.New("gbwt: new offset must be less than the new alphabet size")
	ErrHeaderCheckFailed     = errors.New("gbwt: header failed its consistency check")
	ErrOutOfRange            = errors.New("gbwt: index out of range")
)

// Comp maps a node id to its position in the dense bwt array: the
// endmarker always maps to 0, and every other node maps to node-offset.
func Comp(node NodeID, offset uint64) uint64 {
	if node == Endmarker {
		return 0
	}
	return uint64(node) - offset
}

// Reverse returns the opposite-strand id of node, used by the builder's
// both_orientations insertion mode (spec.md §4.4, §8 scenario 5). Forward
// and reverse ids are paired as 2k/2k+1, the encoding the pack's graph
// tooling (vg, libhandlegraph) uses for bidirected node ids; the endmarker
// is its own reverse.
func Reverse(node NodeID) NodeID {
	if node == Endmarker {
		return Endmarker
	}
	return node ^ 1
}

// Header is the fixed-size metadata record persisted ahead of the BWT
// body: see spec.md §6.1. Size is the total number of BWT positions
// across all records, Sequences is the number of indexed paths, Offset
// and AlphabetSize bound the range of real node ids (offset, alphabet_size).
type Header struct {
	Size         uint64
	Sequences    uint64
	Offset       uint64
	AlphabetSize uint64
}

// Effective returns the number of records held in memory, i.e. the
// endmarker plus every real node in (offset, alphabet_size).
func (h Header) Effective() uint64 {
	if h.AlphabetSize <= h.Offset {
		return 0
	}
	return h.AlphabetSize - h.Offset
}

// Check reports whether the header describes an internally consistent
// alphabet. It does not validate Size/Sequences against record contents.
// Package serialize additionally guards the header's own bytes with a
// checksum; that checksum does not cover the records either.
func (h Header) Check() error {
	if h.AlphabetSize > 0 && h.Offset >= h.AlphabetSize {
		return errors.Wrapf(ErrHeaderCheckFailed, "offset %d >= alphabet_size %d", h.Offset, h.AlphabetSize)
	}
	return nil
}

func (h Header) String() string {
	return fmt.Sprintf("Header{size=%d, sequences=%d, offset=%d, sigma=%d}",
		h.Size, h.Sequences, h.Offset, h.AlphabetSize)
}

// SearchState identifies a contiguous range of BWT positions within a
// single record: node v, offsets [Start, End] inclusive.
type SearchState struct {
	Node  NodeID
	Start uint64
	End   uint64
}

// Empty reports whether the range contains no positions.
func (s SearchState) Empty() bool {
	return s.End < s.Start
}

// Size returns the number of positions in the range.
func (s SearchState) Size() uint64 {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start + 1
}
