// Package dynamic implements the insertion engine at the core of this
// module: DynamicGBWT, the multi-sequence advancement loop described in
// spec.md §4.3, and the operations built on top of it (batch insertion,
// merging another dynamic GBWT, alphabet resize, and extraction).
//
// Grounded on _examples/original_source/dynamic_gbwt.{h,cpp}
// (DynamicGBWT::insert/merge/resize/recode, and the free functions
// updateRecords/nextPosition/sortSequences/rebuildOffsets/advancePosition),
// restructured into Go idiom the way
// github.com/dolthub/dolt/go/store/nbs structures its mutable store type
// around a small set of free functions plus one guarded struct.
package dynamic

import (
	"github.com/pkg/errors"

	"github.com/hakon-jon/gbwt"
	"github.com/hakon-jon/gbwt/record"
)

// DynamicGBWT is the online, single-writer BWT index over a collection
// of node-labelled paths (spec.md §1/§3).
type DynamicGBWT struct {
	Header gbwt.Header
	BWT    []record.DynamicRecord
}

// New returns an empty index containing only the endmarker record.
func New() *DynamicGBWT {
	return &DynamicGBWT{
		Header: gbwt.Header{Offset: 0, AlphabetSize: 1},
		BWT:    []record.DynamicRecord{{}},
	}
}

func (g *DynamicGBWT) comp(node gbwt.NodeID) uint64 {
	return gbwt.Comp(node, g.Header.Offset)
}

func (g *DynamicGBWT) record(node gbwt.NodeID) *record.DynamicRecord {
	return &g.BWT[g.comp(node)]
}

// Record exposes the BWT record for node, for read-only callers such as
// package locate.
func (g *DynamicGBWT) Record(node gbwt.NodeID) *record.DynamicRecord {
	return g.record(node)
}

// Empty reports whether the index contains no inserted sequences.
func (g *DynamicGBWT) Empty() bool { return g.Header.Size == 0 }

// Size returns the total number of BWT positions (header.size).
func (g *DynamicGBWT) Size() uint64 { return g.Header.Size }

// Sequences returns the number of indexed paths (header.sequences).
func (g *DynamicGBWT) Sequences() uint64 { return g.Header.Sequences }

// Sigma returns the alphabet size (header.alphabet_size).
func (g *DynamicGBWT) Sigma() uint64 { return g.Header.AlphabetSize }

// Offset returns the alphabet offset (header.offset).
func (g *DynamicGBWT) Offset() uint64 { return g.Header.Offset }

// Effective returns the number of records held in memory.
func (g *DynamicGBWT) Effective() uint64 { return g.Header.Effective() }

// Count returns the number of BWT positions for node.
func (g *DynamicGBWT) Count(node gbwt.NodeID) uint64 { return g.record(node).BodySize }

// Runs returns the total number of runs across all records.
func (g *DynamicGBWT) Runs() uint64 {
	var total uint64
	for i := range g.BWT {
		total += uint64(g.BWT[i].Runs())
	}
	return total
}

// SampleCount returns the total number of stored samples across all records.
func (g *DynamicGBWT) SampleCount() uint64 {
	var total uint64
	for i := range g.BWT {
		total += uint64(g.BWT[i].Samples())
	}
	return total
}

// Resize changes the alphabet offset and/or size, compacting existing
// records into their new comp() positions (spec.md §8, "Alphabet resize
// decreasing offset"). Mirrors DynamicGBWT::resize: it only ever grows
// the alphabet (new_sigma is clamped up to the current sigma) and, once
// the alphabet holds real nodes (sigma > 1), only ever shrinks the offset
// (new_offset is clamped down to the current offset), so existing data is
// never shifted out of range. An index with sigma <= 1 may take any
// offset below the new sigma.
func (g *DynamicGBWT) Resize(newOffset, newSigma uint64) error {
	if g.Sigma() > 1 && newOffset > g.Header.Offset {
		newOffset = g.Header.Offset
	}
	if newSigma <= 1 {
		newOffset = g.Header.Offset
	}
	if g.Sigma() > newSigma {
		newSigma = g.Sigma()
	}
	if newOffset > 0 && newOffset >= newSigma {
		return errors.Wrapf(gbwt.ErrInvalidAlphabetResize, "offset %d, sigma %d", newOffset, newSigma)
	}

	if newOffset == g.Header.Offset && newSigma == g.Sigma() {
		return nil
	}

	newBWT := make([]record.DynamicRecord, newSigma-newOffset)
	if g.Effective() > 0 {
		newBWT[0] = g.BWT[0]
	}
	for comp := uint64(1); comp < g.Effective(); comp++ {
		newBWT[comp+g.Header.Offset-newOffset] = g.BWT[comp]
	}
	g.BWT = newBWT
	g.Header.Offset = newOffset
	g.Header.AlphabetSize = newSigma
	return nil
}

// Recode sorts every record's outgoing and incoming edges into
// canonical order. Called at the end of every public insert/merge.
func (g *DynamicGBWT) Recode() {
	for i := range g.BWT {
		g.BWT[i].Recode()
	}
}

// InsertBatch inserts the sequences packed into text (a concatenation of
// node-id sequences, each terminated by gbwt.Endmarker) and recodes the
// index. An empty text is a documented no-op (spec.md §8).
func (g *DynamicGBWT) InsertBatch(text []gbwt.NodeID, opts gbwt.Options) error {
	if len(text) == 0 {
		return nil
	}
	if text[len(text)-1] != gbwt.Endmarker {
		return gbwt.ErrBatchNotTerminated
	}

	seqs, minNode, maxNode := g.seedFromText(text)
	if maxNode == 0 {
		minNode = 1 // no real nodes seen: keep offset at 0
	}
	if err := g.Resize(uint64(minNode-1), uint64(maxNode+1)); err != nil {
		return err
	}

	runInsertion(g, seqs, textSource{text: text}, opts)
	g.Recode()
	return nil
}

// seedFromText builds one Sequence per path in text, starting at the
// endmarker with Offset chosen so that the endmarker record lists
// sequences in the order their ids are assigned -- i.e. appended after
// any sequence already present (spec.md §4.3 "Setup") -- and reports the
// minimum and maximum node ids seen so the caller can resize the
// alphabet before inserting.
func (g *DynamicGBWT) seedFromText(text []gbwt.NodeID) (seqs []Sequence, minNode, maxNode gbwt.NodeID) {
	existing := g.record(gbwt.Endmarker).BodySize
	minNode = ^gbwt.NodeID(0)
	if !g.Empty() {
		minNode = gbwt.NodeID(g.Header.Offset) + 1
	}
	maxNode = 0
	if !g.Empty() {
		maxNode = gbwt.NodeID(g.Sigma()) - 1
	}

	seqStart := true
	for i, node := range text {
		if seqStart {
			seqs = append(seqs, Sequence{
				ID:     g.Header.Sequences,
				Pos:    uint64(i),
				Curr:   gbwt.Endmarker,
				Next:   node,
				Offset: existing + uint64(len(seqs)),
			})
			g.Header.Sequences++
			seqStart = false
		}
		if node == gbwt.Endmarker {
			seqStart = true
		} else if node < minNode {
			minNode = node
		}
		if node > maxNode {
			maxNode = node
		}
	}
	return seqs, minNode, maxNode
}

// Merge inserts every sequence from source into g (spec.md §9 design
// note (a): "inserting one DynamicGBWT directly into another"). Sequence
// ids in source are re-assigned starting at g.Sequences(), in the order
// source's own endmarker record lists them.
func (g *DynamicGBWT) Merge(source *DynamicGBWT, opts gbwt.Options) error {
	if source.Empty() {
		return nil
	}
	if err := g.Resize(source.Header.Offset, source.Sigma()); err != nil {
		return err
	}

	endmarker := source.record(gbwt.Endmarker)
	seqs := make([]Sequence, 0, endmarker.BodySize)
	var pos uint64
	for _, run := range endmarker.Body {
		for k := uint64(0); k < run.Length; k++ {
			seqs = append(seqs, Sequence{
				ID:     g.Header.Sequences,
				Pos:    pos,
				Curr:   gbwt.Endmarker,
				Next:   endmarker.Successor(run.Rank),
				Offset: g.record(gbwt.Endmarker).BodySize + uint64(len(seqs)),
			})
			g.Header.Sequences++
			pos++
		}
	}

	runInsertion(g, seqs, dynamicSource{index: source}, opts)
	g.Recode()
	return nil
}

// Extract reconstructs the full node sequence for sequence id.
//
// Every insertion path (seedFromText, Merge) assigns sequence ids
// consecutively and always appends the new endmarker-record position past
// whatever the endmarker record already held, so body position p of
// record(Endmarker) belongs to sequence p for as long as that index lives.
// That makes record(Endmarker) itself the sample: RunLF at position id
// steps straight to the sequence's first node, and repeating RunLF walks
// the path forward until it loops back to the endmarker.
func (g *DynamicGBWT) Extract(id uint64) ([]gbwt.NodeID, error) {
	if id >= g.Header.Sequences {
		return nil, gbwt.ErrOutOfRange
	}

	var path []gbwt.NodeID
	node, pos := gbwt.Endmarker, id
	for {
		succ, offset, _, err := g.record(node).RunLF(pos)
		if err != nil {
			return nil, err
		}
		if succ == gbwt.Endmarker {
			return path, nil
		}
		path = append(path, succ)
		node, pos = succ, offset
	}
}
