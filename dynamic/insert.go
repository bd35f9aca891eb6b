package dynamic

import (
	"sort"

	"github.com/hakon-jon/gbwt"
	"github.com/hakon-jon/gbwt/record"
)

// updateRecords is step 1 of the insertion algorithm (spec.md §4.3): walk
// the sorted sequence list grouped by Curr, and for each group splice the
// group's transitions into record(curr)'s body, samples and incoming
// edges. iteration is the 1-based iteration counter used for the
// sampling interval. Sampling is mandatory, regardless of SAMPLE_INTERVAL,
// at both ends of every sequence: every position in the endmarker's own
// record (spec.md §8 scenarios 1-2, every sequence starts there) and every
// position whose transition lands on the endmarker (spec.md §8's
// "terminating positions" invariant).
func updateRecords(index *DynamicGBWT, seqs []Sequence, iteration uint64, opts gbwt.Options) {
	groupSize := uint64(0)
	for i := 0; i < len(seqs); {
		curr := seqs[i].Curr
		current := index.record(curr)

		merger := record.NewRunMerger(current.Outdegree())
		newSamples := make([]record.Sample, 0, len(current.IDs))
		bodyIdx := 0
		remaining := record.Run{}
		if len(current.Body) > 0 {
			remaining = current.Body[0]
		}
		sampleIdx := 0
		insertCount := uint64(0)

		for i < len(seqs) && seqs[i].Curr == curr {
			seq := &seqs[i]
			outrank := current.EdgeTo(seq.Next)
			if outrank >= uint32(current.Outdegree()) {
				outrank = current.AddEdge(seq.Next)
				merger.AddEdge()
			}

			// Copy old runs until the merger has emitted seq.Offset positions.
			for merger.Size() < seq.Offset {
				if bodyIdx >= len(current.Body) {
					break
				}
				if remaining.Length <= seq.Offset-merger.Size() {
					merger.InsertRun(remaining)
					bodyIdx++
					if bodyIdx < len(current.Body) {
						remaining = current.Body[bodyIdx]
					} else {
						remaining = record.Run{}
					}
				} else {
					take := seq.Offset - merger.Size()
					merger.InsertRun(record.Run{Rank: remaining.Rank, Length: take})
					remaining.Length -= take
				}
			}

			// Copy old samples until the offset, shifting by what we've inserted.
			for sampleIdx < len(current.IDs) && current.IDs[sampleIdx].Offset+insertCount < seq.Offset {
				s := current.IDs[sampleIdx]
				newSamples = append(newSamples, record.Sample{Offset: s.Offset + insertCount, Seq: s.Seq})
				sampleIdx++
			}

			if iteration%opts.SampleInterval == 0 || curr == gbwt.Endmarker || seq.Next == gbwt.Endmarker {
				newSamples = append(newSamples, record.Sample{Offset: seq.Offset, Seq: seq.ID})
			}

			seq.Offset = merger.Counts(outrank) // rank(next) within the record, transient.
			merger.Insert(outrank)
			insertCount++

			if seq.Next != gbwt.Endmarker {
				index.record(seq.Next).Increment(curr)
			}
			i++
		}

		// Copy the remaining old body and samples.
		if remaining.Length > 0 {
			merger.InsertRun(remaining)
			bodyIdx++
		}
		for ; bodyIdx < len(current.Body); bodyIdx++ {
			merger.InsertRun(current.Body[bodyIdx])
		}
		for ; sampleIdx < len(current.IDs); sampleIdx++ {
			s := current.IDs[sampleIdx]
			newSamples = append(newSamples, record.Sample{Offset: s.Offset + insertCount, Seq: s.Seq})
		}

		merger.Flush()
		current.Body = merger.Runs
		current.BodySize = merger.Size()
		current.IDs = newSamples

		groupSize += insertCount
	}
	index.Header.Size += groupSize
}

// rebuildOffsets is step 5 of the insertion algorithm: for each distinct
// Next node appearing in seqs, walk record(next).Incoming in order and
// set each predecessor's outgoing offset to the running sum of
// predecessor counts, then fold that edge offset into every sequence's
// (currently rank-within-successor) Offset.
func rebuildOffsets(index *DynamicGBWT, seqs []Sequence) {
	var next gbwt.NodeID = gbwt.NodeID(index.Sigma())
	for _, seq := range seqs {
		if seq.Next == next {
			continue
		}
		next = seq.Next
		var offset uint64
		for _, in := range index.record(next).Incoming {
			pred := index.record(in.Node)
			pred.SetOffset(pred.EdgeTo(next), offset)
			offset += in.Count
		}
	}

	for i := range seqs {
		seq := &seqs[i]
		current := index.record(seq.Curr)
		seq.Offset += current.Offset(current.EdgeTo(seq.Next))
	}
}

// runInsertion drives the multi-sequence advancement loop (spec.md
// §4.3): updateRecords, then advance every sequence's source position,
// sort and trim terminated sequences, rebuild offsets, and advance to
// the next node, until no sequences remain. It is shared by InsertBatch
// (textSource) and Merge (dynamicSource, spec.md §9 design note (a)).
func runInsertion(index *DynamicGBWT, seqs []Sequence, source Source, opts gbwt.Options) uint64 {
	for iteration := uint64(1); ; iteration++ {
		updateRecords(index, seqs, iteration, opts)

		for i := range seqs {
			seqs[i].Pos = source.NextPosition(seqs[i].Curr, seqs[i].Pos)
		}

		seqs = sortSequences(seqs)
		if len(seqs) == 0 {
			return iteration
		}

		rebuildOffsets(index, seqs)

		for i := range seqs {
			seq := &seqs[i]
			seq.Curr = seq.Next
			seq.Next = source.NodeAt(seq.Curr, seq.Pos)
		}
	}
}

// sortedByCurrOffset reports whether seqs is sorted by (Curr, Offset),
// the order the sequence list must already be in at the start of every
// iteration. Nothing in this module calls it.
func sortedByCurrOffset(seqs []Sequence) bool {
	return sort.SliceIsSorted(seqs, func(i, j int) bool {
		if seqs[i].Curr != seqs[j].Curr {
			return seqs[i].Curr < seqs[j].Curr
		}
		return seqs[i].Offset < seqs[j].Offset
	})
}
