package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakon-jon/gbwt"
	"github.com/hakon-jon/gbwt/locate"
)

func text(nodes ...gbwt.NodeID) []gbwt.NodeID { return nodes }

// Scenario 1 (spec.md §8): single two-node sequence.
func TestInsertBatchSingleSequence(t *testing.T) {
	g := New()
	opts := gbwt.NewOptions()
	require.NoError(t, g.InsertBatch(text(2, 3, gbwt.Endmarker), opts))

	assert.Equal(t, uint64(4), g.Sigma())
	assert.Equal(t, uint64(1), g.Offset())
	assert.Equal(t, uint64(1), g.Sequences())
	assert.Equal(t, uint64(3), g.Size())

	endmarker := g.Record(gbwt.Endmarker)
	require.Equal(t, 1, endmarker.Outdegree())
	assert.Equal(t, gbwt.NodeID(2), endmarker.Successor(0))
	require.Len(t, endmarker.IDs, 1)
	assert.Equal(t, uint64(0), endmarker.IDs[0].Offset)
	assert.Equal(t, uint64(0), endmarker.IDs[0].Seq)

	n2 := g.Record(2)
	require.Len(t, n2.Body, 1)
	assert.Equal(t, gbwt.NodeID(3), n2.Successor(n2.Body[0].Rank))

	n3 := g.Record(3)
	require.Len(t, n3.Body, 1)
	assert.Equal(t, gbwt.Endmarker, n3.Successor(n3.Body[0].Rank))
}

// Scenario 2: two disjoint sequences in a single batch.
func TestInsertBatchTwoDisjointSequences(t *testing.T) {
	g := New()
	opts := gbwt.NewOptions()
	require.NoError(t, g.InsertBatch(text(2, 3, gbwt.Endmarker, 4, 5, gbwt.Endmarker), opts))

	assert.Equal(t, uint64(2), g.Sequences())
	assert.Equal(t, uint64(6), g.Size())
	assert.Equal(t, uint64(1), g.Offset())
	assert.Equal(t, uint64(6), g.Sigma())

	endmarker := g.Record(gbwt.Endmarker)
	require.Len(t, endmarker.IDs, 2)
	assert.Equal(t, uint64(0), endmarker.IDs[0].Seq)
	assert.Equal(t, uint64(1), endmarker.IDs[1].Seq)
}

// Scenario 3: shared prefix, plus locate.
func TestInsertBatchSharedPrefix(t *testing.T) {
	g := New()
	opts := gbwt.NewOptions()
	require.NoError(t, g.InsertBatch(text(2, 3, 4, gbwt.Endmarker, 2, 3, 5, gbwt.Endmarker), opts))

	n2 := g.Record(2)
	require.Len(t, n2.Body, 1)
	assert.Equal(t, uint64(2), n2.Body[0].Length)

	n3 := g.Record(3)
	require.Len(t, n3.Body, 2)
	var total uint64
	successors := map[gbwt.NodeID]bool{}
	for _, run := range n3.Body {
		total += run.Length
		successors[n3.Successor(run.Rank)] = true
	}
	assert.Equal(t, uint64(2), total)
	assert.True(t, successors[4])
	assert.True(t, successors[5])

	ids := locate.Locate(g, gbwt.SearchState{Node: 3, Start: 0, End: n3.BodySize - 1})
	assert.Equal(t, []uint64{0, 1}, ids)
}

// Scenario 4: interleaved insertion order produces identical records.
func TestInsertBatchOrderIndependence(t *testing.T) {
	opts := gbwt.NewOptions()

	combined := New()
	require.NoError(t, combined.InsertBatch(text(2, 3, gbwt.Endmarker, 4, 5, gbwt.Endmarker), opts))
	combined.Recode()

	separate := New()
	require.NoError(t, separate.InsertBatch(text(2, 3, gbwt.Endmarker), opts))
	require.NoError(t, separate.InsertBatch(text(4, 5, gbwt.Endmarker), opts))
	separate.Recode()

	require.Equal(t, combined.Header, separate.Header)
	require.Equal(t, len(combined.BWT), len(separate.BWT))
	for i := range combined.BWT {
		assert.Equal(t, combined.BWT[i].Outgoing, separate.BWT[i].Outgoing, "record %d outgoing", i)
		assert.Equal(t, combined.BWT[i].Body, separate.BWT[i].Body, "record %d body", i)
		assert.Equal(t, combined.BWT[i].IDs, separate.BWT[i].IDs, "record %d samples", i)
	}
}

// Scenario 6: locate must LF-walk past non-sampled positions.
func TestLocatePastSamples(t *testing.T) {
	g := New()
	opts := gbwt.NewOptions(gbwt.WithSampleInterval(4))

	path := make([]gbwt.NodeID, 0, 12)
	for n := gbwt.NodeID(2); n < 12; n++ {
		path = append(path, n)
	}
	path = append(path, gbwt.Endmarker)
	require.NoError(t, g.InsertBatch(path, opts))

	// Every endmarker-record position is sampled, so the records of the
	// path's nodes are where unsampled positions (e.g. node 2, reached at
	// iteration 2) must be walked until a sample is found.
	nodes := append([]gbwt.NodeID{gbwt.Endmarker}, path[:len(path)-1]...)
	for _, node := range nodes {
		rec := g.Record(node)
		for i := uint64(0); i < rec.BodySize; i++ {
			ids := locate.Locate(g, gbwt.SearchState{Node: node, Start: i, End: i})
			require.Len(t, ids, 1)
			assert.Equal(t, uint64(0), ids[0])
		}
	}
}

func TestExtractRoundTrip(t *testing.T) {
	g := New()
	opts := gbwt.NewOptions()
	require.NoError(t, g.InsertBatch(text(2, 3, 4, gbwt.Endmarker, 2, 3, 5, gbwt.Endmarker), opts))

	first, err := g.Extract(0)
	require.NoError(t, err)
	assert.Equal(t, []gbwt.NodeID{2, 3, 4}, first)

	second, err := g.Extract(1)
	require.NoError(t, err)
	assert.Equal(t, []gbwt.NodeID{2, 3, 5}, second)
}

func TestMergeMatchesSingleBatchInsertion(t *testing.T) {
	opts := gbwt.NewOptions()

	direct := New()
	require.NoError(t, direct.InsertBatch(text(2, 3, gbwt.Endmarker, 4, 5, gbwt.Endmarker), opts))
	direct.Recode()

	a := New()
	require.NoError(t, a.InsertBatch(text(2, 3, gbwt.Endmarker), opts))
	b := New()
	require.NoError(t, b.InsertBatch(text(4, 5, gbwt.Endmarker), opts))
	require.NoError(t, a.Merge(b, opts))
	a.Recode()

	assert.Equal(t, direct.Header, a.Header)
}

func TestInsertBatchEmptyIsNoop(t *testing.T) {
	g := New()
	before := *g
	require.NoError(t, g.InsertBatch(nil, gbwt.NewOptions()))
	assert.Equal(t, before.Header, g.Header)
}

func TestInsertBatchSoloEndmarker(t *testing.T) {
	g := New()
	require.NoError(t, g.InsertBatch(text(gbwt.Endmarker), gbwt.NewOptions()))

	assert.Equal(t, uint64(1), g.Sequences())
	endmarker := g.Record(gbwt.Endmarker)
	require.Len(t, endmarker.IDs, 1) // the one mandatory endmarker sample
	assert.Equal(t, uint64(1), g.Effective())
}

func TestInsertBatchRejectsUnterminatedText(t *testing.T) {
	g := New()
	err := g.InsertBatch(text(2, 3), gbwt.NewOptions())
	assert.ErrorIs(t, err, gbwt.ErrBatchNotTerminated)
}

func TestResizeDecreasingOffset(t *testing.T) {
	g := New()
	require.NoError(t, g.InsertBatch(text(5, 6, gbwt.Endmarker), gbwt.NewOptions()))
	before := g.Record(5).Outgoing

	require.NoError(t, g.Resize(2, g.Sigma()))
	assert.Equal(t, uint64(2), g.Offset())
	assert.Equal(t, before, g.Record(5).Outgoing)
}
