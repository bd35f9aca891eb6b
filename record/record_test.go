package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakon-jon/gbwt"
)

func TestDynamicRecordEdges(t *testing.T) {
	var r DynamicRecord
	require.Equal(t, 0, r.Outdegree())

	rankA := r.AddEdge(5)
	rankB := r.AddEdge(7)
	assert.Equal(t, uint32(0), rankA)
	assert.Equal(t, uint32(1), rankB)
	assert.Equal(t, 2, r.Outdegree())

	assert.Equal(t, rankB, r.EdgeTo(7))
	assert.Equal(t, uint32(gbwt.InvalidEdge), r.EdgeTo(9))
	assert.Equal(t, gbwt.NodeID(5), r.Successor(rankA))
}

func TestDynamicRecordIncoming(t *testing.T) {
	var r DynamicRecord
	r.Increment(3)
	r.Increment(4)
	r.Increment(3)
	require.Len(t, r.Incoming, 2)

	var gotThree, gotFour uint64
	for _, in := range r.Incoming {
		switch in.Node {
		case 3:
			gotThree = in.Count
		case 4:
			gotFour = in.Count
		}
	}
	assert.Equal(t, uint64(2), gotThree)
	assert.Equal(t, uint64(1), gotFour)
}

func TestDynamicRecordRunLF(t *testing.T) {
	r := DynamicRecord{
		Outgoing: []Edge{{Node: 3, Offset: 10}, {Node: 4, Offset: 20}},
		Body:     []Run{{Rank: 0, Length: 2}, {Rank: 1, Length: 3}, {Rank: 0, Length: 1}},
		BodySize: 6,
	}

	succ, offset, runEnd, err := r.RunLF(0)
	require.NoError(t, err)
	assert.Equal(t, gbwt.NodeID(3), succ)
	assert.Equal(t, uint64(10), offset)
	assert.Equal(t, uint64(1), runEnd)

	succ, offset, runEnd, err = r.RunLF(1)
	require.NoError(t, err)
	assert.Equal(t, gbwt.NodeID(3), succ)
	assert.Equal(t, uint64(11), offset)
	assert.Equal(t, uint64(1), runEnd)

	succ, offset, runEnd, err = r.RunLF(2)
	require.NoError(t, err)
	assert.Equal(t, gbwt.NodeID(4), succ)
	assert.Equal(t, uint64(20), offset)
	assert.Equal(t, uint64(4), runEnd)

	succ, offset, runEnd, err = r.RunLF(5)
	require.NoError(t, err)
	assert.Equal(t, gbwt.NodeID(3), succ)
	assert.Equal(t, uint64(12), offset) // second run of rank 0: base offset + 2 prior rank-0 positions
	assert.Equal(t, uint64(5), runEnd)

	_, _, _, err = r.RunLF(6)
	assert.ErrorIs(t, err, gbwt.ErrOutOfRange)
}

func TestDynamicRecordNextSample(t *testing.T) {
	r := DynamicRecord{IDs: []Sample{{Offset: 2, Seq: 0}, {Offset: 5, Seq: 1}, {Offset: 9, Seq: 2}}}
	assert.Equal(t, 0, r.NextSample(0))
	assert.Equal(t, 0, r.NextSample(2))
	assert.Equal(t, 1, r.NextSample(3))
	assert.Equal(t, 2, r.NextSample(6))
	assert.Equal(t, 3, r.NextSample(10))
}

func TestDynamicRecordRecode(t *testing.T) {
	r := DynamicRecord{
		Outgoing: []Edge{{Node: 7}, {Node: 3}, {Node: 5}},
		Body:     []Run{{Rank: 0, Length: 1}, {Rank: 1, Length: 1}, {Rank: 2, Length: 1}},
		Incoming: []Incoming{{Node: 9}, {Node: 1}},
	}
	r.Recode()

	require.Len(t, r.Outgoing, 3)
	assert.Equal(t, gbwt.NodeID(3), r.Outgoing[0].Node)
	assert.Equal(t, gbwt.NodeID(5), r.Outgoing[1].Node)
	assert.Equal(t, gbwt.NodeID(7), r.Outgoing[2].Node)

	// Rank 0 used to mean node 7, now it must mean node 3's new rank.
	assert.Equal(t, uint32(2), r.Body[0].Rank) // was outrank 0 (node 7) -> now rank 2
	assert.Equal(t, uint32(0), r.Body[1].Rank) // was outrank 1 (node 3) -> now rank 0
	assert.Equal(t, uint32(1), r.Body[2].Rank) // was outrank 2 (node 5) -> now rank 1

	assert.Equal(t, gbwt.NodeID(1), r.Incoming[0].Node)
	assert.Equal(t, gbwt.NodeID(9), r.Incoming[1].Node)
}
