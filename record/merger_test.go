package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMergerCoalescesAdjacentRuns(t *testing.T) {
	m := NewRunMerger(2)
	m.Insert(0)
	m.Insert(0)
	m.Insert(1)
	m.Insert(1)
	m.Insert(1)
	m.Insert(0)
	m.Flush()

	require.Equal(t, []Run{{Rank: 0, Length: 2}, {Rank: 1, Length: 3}, {Rank: 0, Length: 1}}, m.Runs)
	assert.Equal(t, uint64(6), m.Size())
	assert.Equal(t, uint64(3), m.Counts(0))
	assert.Equal(t, uint64(3), m.Counts(1))
}

func TestRunMergerInsertRunCoalescesAcrossCopyBoundary(t *testing.T) {
	m := NewRunMerger(1)
	m.InsertRun(Run{Rank: 0, Length: 3}) // old-body copy
	m.Insert(0)                          // freshly inserted position, same rank
	m.Flush()

	require.Equal(t, []Run{{Rank: 0, Length: 4}}, m.Runs)
}

func TestRunMergerAddEdgeGrowsCounts(t *testing.T) {
	m := NewRunMerger(0)
	m.AddEdge()
	m.Insert(0)
	assert.Equal(t, uint64(1), m.Counts(0))
	assert.Equal(t, uint64(0), m.Counts(5)) // never-seen rank reports zero, not a panic
}

func TestRunMergerZeroLengthRunIsNoop(t *testing.T) {
	m := NewRunMerger(1)
	m.InsertRun(Run{Rank: 0, Length: 0})
	m.Flush()
	assert.Empty(t, m.Runs)
	assert.Equal(t, uint64(0), m.Size())
}
