package builder_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakon-jon/gbwt"
	"github.com/hakon-jon/gbwt/builder"
	"github.com/hakon-jon/gbwt/dynamic"
)

func TestBuilderInsertAndFinish(t *testing.T) {
	b := builder.New(64, gbwt.NewOptions())

	require.NoError(t, b.Insert([]gbwt.NodeID{2, 3, 4}, false))
	require.NoError(t, b.Insert([]gbwt.NodeID{2, 3, 5}, false))
	require.NoError(t, b.Finish())

	idx := b.Index()
	assert.Equal(t, uint64(2), idx.Sequences())

	first, err := idx.Extract(0)
	require.NoError(t, err)
	assert.Equal(t, []gbwt.NodeID{2, 3, 4}, first)

	second, err := idx.Extract(1)
	require.NoError(t, err)
	assert.Equal(t, []gbwt.NodeID{2, 3, 5}, second)
}

func TestBuilderFlushesOnOverflow(t *testing.T) {
	// Buffer holds exactly one 3-node sequence (2 nodes + endmarker); a
	// second Insert call must trigger an automatic Flush rather than
	// overrunning the buffer.
	b := builder.New(3, gbwt.NewOptions())

	require.NoError(t, b.Insert([]gbwt.NodeID{2, 3}, false))
	require.NoError(t, b.Insert([]gbwt.NodeID{4, 5}, false))
	require.NoError(t, b.Finish())

	idx := b.Index()
	assert.Equal(t, uint64(2), idx.Sequences())
}

func TestBuilderSkipsOverlongSequenceWithDiagnostic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.WarnLevel)
	opts := gbwt.NewOptions(gbwt.WithLogger(logrus.NewEntry(logger)))

	b := builder.New(3, opts)
	require.NoError(t, b.Insert([]gbwt.NodeID{2, 3, 4, 5}, false)) // needs 5 slots, buffer holds 3
	require.NoError(t, b.Finish())

	assert.Equal(t, uint64(0), b.Index().Sequences())

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning about the skipped sequence")
}

func TestBuilderBothOrientations(t *testing.T) {
	b := builder.New(64, gbwt.NewOptions())

	require.NoError(t, b.Insert([]gbwt.NodeID{2, 4, 6}, true))
	require.NoError(t, b.Finish())

	idx := b.Index()
	require.Equal(t, uint64(2), idx.Sequences())

	forward, err := idx.Extract(0)
	require.NoError(t, err)
	assert.Equal(t, []gbwt.NodeID{2, 4, 6}, forward)

	reverse, err := idx.Extract(1)
	require.NoError(t, err)
	assert.Equal(t, []gbwt.NodeID{gbwt.Reverse(6), gbwt.Reverse(4), gbwt.Reverse(2)}, reverse)
}

func TestBuilderSwapIndex(t *testing.T) {
	b := builder.New(64, gbwt.NewOptions())
	require.NoError(t, b.Insert([]gbwt.NodeID{2, 3}, false))
	require.NoError(t, b.Finish())
	require.Equal(t, uint64(1), b.Index().Sequences())

	fresh := dynamic.New()
	b.SwapIndex(fresh)

	assert.Equal(t, uint64(0), b.Index().Sequences())
	assert.Equal(t, uint64(1), fresh.Sequences())
}
