// Package builder implements the double-buffered front-end described in
// spec.md §4.4: a single-producer/single-consumer batcher that accepts
// one sequence at a time, packs it into a flat text buffer, and hands the
// buffer off to a background worker while the caller starts filling the
// next one.
//
// Grounded on GBWTBuilder (insert/flush/finish/swapIndex) in
// _examples/original_source/dynamic_gbwt.cpp, with the hand thread/join
// pair replaced by golang.org/x/sync/errgroup the way
// github.com/dolthub/dolt/go/store/nbs/conjoiner.go hands a batch of
// concurrent work to an errgroup.Group and joins it with Wait. Diagnostics
// go through the same github.com/sirupsen/logrus *Entry every other
// package in this module logs through, tagged with a
// github.com/google/uuid batch id so overlapping builder runs can be told
// apart in a shared log stream.
package builder

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hakon-jon/gbwt"
	"github.com/hakon-jon/gbwt/dynamic"
)

// Builder batches sequences into text_type buffers and inserts them into
// a DynamicGBWT on a background worker. It is not safe for concurrent use
// by multiple producer goroutines; the concurrency it supports is
// strictly the one producer plus its own one worker (spec.md §4.4
// "Concurrency contract").
type Builder struct {
	index *dynamic.DynamicGBWT
	opts  gbwt.Options

	inputBuffer        []gbwt.NodeID
	constructionBuffer []gbwt.NodeID
	inputTail          int
	constructionTail   int

	insertedSequences uint64
	batchSequences    uint64

	worker *errgroup.Group
	log    *logrus.Entry
}

// New creates a builder with two buffers of bufferSize nodes each,
// wrapping a fresh, empty index.
func New(bufferSize int, opts gbwt.Options) *Builder {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Builder{
		index:              dynamic.New(),
		opts:               opts,
		inputBuffer:        make([]gbwt.NodeID, bufferSize),
		constructionBuffer: make([]gbwt.NodeID, bufferSize),
		log:                log,
	}
}

// Index returns the index being built. The caller must not read it while
// a worker may still be running; Flush or Finish first.
func (b *Builder) Index() *dynamic.DynamicGBWT { return b.index }

// SwapIndex exchanges the builder's index with another, e.g. to resume
// construction into a previously persisted index. Both the builder's
// worker and the caller must be quiescent.
func (b *Builder) SwapIndex(another *dynamic.DynamicGBWT) {
	*b.index, *another = *another, *b.index
}

// Insert appends sequence to the current batch, terminated by the
// endmarker. If bothOrientations is set, the reverse-complement path
// (spec.md §8 scenario 5: reverse(c), reverse(b), reverse(a) for input
// a,b,c) is appended as a second sequence in the same batch. A sequence
// that cannot fit in an empty buffer is skipped with a logged diagnostic
// rather than treated as an error (spec.md §7 "Batch containing a
// sequence longer than the builder's buffer").
func (b *Builder) Insert(sequence []gbwt.NodeID, bothOrientations bool) error {
	spaceRequired := len(sequence) + 1
	if bothOrientations {
		spaceRequired *= 2
	}
	if spaceRequired > len(b.inputBuffer) {
		b.log.WithField("length", len(sequence)).Warn("gbwt: sequence is too long for the builder buffer, skipping")
		return nil
	}

	if b.inputTail+spaceRequired > len(b.inputBuffer) {
		if err := b.Flush(); err != nil {
			return err
		}
	}

	for _, node := range sequence {
		b.inputBuffer[b.inputTail] = node
		b.inputTail++
	}
	b.inputBuffer[b.inputTail] = gbwt.Endmarker
	b.inputTail++
	b.batchSequences++

	if bothOrientations {
		for i := len(sequence) - 1; i >= 0; i-- {
			b.inputBuffer[b.inputTail] = gbwt.Reverse(sequence[i])
			b.inputTail++
		}
		b.inputBuffer[b.inputTail] = gbwt.Endmarker
		b.inputTail++
		b.batchSequences++
	}

	return nil
}

// Flush waits for any running worker, swaps the input and construction
// buffers, and -- if the input side collected anything -- starts a new
// worker inserting the construction buffer into the index. It returns the
// error (if any) the just-joined worker finished with.
func (b *Builder) Flush() error {
	if err := b.join(); err != nil {
		return err
	}

	b.inputBuffer, b.constructionBuffer = b.constructionBuffer, b.inputBuffer
	b.constructionTail = b.inputTail
	b.inputTail = 0

	if b.constructionTail == 0 {
		return nil
	}

	batch := b.constructionBuffer[:b.constructionTail]
	startID := b.insertedSequences
	batchLen := b.batchSequences
	runID := uuid.New()
	log := b.log.WithFields(logrus.Fields{
		"batch":      runID.String(),
		"start_id":   startID,
		"sequences":  batchLen,
		"batch_size": humanize.Comma(int64(b.constructionTail)),
	})

	b.worker = &errgroup.Group{}
	b.worker.Go(func() error {
		log.Debug("gbwt: builder worker starting")
		if err := b.index.InsertBatch(batch, b.opts); err != nil {
			log.WithError(err).Error("gbwt: builder worker failed")
			return errors.Wrapf(err, "batch %s (start id %d)", runID, startID)
		}
		log.Debug("gbwt: builder worker finished")
		return nil
	})

	b.insertedSequences += b.batchSequences
	b.batchSequences = 0
	return nil
}

// Finish flushes any remaining input, waits for the last worker, and
// recodes the index so it is ready to serialize.
func (b *Builder) Finish() error {
	if err := b.Flush(); err != nil {
		return err
	}
	if err := b.join(); err != nil {
		return err
	}
	b.index.Recode()
	return nil
}

func (b *Builder) join() error {
	if b.worker == nil {
		return nil
	}
	worker := b.worker
	b.worker = nil
	return worker.Wait()
}
