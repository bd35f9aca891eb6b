package serialize

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/hakon-jon/gbwt"
	"github.com/hakon-jon/gbwt/record"
)

// encodeRecordBody writes one record's outgoing-edge list and run-encoded
// body as spec.md §6.1 describes: a varint outdegree, then that many
// (successor-delta, edge_offset) varint pairs with successors stored in
// ascending order (true after Recode, which every public mutation ends
// with), then the body as (outrank, length) varint pairs. Incoming edges
// and samples are not part of a record's own bytes -- the loader rebuilds
// Incoming from the bodies (§6.2 step 4) and samples are carried in the
// separate section serialize.go writes after the record array.
func encodeRecordBody(w io.Writer, r *record.DynamicRecord) error {
	if err := writeUvarint(w, uint64(len(r.Outgoing))); err != nil {
		return err
	}
	var previous gbwt.NodeID
	for _, edge := range r.Outgoing {
		if err := writeUvarint(w, uint64(edge.Node-previous)); err != nil {
			return err
		}
		if err := writeUvarint(w, edge.Offset); err != nil {
			return err
		}
		previous = edge.Node
	}

	if err := writeUvarint(w, uint64(len(r.Body))); err != nil {
		return err
	}
	for _, run := range r.Body {
		if err := writeUvarint(w, uint64(run.Rank)); err != nil {
			return err
		}
		if err := writeUvarint(w, run.Length); err != nil {
			return err
		}
	}
	return nil
}

// decodeRecordBody is the inverse of encodeRecordBody. BodySize is
// recomputed as the sum of run lengths (spec.md §6.2 step 2); Incoming is
// left empty for the caller to rebuild once every record has been read.
func decodeRecordBody(buf []byte) (*record.DynamicRecord, error) {
	src := bytes.NewReader(buf)

	outdegree, err := readUvarint(src)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt/serialize: record outdegree")
	}
	rec := &record.DynamicRecord{Outgoing: make([]record.Edge, outdegree)}
	var previous gbwt.NodeID
	for i := range rec.Outgoing {
		delta, err := readUvarint(src)
		if err != nil {
			return nil, errors.Wrap(err, "gbwt/serialize: successor delta")
		}
		offset, err := readUvarint(src)
		if err != nil {
			return nil, errors.Wrap(err, "gbwt/serialize: edge offset")
		}
		node := previous + gbwt.NodeID(delta)
		rec.Outgoing[i] = record.Edge{Node: node, Offset: offset}
		previous = node
	}

	runCount, err := readUvarint(src)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt/serialize: run count")
	}
	rec.Body = make([]record.Run, runCount)
	var bodySize uint64
	for i := range rec.Body {
		rank, err := readUvarint(src)
		if err != nil {
			return nil, errors.Wrap(err, "gbwt/serialize: run rank")
		}
		length, err := readUvarint(src)
		if err != nil {
			return nil, errors.Wrap(err, "gbwt/serialize: run length")
		}
		rec.Body[i] = record.Run{Rank: uint32(rank), Length: length}
		bodySize += length
	}
	rec.BodySize = bodySize

	if src.Len() != 0 {
		return nil, errors.Errorf("gbwt/serialize: %d trailing bytes in record", src.Len())
	}
	return rec, nil
}

// EncodeRecordArray writes the length-prefixed concatenation of
// per-record byte encodings described in spec.md §6.1.
func EncodeRecordArray(w io.Writer, records []record.DynamicRecord) error {
	if err := writeUvarint(w, uint64(len(records))); err != nil {
		return errors.Wrap(err, "gbwt/serialize: record count")
	}
	var body bytes.Buffer
	for i := range records {
		body.Reset()
		if err := encodeRecordBody(&body, &records[i]); err != nil {
			return err
		}
		if err := writeUvarint(w, uint64(body.Len())); err != nil {
			return errors.Wrap(err, "gbwt/serialize: record length")
		}
		if _, err := w.Write(body.Bytes()); err != nil {
			return errors.Wrap(err, "gbwt/serialize: write record")
		}
	}
	return nil
}

// DecodeRecordArray reads back a RecordArray written by EncodeRecordArray.
// offset is the header's alphabet offset, needed to map a successor node
// id back to its record index (gbwt.Comp) while rebuilding Incoming.
// Incoming edges are not otherwise populated by decodeRecordBody.
func DecodeRecordArray(r io.Reader, offset uint64) ([]record.DynamicRecord, error) {
	br := &byteReaderAdapter{r: r}

	count, err := readUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt/serialize: record count")
	}

	records := make([]record.DynamicRecord, count)
	for i := range records {
		length, err := readUvarint(br)
		if err != nil {
			return nil, errors.Wrap(err, "gbwt/serialize: record length")
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "gbwt/serialize: read record")
		}
		rec, err := decodeRecordBody(buf)
		if err != nil {
			return nil, err
		}
		records[i] = *rec
	}

	rebuildIncoming(records, offset)
	return records, nil
}

// rebuildIncoming implements spec.md §6.2 step 4: for every record v and
// every outrank r, sum the run lengths sharing that rank and append
// (v, sum) to record(successor(r)).Incoming, skipping the endmarker (spec
// §9 "Incoming edges for endmarker").
func rebuildIncoming(records []record.DynamicRecord, offset uint64) {
	for v := range records {
		node := gbwt.NodeID(0)
		if v > 0 {
			node = gbwt.NodeID(uint64(v) + offset)
		}
		counts := make([]uint64, len(records[v].Outgoing))
		for _, run := range records[v].Body {
			counts[run.Rank] += run.Length
		}
		for rank, count := range counts {
			if count == 0 {
				continue
			}
			successor := records[v].Outgoing[rank].Node
			if successor == gbwt.Endmarker {
				continue
			}
			records[gbwt.Comp(successor, offset)].AddIncoming(node, count)
		}
	}
}

type byteReaderAdapter struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReaderAdapter) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}
