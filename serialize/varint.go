package serialize

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// writeUvarint and readUvarint wrap encoding/binary's Uvarint codec the way
// _examples/dolthub-dolt/go/store/prolly/message's varint.go does for its
// own delta-encoded integer arrays: this module has no equivalent repeated
// structure to delta against (per-record successor lists are already
// delta-encoded against the previous successor, per spec.md §6.1), so
// plain Uvarint is used directly rather than layering on a second encoding.
func writeUvarint(w io.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

func readUvarint(r io.ByteReader) (uint64, error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, errors.Wrap(err, "gbwt/serialize: malformed varint")
	}
	return v, nil
}
