package serialize

import (
	"io"

	"github.com/pkg/errors"

	"github.com/hakon-jon/gbwt"
	"github.com/hakon-jon/gbwt/dynamic"
)

// Save writes index's header, record array and samples to w, in the
// order spec.md §6.1 lists.
func Save(w io.Writer, index *dynamic.DynamicGBWT) error {
	if err := EncodeHeader(w, index.Header); err != nil {
		return err
	}
	if err := EncodeRecordArray(w, index.BWT); err != nil {
		return err
	}
	if err := EncodeSamples(w, index.BWT); err != nil {
		return err
	}
	return nil
}

// Load reads back an index written by Save, rebuilding Incoming per
// spec.md §6.2 step 4. A header that fails its consistency check is
// reported (gbwt.ErrHeaderCheckFailed) but the caller may still choose to
// use the returned, best-effort index -- spec.md §7 requires the
// corruption be surfaced, not that loading abort outright.
func Load(r io.Reader) (*dynamic.DynamicGBWT, error) {
	header, err := DecodeHeader(r)
	checkErr := err
	if err != nil && errors.Cause(err) != gbwt.ErrHeaderCheckFailed {
		return nil, err
	}

	records, err := DecodeRecordArray(r, header.Offset)
	if err != nil {
		return nil, err
	}
	if err := DecodeSamples(r, records); err != nil {
		return nil, err
	}

	index := &dynamic.DynamicGBWT{Header: header, BWT: records}
	return index, checkErr
}
