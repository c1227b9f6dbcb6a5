package column

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeDictionary writes a dictionary header (entry_count:varint, then
// per-entry len:varint + utf8 bytes) followed by a varint index per value
// (spec §4.B, Dictionary). Entries are assigned in first-seen order.
func encodeDictionary(values []value.Value) ([]byte, error) {
	order := make([]string, 0, len(values))
	index := make(map[string]int, len(values))

	indices := make([]int, len(values))
	for i, v := range values {
		s := rawStringOf(v)
		idx, ok := index[s]
		if !ok {
			idx = len(order)
			index[s] = idx
			order = append(order, s)
		}
		indices[i] = idx
	}

	out := varint.AppendUvarint(nil, uint64(len(order)))
	for _, s := range order {
		out = appendRawString(out, s)
	}
	for _, idx := range indices {
		out = varint.AppendUvarint(out, uint64(idx))
	}

	return out, nil
}

func decodeDictionary(data []byte, count int) ([]value.Value, error) {
	entryCount, n, err := varint.Uvarint(data, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	rest := data[n:]

	entries := make([]string, entryCount)
	for i := range entries {
		s, consumed, err := readRawString(rest)
		if err != nil {
			return nil, err
		}
		entries[i] = s
		rest = rest[consumed:]
	}

	out := make([]value.Value, count)
	for i := 0; i < count; i++ {
		idx, n, err := varint.Uvarint(rest, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		if idx >= uint64(len(entries)) {
			return nil, fmt.Errorf("%w: dictionary index %d out of range", errs.ErrDecodeError, idx)
		}
		out[i] = value.NewString(entries[idx])
		rest = rest[n:]
	}

	return out, nil
}
