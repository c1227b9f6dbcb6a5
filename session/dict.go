package session

import (
	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/varint"
)

// stringDict is the session-scoped string interning table of spec §3:
// a bidirectional {string <-> u32 id} map populated lazily as string
// values are encoded, capped at a configured size. Per spec §9 ("String
// dictionary lifetime"), once at capacity the dictionary simply stops
// accepting new entries rather than evicting — ids already referenced by
// prior messages that may still be in flight must stay valid for the
// life of the session.
type stringDict struct {
	toID   map[string]uint32
	toStr  map[uint32]string
	nextID uint32
	cap    int
}

func newStringDict(cap int) *stringDict {
	return &stringDict{
		toID:  make(map[string]uint32),
		toStr: make(map[uint32]string),
		cap:   cap,
	}
}

// lookup returns the id previously assigned to s, if any.
func (d *stringDict) lookup(s string) (uint32, bool) {
	id, ok := d.toID[s]

	return id, ok
}

// insert assigns s a new id and returns it, or reports ok=false if the
// dictionary is at capacity.
func (d *stringDict) insert(s string) (uint32, bool) {
	if d.cap > 0 && len(d.toID) >= d.cap {
		return 0, false
	}

	id := d.nextID
	d.nextID++
	d.toID[s] = id
	d.toStr[id] = s

	return id, true
}

// resolve returns the string registered under id.
func (d *stringDict) resolve(id uint32) (string, bool) {
	s, ok := d.toStr[id]

	return s, ok
}

// register records a decoder-observed {id, s} pair directly, mirroring
// whatever id the encoder's insert assigned, rather than allocating a new
// one from nextID (the encode and decode sides must agree on ids without
// exchanging them out of band).
func (d *stringDict) register(id uint32, s string) {
	d.toID[s] = id
	d.toStr[id] = s
	if id >= d.nextID {
		d.nextID = id + 1
	}
}

// Row-wise field values are tagged with one of these one-byte markers so
// a decoder knows whether a string was looked up, newly interned, or
// left literal because the dictionary was full (spec §9 dictionary
// lifetime note).
const (
	stringLiteral byte = 0
	stringDictRef byte = 1
	stringDictNew byte = 2
)

// appendLPString appends a varint-length-prefixed UTF-8 string, the small
// helper row-wise field encoding builds on (see row_codec.go).
func appendLPString(dst []byte, s string) []byte {
	dst = varint.AppendUvarint(dst, uint64(len(s)))

	return append(dst, s...)
}

func readLPString(data []byte) (string, int, error) {
	l, n, err := varint.Uvarint(data, false)
	if err != nil {
		return "", 0, err
	}
	if n+int(l) > len(data) {
		return "", 0, errs.ErrDecodeError
	}

	return string(data[n : n+int(l)]), n + int(l), nil
}
