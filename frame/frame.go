// Package frame implements the self-delimited wire envelope every flux
// message is wrapped in (spec §4.H, §6): a fixed 14-byte header (magic,
// version, flags, schema id, payload length) followed by the payload and
// an optional CRC32C trailer. The layout mirrors the teacher's
// section.NumericHeader — a fixed-size struct with an explicit Bytes/Parse
// pair and a packed flags field — narrowed to flux's single envelope (no
// index section, no per-metric offsets) since a flux frame carries exactly
// one message, not a blob of many metrics.
package frame

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/internal/pool"
)

// Magic is the 4-byte frame identifier, "FLUX".
var Magic = [4]byte{'F', 'L', 'U', 'X'}

// Version is the supported protocol version: high nibble major (0x2),
// low nibble minor (0x0).
const Version uint8 = 0x20

// HeaderSize is the fixed size, in bytes, of everything before the payload.
const HeaderSize = 14

// MaxFrameSize bounds payload_len (spec §6, MAX_FRAME_SIZE = 64 MiB).
const MaxFrameSize = 64 * 1024 * 1024

// Flag bits (spec §6).
type Flags uint8

const (
	FlagSchemaIncluded Flags = 1 << 0
	FlagColumnar       Flags = 1 << 1
	FlagEntropyCoded   Flags = 1 << 2
	FlagDeltaMessage   Flags = 1 << 3
	FlagChecksum       Flags = 1 << 4
	FlagDictionaryUpd  Flags = 1 << 5
	FlagStreaming      Flags = 1 << 6
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// castagnoliTable is the CRC32C polynomial table flux pins for payload
// integrity (spec I5). The algorithm is fixed by the wire format, so this
// is a justified, required use of stdlib hash/crc32 rather than an
// ecosystem choice (see DESIGN.md).
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// Frame is a parsed flux wire envelope.
type Frame struct {
	Version    uint8
	Flags      Flags
	SchemaID   uint32
	Payload    []byte
	hasCRC     bool
	storedCRC  uint32
}

// HasChecksum reports whether the frame carried (and verified) a CRC32C trailer.
func (f Frame) HasChecksum() bool { return f.hasCRC }

// Write serializes a frame: header, payload, and (if flags requests it) the
// CRC32C trailer over the payload (spec §4.H writer algorithm).
func Write(flags Flags, schemaID uint32, payload []byte) ([]byte, error) {
	if len(payload) > MaxFrameSize {
		return nil, fmt.Errorf("%w: payload %d exceeds max frame size %d", errs.ErrBufferOverflow, len(payload), MaxFrameSize)
	}

	withChecksum := flags.Has(FlagChecksum)
	total := HeaderSize + len(payload)
	if withChecksum {
		total += 4
	}

	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	buf.Reset()
	buf.ExtendOrGrow(total)
	out := buf.Bytes()

	copy(out[0:4], Magic[:])
	out[4] = Version
	out[5] = byte(flags)
	binary.LittleEndian.PutUint32(out[6:10], schemaID)
	binary.LittleEndian.PutUint32(out[10:14], uint32(len(payload)))
	copy(out[HeaderSize:], payload)

	if withChecksum {
		sum := crc32.Checksum(payload, castagnoliTable)
		binary.LittleEndian.PutUint32(out[HeaderSize+len(payload):], sum)
	}

	result := make([]byte, total)
	copy(result, out)

	return result, nil
}

// Parse reverses Write: validates magic, version, length caps, and (when
// present) the CRC32C trailer (spec §4.H reader algorithm, §7 error codes).
func Parse(data []byte) (Frame, error) {
	if len(data) < HeaderSize {
		return Frame{}, fmt.Errorf("%w: frame shorter than header", errs.ErrDecodeError)
	}

	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return Frame{}, errs.ErrInvalidMagic
	}

	version := data[4]
	if version>>4 > Version>>4 {
		return Frame{}, errs.ErrVersionMismatch
	}

	flags := Flags(data[5])
	schemaID := binary.LittleEndian.Uint32(data[6:10])
	payloadLen := binary.LittleEndian.Uint32(data[10:14])

	if payloadLen > MaxFrameSize {
		return Frame{}, fmt.Errorf("%w: declared payload_len %d exceeds max frame size %d", errs.ErrBufferOverflow, payloadLen, MaxFrameSize)
	}

	rest := data[HeaderSize:]
	if uint32(len(rest)) < payloadLen {
		return Frame{}, fmt.Errorf("%w: truncated payload", errs.ErrDecodeError)
	}

	payload := rest[:payloadLen]
	rest = rest[payloadLen:]

	f := Frame{Version: version, Flags: flags, SchemaID: schemaID, Payload: payload}

	if flags.Has(FlagChecksum) {
		if len(rest) < 4 {
			return Frame{}, fmt.Errorf("%w: missing checksum trailer", errs.ErrDecodeError)
		}

		stored := binary.LittleEndian.Uint32(rest[:4])
		computed := crc32.Checksum(payload, castagnoliTable)
		if stored != computed {
			return Frame{}, errs.ErrChecksumMismatch
		}

		f.hasCRC = true
		f.storedCRC = stored
	}

	return f, nil
}
