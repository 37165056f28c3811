package script

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrMalformedPush = errors.New("Malformed Push")
	ErrPushTooLarge  = errors.New("Push Too Large")
)

// Chunk is one element of a script. It is either a push of data, including OP_0 which pushes an
// empty item, or a single op code.
type Chunk struct {
	opCode byte
	data   []byte
}

// NewOpCodeChunk returns a chunk containing only the op code. Push op codes must be created with
// NewPushDataChunk or NewPushDataChunkWithOpCode.
func NewOpCodeChunk(opCode byte) Chunk {
	return Chunk{opCode: opCode}
}

// NewPushDataChunk returns a chunk that pushes the data using the smallest length prefixed
// encoding. Empty data is pushed with OP_0. Single byte values that have an op code equivalent
// are still pushed as data.
func NewPushDataChunk(data []byte) Chunk {
	l := len(data)
	var opCode byte
	switch {
	case l == 0:
		opCode = OP_0
	case l < int(OP_PUSHDATA1):
		opCode = byte(l)
	case l <= math.MaxUint8:
		opCode = OP_PUSHDATA1
	case l <= math.MaxUint16:
		opCode = OP_PUSHDATA2
	default:
		opCode = OP_PUSHDATA4
	}

	return Chunk{opCode: opCode, data: copyBytes(data)}
}

// NewPushDataChunkWithOpCode returns a chunk that pushes the data with a specific push op code.
// It is used to build non-minimal pushes.
func NewPushDataChunkWithOpCode(opCode byte, data []byte) (Chunk, error) {
	l := uint64(len(data))
	switch {
	case opCode == OP_0:
		if l != 0 {
			return Chunk{}, errors.Wrapf(ErrPushTooLarge, "OP_0 with %d bytes", l)
		}
	case opCode < OP_PUSHDATA1:
		if l != uint64(opCode) {
			return Chunk{}, errors.Wrapf(ErrPushTooLarge, "%s with %d bytes", OpCodeName(opCode),
				l)
		}
	case opCode == OP_PUSHDATA1:
		if l > math.MaxUint8 {
			return Chunk{}, errors.Wrapf(ErrPushTooLarge, "OP_PUSHDATA1 with %d bytes", l)
		}
	case opCode == OP_PUSHDATA2:
		if l > math.MaxUint16 {
			return Chunk{}, errors.Wrapf(ErrPushTooLarge, "OP_PUSHDATA2 with %d bytes", l)
		}
	case opCode == OP_PUSHDATA4:
		if l > math.MaxUint32 {
			return Chunk{}, errors.Wrapf(ErrPushTooLarge, "OP_PUSHDATA4 with %d bytes", l)
		}
	default:
		return Chunk{}, fmt.Errorf("%s is not a push op code", OpCodeName(opCode))
	}

	return Chunk{opCode: opCode, data: copyBytes(data)}, nil
}

// NewNumberChunk returns a chunk that pushes the number with the shortest encoding, using OP_0,
// OP_1NEGATE, or OP_1 through OP_16 when possible.
func NewNumberChunk(n Number) Chunk {
	if n.Sign() == 0 {
		return NewPushDataChunk(nil)
	}

	value := n.Int64()
	if value == -1 {
		return NewOpCodeChunk(OP_1NEGATE)
	}
	if value >= 1 && value <= 16 {
		return NewOpCodeChunk(SmallIntegerOpCode(int(value)))
	}

	return NewPushDataChunk(n.Bytes())
}

// OpCode returns the op code of the chunk. For pushes it is the push op code.
func (c Chunk) OpCode() byte {
	return c.opCode
}

// IsPushData returns true when the chunk is OP_0 or a length prefixed push.
func (c Chunk) IsPushData() bool {
	return c.opCode <= OP_PUSHDATA4
}

// PushData returns the data pushed by the chunk. OP_0 returns an empty slice. The second return
// is false when the chunk is not a data push.
func (c Chunk) PushData() ([]byte, bool) {
	if !c.IsPushData() {
		return nil, false
	}
	if c.data == nil {
		return []byte{}, true
	}
	return c.data, true
}

// InterpretedData returns the value the chunk leaves on the stack when it is a push or a small
// number op code. The second return is false for every other op code.
func (c Chunk) InterpretedData() ([]byte, bool) {
	if data, ok := c.PushData(); ok {
		return data, true
	}

	if c.opCode == OP_1NEGATE {
		return []byte{0x81}, true
	}

	if c.opCode >= OP_1 && c.opCode <= OP_16 {
		return []byte{c.opCode - OP_1 + 1}, true
	}

	return nil, false
}

// IsMinimalPush returns true when the chunk is not a push or is pushed with the shortest
// possible encoding, including the small integer op codes.
func (c Chunk) IsMinimalPush() bool {
	if !c.IsPushData() {
		return true
	}

	l := len(c.data)
	switch {
	case l == 0:
		return c.opCode == OP_0
	case l == 1 && c.data[0] >= 1 && c.data[0] <= 16:
		return false // should use OP_1 through OP_16
	case l == 1 && c.data[0] == 0x81:
		return false // should use OP_1NEGATE
	case l < int(OP_PUSHDATA1):
		return int(c.opCode) == l
	case l <= math.MaxUint8:
		return c.opCode == OP_PUSHDATA1
	case l <= math.MaxUint16:
		return c.opCode == OP_PUSHDATA2
	}

	return true
}

// Size returns the serialized size of the chunk.
func (c Chunk) Size() int {
	switch {
	case c.opCode == OP_PUSHDATA1:
		return 2 + len(c.data)
	case c.opCode == OP_PUSHDATA2:
		return 3 + len(c.data)
	case c.opCode == OP_PUSHDATA4:
		return 5 + len(c.data)
	default:
		return 1 + len(c.data)
	}
}

// Bytes returns the serialized chunk.
func (c Chunk) Bytes() []byte {
	buf := &bytes.Buffer{}
	c.write(buf)
	return buf.Bytes()
}

func (c Chunk) write(buf *bytes.Buffer) {
	buf.WriteByte(c.opCode)

	switch c.opCode {
	case OP_PUSHDATA1:
		buf.WriteByte(byte(len(c.data)))
	case OP_PUSHDATA2:
		var size [2]byte
		binary.LittleEndian.PutUint16(size[:], uint16(len(c.data)))
		buf.Write(size[:])
	case OP_PUSHDATA4:
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(c.data)))
		buf.Write(size[:])
	}

	buf.Write(c.data)
}

// Equal returns true when the serialized chunks are identical.
func (c Chunk) Equal(other Chunk) bool {
	return c.opCode == other.opCode && bytes.Equal(c.data, other.data)
}

// String returns the op code name, or the hex of pushed data. Pushes that don't use the default
// encoding are prefixed with their op code name.
func (c Chunk) String() string {
	if !c.IsPushData() {
		return OpCodeName(c.opCode)
	}

	if c.opCode == OP_0 {
		return "OP_0"
	}

	if NewPushDataChunk(c.data).opCode != c.opCode {
		return fmt.Sprintf("%s:%s", OpCodeName(c.opCode), hex.EncodeToString(c.data))
	}

	return hex.EncodeToString(c.data)
}

// readChunk reads the chunk starting at offset and returns it with the offset of the next chunk.
func readChunk(b []byte, offset int) (Chunk, int, error) {
	opCode := b[offset]
	offset++

	var size uint64
	switch {
	case opCode == OP_0 || opCode > OP_PUSHDATA4:
		return Chunk{opCode: opCode}, offset, nil
	case opCode < OP_PUSHDATA1:
		size = uint64(opCode)
	case opCode == OP_PUSHDATA1:
		if len(b)-offset < 1 {
			return Chunk{}, 0, errors.Wrap(ErrMalformedPush, "missing OP_PUSHDATA1 size")
		}
		size = uint64(b[offset])
		offset++
	case opCode == OP_PUSHDATA2:
		if len(b)-offset < 2 {
			return Chunk{}, 0, errors.Wrap(ErrMalformedPush, "missing OP_PUSHDATA2 size")
		}
		size = uint64(binary.LittleEndian.Uint16(b[offset:]))
		offset += 2
	case opCode == OP_PUSHDATA4:
		if len(b)-offset < 4 {
			return Chunk{}, 0, errors.Wrap(ErrMalformedPush, "missing OP_PUSHDATA4 size")
		}
		size = uint64(binary.LittleEndian.Uint32(b[offset:]))
		offset += 4
	}

	if uint64(len(b)-offset) < size {
		return Chunk{}, 0, errors.Wrapf(ErrMalformedPush, "push of %d bytes with %d remaining",
			size, len(b)-offset)
	}

	end := offset + int(size)
	return Chunk{opCode: opCode, data: copyBytes(b[offset:end])}, end, nil
}

func copyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	result := make([]byte, len(b))
	copy(result, b)
	return result
}
