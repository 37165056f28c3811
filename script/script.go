package script

import (
	"bytes"
	"strings"
)

// Script is an immutable sequence of chunks. Methods that change a script return a new script.
type Script struct {
	chunks []Chunk
}

// NewScript returns a script containing the chunks.
func NewScript(chunks ...Chunk) Script {
	result := Script{chunks: make([]Chunk, len(chunks))}
	copy(result.chunks, chunks)
	return result
}

// ParseScript parses serialized script bytes. It fails when a push is truncated.
func ParseScript(b []byte) (Script, error) {
	var chunks []Chunk
	offset := 0
	for offset < len(b) {
		chunk, next, err := readChunk(b, offset)
		if err != nil {
			return Script{}, err
		}

		chunks = append(chunks, chunk)
		offset = next
	}

	return Script{chunks: chunks}, nil
}

// Chunks returns a copy of the script's chunks.
func (s Script) Chunks() []Chunk {
	result := make([]Chunk, len(s.chunks))
	copy(result, s.chunks)
	return result
}

// Len returns the number of chunks.
func (s Script) Len() int {
	return len(s.chunks)
}

// Chunk returns the chunk at the index.
func (s Script) Chunk(index int) Chunk {
	return s.chunks[index]
}

// Bytes returns the serialized script.
func (s Script) Bytes() []byte {
	buf := &bytes.Buffer{}
	for _, chunk := range s.chunks {
		chunk.write(buf)
	}
	return buf.Bytes()
}

// Size returns the serialized size of the script.
func (s Script) Size() int {
	result := 0
	for _, chunk := range s.chunks {
		result += chunk.Size()
	}
	return result
}

// Equal returns true when the scripts serialize to the same bytes.
func (s Script) Equal(other Script) bool {
	return bytes.Equal(s.Bytes(), other.Bytes())
}

func (s Script) append(chunks ...Chunk) Script {
	result := Script{chunks: make([]Chunk, 0, len(s.chunks)+len(chunks))}
	result.chunks = append(result.chunks, s.chunks...)
	result.chunks = append(result.chunks, chunks...)
	return result
}

// AppendOpCode returns the script followed by the op codes.
func (s Script) AppendOpCode(opCodes ...byte) Script {
	chunks := make([]Chunk, len(opCodes))
	for i, opCode := range opCodes {
		chunks[i] = NewOpCodeChunk(opCode)
	}
	return s.append(chunks...)
}

// AppendPushData returns the script followed by a push of the data.
func (s Script) AppendPushData(data []byte) Script {
	return s.append(NewPushDataChunk(data))
}

// AppendPushDataWithOpCode returns the script followed by a push of the data using a specific
// push op code.
func (s Script) AppendPushDataWithOpCode(opCode byte, data []byte) (Script, error) {
	chunk, err := NewPushDataChunkWithOpCode(opCode, data)
	if err != nil {
		return Script{}, err
	}
	return s.append(chunk), nil
}

// AppendNumber returns the script followed by the shortest push of the number.
func (s Script) AppendNumber(n Number) Script {
	return s.append(NewNumberChunk(n))
}

// AppendInt returns the script followed by the shortest push of the value.
func (s Script) AppendInt(value int64) Script {
	return s.AppendNumber(NewNumber(value))
}

// AppendChunks returns the script followed by the chunks.
func (s Script) AppendChunks(chunks ...Chunk) Script {
	return s.append(chunks...)
}

// AppendScript returns the script followed by the chunks of the other script.
func (s Script) AppendScript(other Script) Script {
	return s.append(other.chunks...)
}

// Subscript returns the chunks in [start, end). Out of range bounds are clamped.
func (s Script) Subscript(start, end int) Script {
	if start < 0 {
		start = 0
	}
	if end > len(s.chunks) {
		end = len(s.chunks)
	}
	if start >= end {
		return Script{}
	}
	return NewScript(s.chunks[start:end]...)
}

// FindAndDelete returns the script with every chunk sequence that exactly matches the pattern's
// chunks removed. Matches are byte exact so a push with a different encoding of the same data
// is not removed.
func (s Script) FindAndDelete(pattern Script) Script {
	if len(pattern.chunks) == 0 {
		return s
	}

	var result []Chunk
	for i := 0; i < len(s.chunks); {
		if s.matchesAt(i, pattern) {
			i += len(pattern.chunks)
			continue
		}

		result = append(result, s.chunks[i])
		i++
	}

	return Script{chunks: result}
}

func (s Script) matchesAt(index int, pattern Script) bool {
	if index+len(pattern.chunks) > len(s.chunks) {
		return false
	}

	for j, chunk := range pattern.chunks {
		if !s.chunks[index+j].Equal(chunk) {
			return false
		}
	}

	return true
}

// DeleteOpCode returns the script with every chunk of the op code removed.
func (s Script) DeleteOpCode(opCode byte) Script {
	return s.FindAndDelete(NewScript(NewOpCodeChunk(opCode)))
}

// IsPushOnly returns true when every chunk only pushes data, including OP_1NEGATE and OP_1
// through OP_16. OP_RESERVED is counted as a push.
func (s Script) IsPushOnly() bool {
	for _, chunk := range s.chunks {
		if chunk.opCode > OP_16 {
			return false
		}
	}
	return true
}

// String returns the chunks separated by spaces.
func (s Script) String() string {
	parts := make([]string, len(s.chunks))
	for i, chunk := range s.chunks {
		parts[i] = chunk.String()
	}
	return strings.Join(parts, " ")
}

// MarshalText returns the text representation of the script.
func (s Script) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the text representation of the script.
func (s *Script) UnmarshalText(text []byte) error {
	result, err := ParseString(string(text))
	if err != nil {
		return err
	}

	*s = result
	return nil
}
