package dash_interpreter

import (
	"github.com/tokenized/dash_interpreter/script"

	"github.com/pkg/errors"
)

var (
	// ScriptNotMatching is returned when a locking script doesn't match the template.
	ScriptNotMatching = errors.New("Script Not Matching")

	// RemainingScript is returned when a locking script matches the template but has more op codes
	// after it.
	RemainingScript = errors.New("Remaining Script")
)

// MatchScript matches the leading chunks against the template and returns the chunks after it.
func MatchScript(chunks []script.Chunk, template script.Script) ([]script.Chunk, error) {
	for i, chunk := range template.Chunks() {
		if len(chunks) == 0 {
			return nil, errors.Wrapf(ScriptNotMatching, "missing template chunk %d", i)
		}

		if !chunks[0].Equal(chunk) {
			return nil, errors.Wrapf(ScriptNotMatching, "template chunk %d : got %s, want %s", i,
				chunks[0], chunk)
		}

		chunks = chunks[1:]
	}

	return chunks, nil
}

// MatchNextOpCode matches the next chunk against an op code that is not a push.
func MatchNextOpCode(chunks []script.Chunk, opCode byte) ([]script.Chunk, error) {
	if len(chunks) == 0 {
		return nil, errors.Wrapf(ScriptNotMatching, "missing %s", script.OpCodeName(opCode))
	}

	if chunks[0].IsPushData() || chunks[0].OpCode() != opCode {
		return nil, errors.Wrapf(ScriptNotMatching, "got %s, want %s", chunks[0],
			script.OpCodeName(opCode))
	}

	return chunks[1:], nil
}

// MatchNextPushDataSize matches the next chunk against a push of exactly size bytes and returns
// the pushed data.
func MatchNextPushDataSize(chunks []script.Chunk, size int) ([]script.Chunk, []byte, error) {
	if len(chunks) == 0 {
		return nil, nil, errors.Wrapf(ScriptNotMatching, "missing push data %d", size)
	}

	data, isPush := chunks[0].PushData()
	if !isPush {
		return nil, nil, errors.Wrapf(ScriptNotMatching, "not push data : %s", chunks[0])
	}

	if len(data) != size {
		return nil, nil, errors.Wrapf(ScriptNotMatching, "push data size : got %d, want %d",
			len(data), size)
	}

	return chunks[1:], data, nil
}

// MatchNextSmallInteger matches the next chunk against OP_1 through OP_16 and returns its value.
func MatchNextSmallInteger(chunks []script.Chunk) ([]script.Chunk, int, error) {
	if len(chunks) == 0 {
		return nil, 0, errors.Wrap(ScriptNotMatching, "missing small integer")
	}

	opCode := chunks[0].OpCode()
	if opCode < script.OP_1 || opCode > script.OP_16 {
		return nil, 0, errors.Wrapf(ScriptNotMatching, "not small integer : %s", chunks[0])
	}

	return chunks[1:], script.SmallIntegerValue(opCode), nil
}
