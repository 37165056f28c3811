package script

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidScriptText = errors.New("Invalid Script Text")
)

// ParseString parses the format written by Script.String. Tokens are op code names, hex pushes
// with an optional 0x prefix, or <push op code name>:<hex> for pushes that don't use the default
// encoding.
func ParseString(text string) (Script, error) {
	var chunks []Chunk
	for _, token := range strings.Fields(text) {
		if opCode, exists := OpCodeByName[token]; exists && !isLengthPush(opCode, token) {
			if opCode == OP_0 {
				chunks = append(chunks, NewPushDataChunk(nil))
			} else if opCode > OP_PUSHDATA4 {
				chunks = append(chunks, NewOpCodeChunk(opCode))
			} else {
				return Script{}, errors.Wrapf(ErrInvalidScriptText, "push without data: %s", token)
			}
			continue
		}

		if parts := strings.SplitN(token, ":", 2); len(parts) == 2 {
			opCode, exists := OpCodeByName[parts[0]]
			if !exists {
				return Script{}, errors.Wrapf(ErrInvalidScriptText, "op code: %s", parts[0])
			}

			data, err := hex.DecodeString(parts[1])
			if err != nil {
				return Script{}, errors.Wrapf(ErrInvalidScriptText, "hex: %s", token)
			}

			chunk, err := NewPushDataChunkWithOpCode(opCode, data)
			if err != nil {
				return Script{}, errors.Wrapf(ErrInvalidScriptText, "%s: %s", token, err)
			}

			chunks = append(chunks, chunk)
			continue
		}

		data, err := hex.DecodeString(strings.TrimPrefix(token, "0x"))
		if err != nil {
			return Script{}, errors.Wrapf(ErrInvalidScriptText, "token: %s", token)
		}

		chunks = append(chunks, NewPushDataChunk(data))
	}

	return Script{chunks: chunks}, nil
}

func isLengthPush(opCode byte, token string) bool {
	return opCode > OP_0 && opCode < OP_PUSHDATA1 && strings.HasPrefix(token, "OP_DATA_")
}

// ParseShortForm parses the compact notation used by script test vectors.
//
// Decimal integers are pushed as numbers, 0x prefixed hex is inserted as raw script bytes, single
// quoted text is pushed as data, and op codes can be named with or without the OP_ prefix.
// OP_0 through OP_16 need the prefix except as FALSE and TRUE.
func ParseShortForm(text string) (Script, error) {
	var raw []byte
	for _, token := range strings.Fields(text) {
		if value, err := strconv.ParseInt(token, 10, 64); err == nil {
			raw = append(raw, NewScript().AppendInt(value).Bytes()...)
			continue
		}

		if strings.HasPrefix(token, "0x") {
			b, err := hex.DecodeString(token[2:])
			if err != nil {
				return Script{}, errors.Wrapf(ErrInvalidScriptText, "hex: %s", token)
			}
			raw = append(raw, b...)
			continue
		}

		if len(token) >= 2 && strings.HasPrefix(token, "'") && strings.HasSuffix(token, "'") {
			raw = append(raw, NewPushDataChunk([]byte(token[1:len(token)-1])).Bytes()...)
			continue
		}

		opCode, ok := shortFormOpCode(token)
		if !ok {
			return Script{}, errors.Wrapf(ErrInvalidScriptText, "token: %s", token)
		}
		raw = append(raw, opCode)
	}

	result, err := ParseScript(raw)
	if err != nil {
		return Script{}, errors.Wrap(err, "parse")
	}

	return result, nil
}

func shortFormOpCode(token string) (byte, bool) {
	if opCode, exists := OpCodeByName[token]; exists {
		return opCode, true
	}

	if strings.HasPrefix(token, "OP_") {
		return 0, false
	}

	opCode, exists := OpCodeByName["OP_"+token]
	if !exists {
		return 0, false
	}

	// Small integers must keep their prefix so they aren't confused with decimal values.
	if token != "FALSE" && token != "TRUE" && (IsSmallInteger(opCode) || opCode == OP_1NEGATE) {
		return 0, false
	}

	return opCode, true
}
