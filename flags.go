package dash_interpreter

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ScriptFlags selects the optional verification rules applied while evaluating scripts.
type ScriptFlags uint32

const (
	ScriptVerifyNone = ScriptFlags(0)

	// ScriptVerifyP2SH evaluates the redeem script of pay to script hash outputs.
	ScriptVerifyP2SH = ScriptFlags(1 << 0)

	// ScriptVerifyStrictEncoding requires defined signature hash types and public keys that are
	// 33 byte compressed or 65 byte uncompressed. It also implies strict DER signatures.
	ScriptVerifyStrictEncoding = ScriptFlags(1 << 1)

	// ScriptVerifyDERSignatures requires strict DER signature encoding.
	ScriptVerifyDERSignatures = ScriptFlags(1 << 2)

	// ScriptVerifyLowS requires the S value of signatures to be at most half the curve order.
	ScriptVerifyLowS = ScriptFlags(1 << 3)

	// ScriptVerifyNullDummy requires the extra item consumed by OP_CHECKMULTISIG to be empty.
	ScriptVerifyNullDummy = ScriptFlags(1 << 4)

	// ScriptVerifySigPushOnly requires signature scripts to contain only pushes.
	ScriptVerifySigPushOnly = ScriptFlags(1 << 5)

	// ScriptVerifyMinimalData requires pushes and numbers to use the shortest encoding.
	ScriptVerifyMinimalData = ScriptFlags(1 << 6)

	// ScriptVerifyDiscourageUpgradableNOPs fails on reserved NOP op codes.
	ScriptVerifyDiscourageUpgradableNOPs = ScriptFlags(1 << 7)

	// ScriptVerifyCleanStack requires exactly one item on the stack after evaluation. It can
	// only be used with ScriptVerifyP2SH.
	ScriptVerifyCleanStack = ScriptFlags(1 << 8)

	// ScriptVerifyCheckLockTimeVerify enables OP_CHECKLOCKTIMEVERIFY in place of OP_NOP2.
	ScriptVerifyCheckLockTimeVerify = ScriptFlags(1 << 9)

	// ScriptEnableDisabledOpCodes allows the splice, bitwise, and arithmetic op codes that are
	// normally disabled.
	ScriptEnableDisabledOpCodes = ScriptFlags(1 << 16)

	// ScriptEnableSigHashForkID verifies signatures with the fork id hash type bit using the
	// BIP143 signature hash.
	ScriptEnableSigHashForkID = ScriptFlags(1 << 17)

	// MandatoryScriptVerifyFlags are the flags that blocks must satisfy.
	MandatoryScriptVerifyFlags = ScriptVerifyP2SH

	// StandardScriptVerifyFlags are the flags that transactions must satisfy to be relayed.
	StandardScriptVerifyFlags = MandatoryScriptVerifyFlags |
		ScriptVerifyStrictEncoding |
		ScriptVerifyDERSignatures |
		ScriptVerifyLowS |
		ScriptVerifyNullDummy |
		ScriptVerifyMinimalData |
		ScriptVerifyDiscourageUpgradableNOPs |
		ScriptVerifyCleanStack |
		ScriptVerifyCheckLockTimeVerify
)

var (
	ErrUnknownScriptFlag = errors.New("Unknown Script Flag")

	scriptFlagNames = []struct {
		flag ScriptFlags
		name string
	}{
		{ScriptVerifyP2SH, "P2SH"},
		{ScriptVerifyStrictEncoding, "STRICTENC"},
		{ScriptVerifyDERSignatures, "DERSIG"},
		{ScriptVerifyLowS, "LOW_S"},
		{ScriptVerifyNullDummy, "NULLDUMMY"},
		{ScriptVerifySigPushOnly, "SIGPUSHONLY"},
		{ScriptVerifyMinimalData, "MINIMALDATA"},
		{ScriptVerifyDiscourageUpgradableNOPs, "DISCOURAGE_UPGRADABLE_NOPS"},
		{ScriptVerifyCleanStack, "CLEANSTACK"},
		{ScriptVerifyCheckLockTimeVerify, "CHECKLOCKTIMEVERIFY"},
		{ScriptEnableDisabledOpCodes, "ENABLE_DISABLED_OPCODES"},
		{ScriptEnableSigHashForkID, "SIGHASH_FORKID"},
	}
)

// Has returns true when every bit of flag is set.
func (f ScriptFlags) Has(flag ScriptFlags) bool {
	return f&flag == flag
}

// HasAny returns true when any bit of flags is set.
func (f ScriptFlags) HasAny(flags ScriptFlags) bool {
	return f&flags != 0
}

// String returns the comma separated flag names.
func (f ScriptFlags) String() string {
	if f == ScriptVerifyNone {
		return "NONE"
	}

	var names []string
	remaining := f
	for _, v := range scriptFlagNames {
		if f&v.flag != 0 {
			names = append(names, v.name)
			remaining &^= v.flag
		}
	}

	if remaining != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(remaining)))
	}

	return strings.Join(names, ",")
}

// ScriptFlagsFromString parses comma separated flag names. Empty text and NONE are no flags.
// STANDARD and MANDATORY name the flag sets.
func ScriptFlagsFromString(s string) (ScriptFlags, error) {
	result := ScriptVerifyNone
	for _, part := range strings.Split(s, ",") {
		name := strings.ToUpper(strings.TrimSpace(part))
		switch name {
		case "", "NONE":
			continue
		case "STANDARD":
			result |= StandardScriptVerifyFlags
			continue
		case "MANDATORY":
			result |= MandatoryScriptVerifyFlags
			continue
		}

		found := false
		for _, v := range scriptFlagNames {
			if v.name == name {
				result |= v.flag
				found = true
				break
			}
		}

		if !found {
			return ScriptVerifyNone, errors.Wrap(ErrUnknownScriptFlag, part)
		}
	}

	return result, nil
}

// MarshalText returns the text encoding of the flags.
// Implements encoding.TextMarshaler interface.
func (f ScriptFlags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText parses a text encoded flags value.
// Implements encoding.TextUnmarshaler interface.
func (f *ScriptFlags) UnmarshalText(text []byte) error {
	value, err := ScriptFlagsFromString(string(text))
	if err != nil {
		return err
	}

	*f = value
	return nil
}
