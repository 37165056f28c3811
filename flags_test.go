package dash_interpreter

import (
	"testing"

	"github.com/pkg/errors"
)

func Test_ScriptFlags_String(t *testing.T) {
	tests := []struct {
		flags ScriptFlags
		text  string
	}{
		{ScriptVerifyNone, "NONE"},
		{ScriptVerifyP2SH, "P2SH"},
		{ScriptVerifyP2SH | ScriptVerifyStrictEncoding, "P2SH,STRICTENC"},
		{ScriptVerifyCleanStack | ScriptVerifyP2SH, "P2SH,CLEANSTACK"},
		{ScriptEnableSigHashForkID | ScriptFlags(1<<20), "SIGHASH_FORKID,0x100000"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if text := tt.flags.String(); text != tt.text {
				t.Errorf("Wrong text : got %s, want %s", text, tt.text)
			}
		})
	}
}

func Test_ScriptFlagsFromString(t *testing.T) {
	tests := []struct {
		text  string
		flags ScriptFlags
		err   error
	}{
		{"", ScriptVerifyNone, nil},
		{"NONE", ScriptVerifyNone, nil},
		{"P2SH", ScriptVerifyP2SH, nil},
		{"p2sh, strictenc", ScriptVerifyP2SH | ScriptVerifyStrictEncoding, nil},
		{"STANDARD", StandardScriptVerifyFlags, nil},
		{"MANDATORY", MandatoryScriptVerifyFlags, nil},
		{"STANDARD,SIGHASH_FORKID", StandardScriptVerifyFlags | ScriptEnableSigHashForkID, nil},
		{"P2SH,,LOW_S", ScriptVerifyP2SH | ScriptVerifyLowS, nil},
		{"P2SH,BOGUS", ScriptVerifyNone, ErrUnknownScriptFlag},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			flags, err := ScriptFlagsFromString(tt.text)
			if errors.Cause(err) != tt.err {
				t.Fatalf("Wrong error : got \"%v\", want \"%v\"", err, tt.err)
			}

			if flags != tt.flags {
				t.Errorf("Wrong flags : got %s, want %s", flags, tt.flags)
			}
		})
	}
}

func Test_ScriptFlags_Text(t *testing.T) {
	for _, flags := range []ScriptFlags{ScriptVerifyNone, StandardScriptVerifyFlags,
		StandardScriptVerifyFlags | ScriptEnableDisabledOpCodes | ScriptEnableSigHashForkID} {

		text, err := flags.MarshalText()
		if err != nil {
			t.Fatalf("Failed to marshal flags : %s", err)
		}

		var read ScriptFlags
		if err := read.UnmarshalText(text); err != nil {
			t.Fatalf("Failed to unmarshal flags \"%s\" : %s", text, err)
		}

		if read != flags {
			t.Errorf("Wrong flags : got %s, want %s", read, flags)
		}
	}

	if !StandardScriptVerifyFlags.Has(MandatoryScriptVerifyFlags) {
		t.Errorf("Standard flags should include mandatory flags")
	}

	if StandardScriptVerifyFlags.HasAny(ScriptEnableDisabledOpCodes | ScriptEnableSigHashForkID) {
		t.Errorf("Standard flags should not enable disabled op codes or fork id")
	}
}
