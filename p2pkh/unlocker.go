package p2pkh

import (
	"bytes"
	"context"

	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"
)

type Unlocker struct {
	Key                bitcoin.Key
	Verify             bool
	SigHashType        dash_interpreter.SigHashType
	CodeSeparatorIndex int
}

func NewUnlocker(key bitcoin.Key, verify bool, sigHashType dash_interpreter.SigHashType,
	codeSeparatorIndex int) *Unlocker {
	return &Unlocker{
		Key:                key,
		Verify:             verify,
		SigHashType:        sigHashType,
		CodeSeparatorIndex: codeSeparatorIndex,
	}
}

func (u *Unlocker) Unlock(ctx context.Context, tx dash_interpreter.TransactionWithOutputs,
	inputIndex int) (script.Script, error) {
	return Unlock(tx, inputIndex, u.Key, u.SigHashType, u.CodeSeparatorIndex, u.Verify)
}

func (u *Unlocker) UnlockingSize(lockingScript script.Script) (int, error) {
	if !u.CanUnlock(lockingScript) {
		return 0, dash_interpreter.ScriptNotMatching
	}

	return UnlockingSize, nil
}

func (u *Unlocker) CanUnlock(lockingScript script.Script) bool {
	scriptHash, err := MatchScript(lockingScript, u.Verify)
	if err != nil {
		return false
	}

	keyHash := bitcoin.Hash160(u.Key.PublicKey().Bytes())
	return bytes.Equal(scriptHash[:], keyHash)
}

func (u *Unlocker) Copy() dash_interpreter.Unlocker {
	return &Unlocker{
		Key:                u.Key.Copy(),
		Verify:             u.Verify,
		SigHashType:        u.SigHashType,
		CodeSeparatorIndex: u.CodeSeparatorIndex,
	}
}
