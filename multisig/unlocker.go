package multisig

import (
	"context"

	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"
)

type Unlocker struct {
	Keys        []bitcoin.Key
	SigHashType dash_interpreter.SigHashType

	// RedeemScript is set to unlock P2SH outputs.
	RedeemScript *script.Script
}

func NewUnlocker(keys []bitcoin.Key, sigHashType dash_interpreter.SigHashType) *Unlocker {
	return &Unlocker{
		Keys:        keys,
		SigHashType: sigHashType,
	}
}

func NewP2SHUnlocker(keys []bitcoin.Key, redeemScript script.Script,
	sigHashType dash_interpreter.SigHashType) *Unlocker {
	return &Unlocker{
		Keys:         keys,
		SigHashType:  sigHashType,
		RedeemScript: &redeemScript,
	}
}

func (u *Unlocker) Unlock(ctx context.Context, tx dash_interpreter.TransactionWithOutputs,
	inputIndex int) (script.Script, error) {
	return Unlock(tx, inputIndex, u.Keys, u.RedeemScript, u.SigHashType)
}

func (u *Unlocker) UnlockingSize(lockingScript script.Script) (int, error) {
	info, ok := u.match(lockingScript)
	if !ok {
		return 0, dash_interpreter.ScriptNotMatching
	}

	size := UnlockingSize(info.RequiredSigners)
	if u.RedeemScript != nil && lockingScript.IsPayToScriptHash() {
		size += script.NewPushDataChunk(u.RedeemScript.Bytes()).Size()
	}

	return size, nil
}

func (u *Unlocker) CanUnlock(lockingScript script.Script) bool {
	info, ok := u.match(lockingScript)
	if !ok {
		return false
	}

	count := 0
	for _, publicKey := range info.PublicKeys {
		if findKey(u.Keys, publicKey) != nil {
			count++
		}
	}

	return count >= info.RequiredSigners
}

func (u *Unlocker) match(lockingScript script.Script) (*Info, bool) {
	if lockingScript.IsPayToScriptHash() {
		if u.RedeemScript == nil ||
			!lockingScript.Equal(script.NewPayToScriptHashScript(*u.RedeemScript)) {
			return nil, false
		}
		lockingScript = *u.RedeemScript
	}

	info, err := MatchScript(lockingScript)
	if err != nil {
		return nil, false
	}

	return info, true
}

func (u *Unlocker) Copy() dash_interpreter.Unlocker {
	keys := make([]bitcoin.Key, len(u.Keys))
	for i, key := range u.Keys {
		keys[i] = key.Copy()
	}

	result := &Unlocker{
		Keys:        keys,
		SigHashType: u.SigHashType,
	}

	if u.RedeemScript != nil {
		redeemScript := *u.RedeemScript
		result.RedeemScript = &redeemScript
	}

	return result
}
