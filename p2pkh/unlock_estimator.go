package p2pkh

import (
	"context"

	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
)

// UnlockEstimator can't actually unlock anything, but it can estimate the size of P2PKH unlocking
// scripts.
type UnlockEstimator struct{}

func NewUnlockEstimator() *UnlockEstimator {
	return &UnlockEstimator{}
}

func (u *UnlockEstimator) Unlock(ctx context.Context, tx dash_interpreter.TransactionWithOutputs,
	inputIndex int) (script.Script, error) {
	return script.Script{}, dash_interpreter.CantSign
}

func (u *UnlockEstimator) UnlockingSize(lockingScript script.Script) (int, error) {
	if _, err := MatchScript(lockingScript, true); err == nil {
		return UnlockingSize, nil
	}
	if _, err := MatchScript(lockingScript, false); err == nil {
		return UnlockingSize, nil
	}

	return 0, dash_interpreter.ScriptNotMatching
}

func (u *UnlockEstimator) CanUnlock(lockingScript script.Script) bool {
	return false
}

func (u *UnlockEstimator) Copy() dash_interpreter.Unlocker {
	return &UnlockEstimator{}
}
