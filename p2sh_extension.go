package dash_interpreter

import (
	"bytes"
	"context"

	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"

	"github.com/pkg/errors"
)

// P2SHExtension evaluates the redeem script when the output script is pay to script hash
// (BIP16). The redeem script is the last item pushed by the signature script and it is evaluated
// on the rest of the items the signature script pushed.
type P2SHExtension struct{}

func (e *P2SHExtension) HandlesOpCode(opCode byte, flags ScriptFlags) bool {
	return false
}

func (e *P2SHExtension) ExecuteOpCode(ctx context.Context, exec *Execution, opCode byte) error {
	return errors.Wrapf(ErrBadOpCode, "p2sh does not execute %s", script.OpCodeName(opCode))
}

func (e *P2SHExtension) WillVerifyScript(ctx context.Context, v *Verification) error {
	return nil
}

func (e *P2SHExtension) DidVerifyScript(ctx context.Context, v *Verification) error {
	if !v.Flags.Has(ScriptVerifyP2SH) || !v.OutputScript.IsPayToScriptHash() {
		return nil
	}

	if !v.SignatureScript.IsPushOnly() {
		return errors.Wrap(ErrSignaturePushOnly, "p2sh")
	}

	// The signature script can't be empty since the output script's hash check passed.
	stack := copyStack(v.SignatureStack)
	if len(stack) == 0 {
		return errors.Wrap(ErrInvalidStackOperation, "p2sh missing redeem script")
	}

	redeemBytes := stack[len(stack)-1]
	stack = stack[:len(stack)-1]

	scriptHash, _ := v.OutputScript.Chunk(1).PushData()
	if !bytes.Equal(bitcoin.Hash160(redeemBytes), scriptHash) {
		return errors.Wrap(ErrEvalFalse, "p2sh redeem script hash")
	}

	redeemScript, err := script.ParseScript(redeemBytes)
	if err != nil {
		return errors.Wrapf(ErrBadOpCode, "p2sh redeem script: %s", err)
	}

	result, err := v.Evaluate(ctx, redeemScript, stack)
	if err != nil {
		return errors.Wrap(err, "p2sh redeem script")
	}

	if len(result) == 0 || !isTrue(result[len(result)-1]) {
		return errors.Wrap(ErrEvalFalse, "p2sh redeem script")
	}

	v.Stack = result
	return nil
}

func (e *P2SHExtension) String() string {
	return "P2SH"
}
