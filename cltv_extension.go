package dash_interpreter

import (
	"context"

	"github.com/tokenized/dash_interpreter/script"

	"github.com/pkg/errors"
)

// CheckLockTimeVerifyExtension implements OP_CHECKLOCKTIMEVERIFY (BIP65) in place of OP_NOP2.
// The lock time is left on the stack.
type CheckLockTimeVerifyExtension struct{}

func (e *CheckLockTimeVerifyExtension) HandlesOpCode(opCode byte, flags ScriptFlags) bool {
	return opCode == script.OP_CHECKLOCKTIMEVERIFY && flags.Has(ScriptVerifyCheckLockTimeVerify)
}

func (e *CheckLockTimeVerifyExtension) ExecuteOpCode(ctx context.Context, exec *Execution,
	opCode byte) error {

	top, err := exec.PeekStack(0)
	if err != nil {
		return err
	}

	// Lock times are 32 bit unsigned so they can need 5 bytes.
	lockTime, err := script.DecodeNumber(top, exec.Flags().Has(ScriptVerifyMinimalData),
		script.LockTimeNumberMaxSize)
	if err != nil {
		return errors.Wrap(err, "lock time")
	}

	if lockTime.Sign() < 0 {
		return errors.Wrapf(ErrNegativeLockTime, "%s", lockTime)
	}

	if !exec.Checker().CheckLockTime(lockTime) {
		return errors.Wrapf(ErrUnsatisfiedLockTime, "%s", lockTime)
	}

	return nil
}

func (e *CheckLockTimeVerifyExtension) WillVerifyScript(ctx context.Context,
	v *Verification) error {
	return nil
}

func (e *CheckLockTimeVerifyExtension) DidVerifyScript(ctx context.Context,
	v *Verification) error {
	return nil
}
