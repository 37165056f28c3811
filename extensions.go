package dash_interpreter

import (
	"context"

	"github.com/tokenized/dash_interpreter/script"
)

// Extension adds behavior to the interpreter. Extensions can take over executed op codes and are
// notified before and after scripts are verified.
type Extension interface {
	// HandlesOpCode returns true when the extension executes the op code instead of the
	// interpreter.
	HandlesOpCode(opCode byte, flags ScriptFlags) bool

	// ExecuteOpCode executes an op code that the extension handles.
	ExecuteOpCode(ctx context.Context, exec *Execution, opCode byte) error

	// WillVerifyScript is called before the signature script is evaluated.
	WillVerifyScript(ctx context.Context, v *Verification) error

	// DidVerifyScript is called after the output script was evaluated successfully. It can
	// replace the final stack.
	DidVerifyScript(ctx context.Context, v *Verification) error
}

// DefaultExtensions returns the extensions enabled by the flags in the order they run.
func DefaultExtensions(flags ScriptFlags) []Extension {
	var result []Extension
	if flags.Has(ScriptVerifyP2SH) {
		result = append(result, &P2SHExtension{})
	}
	if flags.Has(ScriptVerifyCheckLockTimeVerify) {
		result = append(result, &CheckLockTimeVerifyExtension{})
	}
	return result
}

// Verification is the state of one script verification that is shared with extensions.
type Verification struct {
	SignatureScript script.Script
	OutputScript    script.Script
	Flags           ScriptFlags

	// SignatureStack is a copy of the stack after the signature script was evaluated.
	SignatureStack [][]byte

	// Stack is the final stack. Extensions can replace it in DidVerifyScript.
	Stack [][]byte

	interpreter *Interpreter
}

// Evaluate evaluates the script on a copy of stack with the interpreter that is verifying.
func (v *Verification) Evaluate(ctx context.Context, s script.Script,
	stack [][]byte) ([][]byte, error) {
	return v.interpreter.Evaluate(ctx, s, stack)
}

func copyStack(stack [][]byte) [][]byte {
	result := make([][]byte, len(stack))
	for i, item := range stack {
		result[i] = copyBytes(item)
	}
	return result
}

func copyBytes(b []byte) []byte {
	result := make([]byte, len(b))
	copy(result, b)
	return result
}
