package dash_interpreter

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"

	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

const (
	// MaxScriptSize is the maximum serialized size of a script.
	MaxScriptSize = 10000

	// MaxScriptElementSize is the maximum size of a pushed item.
	MaxScriptElementSize = 520

	// MaxOpsPerScript is the maximum number of non-push op codes in a script. Public keys of
	// executed multisig operations are counted too.
	MaxOpsPerScript = 201

	// MaxStackSize is the maximum combined size of the stack and alt stack.
	MaxStackSize = 1000

	// MaxPublicKeysPerMultiSig is the maximum number of public keys in a multisig operation.
	MaxPublicKeysPerMultiSig = 20

	// maxShiftBits is the maximum shift of OP_LSHIFT and OP_RSHIFT.
	maxShiftBits = 2048
)

// InterpreterConfig configures an Interpreter.
type InterpreterConfig struct {
	Flags ScriptFlags

	// Extensions run in order. When nil DefaultExtensions(Flags) is used. Use an empty slice for
	// no extensions.
	Extensions []Extension

	// Checker is required.
	Checker SignatureChecker

	// Tracer receives diagnostic messages. It can be nil.
	Tracer Tracer
}

// Interpreter verifies signature scripts against output scripts. An interpreter doesn't keep
// state between calls so it can be used concurrently when its checker can.
type Interpreter struct {
	flags      ScriptFlags
	extensions []Extension
	checker    SignatureChecker
	tracer     Tracer
}

// NewInterpreter returns an interpreter. It panics when the config has no checker or uses
// ScriptVerifyCleanStack without ScriptVerifyP2SH.
func NewInterpreter(config InterpreterConfig) *Interpreter {
	if config.Checker == nil {
		panic("interpreter requires a signature checker")
	}

	if config.Flags.Has(ScriptVerifyCleanStack) && !config.Flags.Has(ScriptVerifyP2SH) {
		panic("clean stack verification requires p2sh verification")
	}

	extensions := config.Extensions
	if extensions == nil {
		extensions = DefaultExtensions(config.Flags)
	}

	var tracer Tracer = nopTracer{}
	if config.Tracer != nil {
		tracer = config.Tracer
	}

	return &Interpreter{
		flags:      config.Flags,
		extensions: extensions,
		checker:    config.Checker,
		tracer:     tracer,
	}
}

func (i *Interpreter) Flags() ScriptFlags {
	return i.flags
}

// VerifyScript returns true when the signature script satisfies the output script.
func (i *Interpreter) VerifyScript(ctx context.Context, signatureScript,
	outputScript script.Script) bool {
	return i.Verify(ctx, signatureScript, outputScript) == nil
}

// Verify evaluates the signature script, then evaluates the output script on the resulting stack.
// It returns nil when the top item of the final stack is true and every enabled rule passed.
func (i *Interpreter) Verify(ctx context.Context, signatureScript,
	outputScript script.Script) error {

	if i.flags.Has(ScriptVerifySigPushOnly) && !signatureScript.IsPushOnly() {
		return i.fail(errors.Wrap(ErrSignaturePushOnly, "signature script"))
	}

	v := &Verification{
		SignatureScript: signatureScript,
		OutputScript:    outputScript,
		Flags:           i.flags,
		interpreter:     i,
	}

	for _, extension := range i.extensions {
		if err := extension.WillVerifyScript(ctx, v); err != nil {
			return i.fail(err)
		}
	}

	stack, err := i.Evaluate(ctx, signatureScript, nil)
	if err != nil {
		return i.fail(errors.Wrap(err, "signature script"))
	}
	v.SignatureStack = copyStack(stack)

	stack, err = i.Evaluate(ctx, outputScript, stack)
	if err != nil {
		return i.fail(errors.Wrap(err, "output script"))
	}

	if len(stack) == 0 {
		return i.fail(errors.Wrap(ErrEvalFalse, "empty stack"))
	}

	if !isTrue(stack[len(stack)-1]) {
		return i.fail(errors.Wrapf(ErrEvalFalse, "final stack item: 0x%x", stack[len(stack)-1]))
	}

	v.Stack = stack

	for _, extension := range i.extensions {
		if err := extension.DidVerifyScript(ctx, v); err != nil {
			return i.fail(err)
		}
	}

	if i.flags.Has(ScriptVerifyCleanStack) && len(v.Stack) != 1 {
		return i.fail(errors.Wrapf(ErrCleanStack, "%d items", len(v.Stack)))
	}

	i.tracer.AddMessage("Verified script")
	return nil
}

// Evaluate evaluates the script starting with a copy of stack and returns the resulting stack.
func (i *Interpreter) Evaluate(ctx context.Context, s script.Script,
	stack [][]byte) ([][]byte, error) {

	exec := &Execution{
		interpreter: i,
		script:      s,
		stack:       copyStack(stack),
	}

	if err := exec.run(ctx); err != nil {
		if i.isTracing() {
			i.tracer.AddMessage(fmt.Sprintf("Failed script %s : %s\nStack: %s", s, err,
				spew.Sdump(exec.stack)))
		}
		return nil, err
	}

	return exec.stack, nil
}

func (i *Interpreter) fail(err error) error {
	if i.isTracing() {
		i.tracer.AddMessage(fmt.Sprintf("Failed verify : %s", err))
	}
	return err
}

func (i *Interpreter) isTracing() bool {
	_, isNop := i.tracer.(nopTracer)
	return !isNop
}

// Execution is the state of one script evaluation. Extensions use it to access the stack.
type Execution struct {
	interpreter *Interpreter
	script      script.Script

	stack    [][]byte
	altStack [][]byte

	// ifStack contains the state of each nested conditional. falseCount is the number of false
	// entries so the current branch executes only when it is zero.
	ifStack    []bool
	falseCount int

	opCount int

	// codeSeparator is the index of the chunk after the last executed OP_CODESEPARATOR.
	codeSeparator int
}

func (e *Execution) Flags() ScriptFlags {
	return e.interpreter.flags
}

func (e *Execution) Checker() SignatureChecker {
	return e.interpreter.checker
}

// StackSize returns the number of items on the stack.
func (e *Execution) StackSize() int {
	return len(e.stack)
}

// PeekStack returns the item depth items below the top of the stack.
func (e *Execution) PeekStack(depth int) ([]byte, error) {
	if depth < 0 || depth >= len(e.stack) {
		return nil, errors.Wrapf(ErrStackEmpty, "depth %d of %d", depth, len(e.stack))
	}

	return e.stack[len(e.stack)-1-depth], nil
}

// PopStack removes and returns the top item of the stack.
func (e *Execution) PopStack() ([]byte, error) {
	return e.popStack()
}

// PushStack pushes an item onto the stack.
func (e *Execution) PushStack(b []byte) {
	e.pushStack(b)
}

// Trace adds a message to the interpreter's tracer.
func (e *Execution) Trace(message string) {
	e.interpreter.tracer.AddMessage(message)
}

// StackString returns the stack items in hex, bottom first.
func (e *Execution) StackString() string {
	result := &bytes.Buffer{}
	for i, item := range e.stack {
		if i != 0 {
			result.WriteString(" ")
		}
		fmt.Fprintf(result, "%x", item)
	}
	return result.String()
}

func (e *Execution) run(ctx context.Context) error {
	if size := e.script.Size(); size > MaxScriptSize {
		return errors.Wrapf(ErrScriptSize, "%d > %d", size, MaxScriptSize)
	}

	for index := 0; index < e.script.Len(); index++ {
		chunk := e.script.Chunk(index)
		if err := e.step(ctx, index, chunk); err != nil {
			return errors.Wrapf(err, "chunk %d: %s", index, chunk)
		}

		if size := len(e.stack) + len(e.altStack); size > MaxStackSize {
			return errors.Wrapf(ErrStackSize, "%d > %d", size, MaxStackSize)
		}
	}

	if len(e.ifStack) != 0 {
		return errors.Wrapf(ErrUnbalancedConditional, "%d open conditionals", len(e.ifStack))
	}

	return nil
}

// isExecuting returns true if the current state of the if stack specifies that the current op
// code should be executed.
func (e *Execution) isExecuting() bool {
	return e.falseCount == 0
}

func (e *Execution) step(ctx context.Context, index int, chunk script.Chunk) error {
	executing := e.isExecuting()
	opCode := chunk.OpCode()

	if data, isPush := chunk.PushData(); isPush {
		if len(data) > MaxScriptElementSize {
			return errors.Wrapf(ErrPushSize, "%d > %d", len(data), MaxScriptElementSize)
		}

		if !executing {
			return nil
		}

		if e.Flags().Has(ScriptVerifyMinimalData) && !chunk.IsMinimalPush() {
			return ErrMinimalData
		}

		e.pushStack(copyBytes(data))
		return nil
	}

	if opCode > script.OP_16 {
		e.opCount++
		if e.opCount > MaxOpsPerScript {
			return errors.Wrapf(ErrOpCount, "%d > %d", e.opCount, MaxOpsPerScript)
		}
	}

	// Disabled op codes fail even when they aren't executed.
	if isDisabledOpCode(opCode) && !e.Flags().Has(ScriptEnableDisabledOpCodes) {
		return ErrOpCodeDisabled
	}

	if !executing && (opCode < script.OP_IF || opCode > script.OP_ENDIF) {
		return nil
	}

	if executing {
		for _, extension := range e.interpreter.extensions {
			if extension.HandlesOpCode(opCode, e.Flags()) {
				return extension.ExecuteOpCode(ctx, e, opCode)
			}
		}
	}

	return e.executeOpCode(index, opCode, executing)
}

func isDisabledOpCode(opCode byte) bool {
	switch opCode {
	case script.OP_CAT, script.OP_SUBSTR, script.OP_LEFT, script.OP_RIGHT,
		script.OP_INVERT, script.OP_AND, script.OP_OR, script.OP_XOR,
		script.OP_2MUL, script.OP_2DIV, script.OP_MUL, script.OP_DIV, script.OP_MOD,
		script.OP_LSHIFT, script.OP_RSHIFT:
		return true
	default:
		return false
	}
}

func (e *Execution) executeOpCode(index int, opCode byte, executing bool) error {
	flags := e.Flags()

	switch opCode {
	case script.OP_1NEGATE:
		e.pushNumber(script.NewNumber(-1))

	case script.OP_1, script.OP_2, script.OP_3, script.OP_4, script.OP_5, script.OP_6,
		script.OP_7, script.OP_8, script.OP_9, script.OP_10, script.OP_11, script.OP_12,
		script.OP_13, script.OP_14, script.OP_15, script.OP_16:
		e.pushNumber(script.NewNumber(int64(script.SmallIntegerValue(opCode))))

	case script.OP_NOP: // Do nothing

	case script.OP_NOP1, script.OP_NOP2, script.OP_NOP3, script.OP_NOP4, script.OP_NOP5,
		script.OP_NOP6, script.OP_NOP7, script.OP_NOP8, script.OP_NOP9, script.OP_NOP10:
		if flags.Has(ScriptVerifyDiscourageUpgradableNOPs) {
			return ErrDiscourageUpgradableNOPs
		}

	case script.OP_IF, script.OP_NOTIF:
		value := false
		if executing {
			b, err := e.popStack()
			if err != nil {
				return errors.Wrap(ErrUnbalancedConditional, "missing condition")
			}

			value = isTrue(b)
			if opCode == script.OP_NOTIF {
				value = !value
			}
		}

		e.ifStack = append(e.ifStack, value)
		if !value {
			e.falseCount++
		}

	case script.OP_ELSE:
		l := len(e.ifStack)
		if l == 0 {
			return errors.Wrap(ErrUnbalancedConditional, "else without if")
		}

		// Each else toggles the branch so repeated else op codes alternate.
		if e.ifStack[l-1] {
			e.falseCount++
		} else {
			e.falseCount--
		}
		e.ifStack[l-1] = !e.ifStack[l-1]

	case script.OP_ENDIF:
		l := len(e.ifStack)
		if l == 0 {
			return errors.Wrap(ErrUnbalancedConditional, "endif without if")
		}

		if !e.ifStack[l-1] {
			e.falseCount--
		}
		e.ifStack = e.ifStack[:l-1]

	case script.OP_VERIFY:
		b, err := e.popStack()
		if err != nil {
			return err
		}

		if !isTrue(b) {
			return ErrVerifyFailed
		}

	case script.OP_RETURN:
		return ErrOpReturn

	// Stack operations
	case script.OP_TOALTSTACK:
		b, err := e.popStack()
		if err != nil {
			return err
		}

		e.altStack = append(e.altStack, b)

	case script.OP_FROMALTSTACK:
		l := len(e.altStack)
		if l == 0 {
			return ErrAltStackEmpty
		}

		e.pushStack(e.altStack[l-1])
		e.altStack = e.altStack[:l-1]

	case script.OP_2DROP:
		if err := e.requireStack(2); err != nil {
			return err
		}

		e.stack = e.stack[:len(e.stack)-2]

	case script.OP_2DUP:
		if err := e.requireStack(2); err != nil {
			return err
		}

		e.pushStack(copyBytes(e.top(2)))
		e.pushStack(copyBytes(e.top(2)))

	case script.OP_3DUP:
		if err := e.requireStack(3); err != nil {
			return err
		}

		e.pushStack(copyBytes(e.top(3)))
		e.pushStack(copyBytes(e.top(3)))
		e.pushStack(copyBytes(e.top(3)))

	case script.OP_2OVER:
		if err := e.requireStack(4); err != nil {
			return err
		}

		e.pushStack(copyBytes(e.top(4)))
		e.pushStack(copyBytes(e.top(4)))

	case script.OP_2ROT:
		if err := e.requireStack(6); err != nil {
			return err
		}

		b1 := e.remove(6)
		b2 := e.remove(5)
		e.pushStack(b1)
		e.pushStack(b2)

	case script.OP_2SWAP:
		if err := e.requireStack(4); err != nil {
			return err
		}

		l := len(e.stack)
		e.stack[l-4], e.stack[l-2] = e.stack[l-2], e.stack[l-4]
		e.stack[l-3], e.stack[l-1] = e.stack[l-1], e.stack[l-3]

	case script.OP_IFDUP:
		if err := e.requireStack(1); err != nil {
			return err
		}

		if isTrue(e.top(1)) {
			e.pushStack(copyBytes(e.top(1)))
		}

	case script.OP_DEPTH:
		e.pushNumber(script.NewNumber(int64(len(e.stack))))

	case script.OP_DROP:
		if _, err := e.popStack(); err != nil {
			return err
		}

	case script.OP_DUP:
		if err := e.requireStack(1); err != nil {
			return err
		}

		e.pushStack(copyBytes(e.top(1)))

	case script.OP_NIP:
		if err := e.requireStack(2); err != nil {
			return err
		}

		e.remove(2)

	case script.OP_OVER:
		if err := e.requireStack(2); err != nil {
			return err
		}

		e.pushStack(copyBytes(e.top(2)))

	case script.OP_PICK, script.OP_ROLL:
		n, err := e.popNumber()
		if err != nil {
			return err
		}

		depth := n.Int()
		if depth < 0 || depth >= len(e.stack) {
			return errors.Wrapf(ErrInvalidStackOperation, "depth %d of %d", depth, len(e.stack))
		}

		if opCode == script.OP_ROLL {
			e.pushStack(e.remove(depth + 1))
		} else {
			e.pushStack(copyBytes(e.top(depth + 1)))
		}

	case script.OP_ROT:
		if err := e.requireStack(3); err != nil {
			return err
		}

		e.pushStack(e.remove(3))

	case script.OP_SWAP:
		if err := e.requireStack(2); err != nil {
			return err
		}

		l := len(e.stack)
		e.stack[l-2], e.stack[l-1] = e.stack[l-1], e.stack[l-2]

	case script.OP_TUCK:
		if err := e.requireStack(2); err != nil {
			return err
		}

		top := copyBytes(e.top(1))
		l := len(e.stack)
		e.stack = append(e.stack[:l-2], append([][]byte{top}, e.stack[l-2:]...)...)

	// Splice operations
	case script.OP_CAT:
		if err := e.requireStack(2); err != nil {
			return err
		}

		b2, _ := e.popStack()
		b1, _ := e.popStack()
		if len(b1)+len(b2) > MaxScriptElementSize {
			return errors.Wrapf(ErrPushSize, "%d > %d", len(b1)+len(b2), MaxScriptElementSize)
		}

		result := make([]byte, 0, len(b1)+len(b2))
		result = append(result, b1...)
		e.pushStack(append(result, b2...))

	case script.OP_SUBSTR:
		if err := e.requireStack(3); err != nil {
			return err
		}

		size, err := e.popNumber()
		if err != nil {
			return err
		}
		begin, err := e.popNumber()
		if err != nil {
			return err
		}
		b, _ := e.popStack()

		start := begin.Int()
		end := start + size.Int()
		if start < 0 || end < start {
			return errors.Wrapf(ErrInvalidRange, "substring %s, %s", begin, size)
		}
		if start > len(b) {
			start = len(b)
		}
		if end > len(b) {
			end = len(b)
		}

		e.pushStack(copyBytes(b[start:end]))

	case script.OP_LEFT, script.OP_RIGHT:
		if err := e.requireStack(2); err != nil {
			return err
		}

		n, err := e.popNumber()
		if err != nil {
			return err
		}
		b, _ := e.popStack()

		size := n.Int()
		if size < 0 {
			return errors.Wrapf(ErrInvalidRange, "size %s", n)
		}

		if size < len(b) {
			if opCode == script.OP_LEFT {
				b = b[:size]
			} else {
				b = b[len(b)-size:]
			}
		}

		e.pushStack(copyBytes(b))

	case script.OP_SIZE:
		if err := e.requireStack(1); err != nil {
			return err
		}

		e.pushNumber(script.NewNumber(int64(len(e.top(1)))))

	// Bitwise logic
	case script.OP_INVERT:
		b, err := e.popStack()
		if err != nil {
			return err
		}

		result := make([]byte, len(b))
		for i, v := range b {
			result[i] = ^v
		}
		e.pushStack(result)

	case script.OP_AND, script.OP_OR, script.OP_XOR:
		if err := e.requireStack(2); err != nil {
			return err
		}

		b2, _ := e.popStack()
		b1, _ := e.popStack()
		if len(b1) != len(b2) {
			return errors.Wrapf(ErrInvalidOperand, "sizes don't match: %d, %d", len(b1),
				len(b2))
		}

		result := make([]byte, len(b1))
		for i := range b1 {
			switch opCode {
			case script.OP_AND:
				result[i] = b1[i] & b2[i]
			case script.OP_OR:
				result[i] = b1[i] | b2[i]
			default:
				result[i] = b1[i] ^ b2[i]
			}
		}
		e.pushStack(result)

	case script.OP_EQUAL, script.OP_EQUALVERIFY:
		if err := e.requireStack(2); err != nil {
			return err
		}

		b2, _ := e.popStack()
		b1, _ := e.popStack()
		equal := bytes.Equal(b1, b2)

		if opCode == script.OP_EQUALVERIFY {
			if !equal {
				return ErrEqualVerify
			}
		} else {
			e.pushBool(equal)
		}

	// Numeric
	case script.OP_1ADD, script.OP_1SUB, script.OP_2MUL, script.OP_2DIV, script.OP_NEGATE,
		script.OP_ABS, script.OP_NOT, script.OP_0NOTEQUAL:
		n, err := e.popNumber()
		if err != nil {
			return err
		}

		switch opCode {
		case script.OP_1ADD:
			n = n.Add(script.NewNumber(1))
		case script.OP_1SUB:
			n = n.Sub(script.NewNumber(1))
		case script.OP_2MUL:
			n = n.Lsh(1)
		case script.OP_2DIV:
			n = n.Rsh(1)
		case script.OP_NEGATE:
			n = n.Neg()
		case script.OP_ABS:
			n = n.Abs()
		case script.OP_NOT:
			n = script.NewNumberFromBool(n.IsZero())
		case script.OP_0NOTEQUAL:
			n = script.NewNumberFromBool(!n.IsZero())
		}

		e.pushNumber(n)

	case script.OP_ADD, script.OP_SUB, script.OP_MUL, script.OP_DIV, script.OP_MOD,
		script.OP_LSHIFT, script.OP_RSHIFT, script.OP_BOOLAND, script.OP_BOOLOR,
		script.OP_NUMEQUAL, script.OP_NUMEQUALVERIFY, script.OP_NUMNOTEQUAL,
		script.OP_LESSTHAN, script.OP_GREATERTHAN, script.OP_LESSTHANOREQUAL,
		script.OP_GREATERTHANOREQUAL, script.OP_MIN, script.OP_MAX:
		if err := e.requireStack(2); err != nil {
			return err
		}

		n2, err := e.popNumber()
		if err != nil {
			return err
		}
		n1, err := e.popNumber()
		if err != nil {
			return err
		}

		return e.executeBinaryNumeric(opCode, n1, n2)

	case script.OP_WITHIN:
		if err := e.requireStack(3); err != nil {
			return err
		}

		maxValue, err := e.popNumber()
		if err != nil {
			return err
		}
		minValue, err := e.popNumber()
		if err != nil {
			return err
		}
		x, err := e.popNumber()
		if err != nil {
			return err
		}

		e.pushBool(minValue.Cmp(x) <= 0 && x.Cmp(maxValue) < 0)

	// Crypto
	case script.OP_RIPEMD160, script.OP_SHA1, script.OP_SHA256, script.OP_HASH160,
		script.OP_HASH256:
		b, err := e.popStack()
		if err != nil {
			return err
		}

		switch opCode {
		case script.OP_RIPEMD160:
			e.pushStack(bitcoin.Ripemd160(b))
		case script.OP_SHA1:
			hash := sha1.Sum(b)
			e.pushStack(hash[:])
		case script.OP_SHA256:
			e.pushStack(bitcoin.Sha256(b))
		case script.OP_HASH160:
			e.pushStack(bitcoin.Hash160(b))
		case script.OP_HASH256:
			e.pushStack(bitcoin.DoubleSha256(b))
		}

	case script.OP_CODESEPARATOR:
		e.codeSeparator = index + 1

	case script.OP_CHECKSIG, script.OP_CHECKSIGVERIFY:
		return e.checkSig(opCode)

	case script.OP_CHECKMULTISIG, script.OP_CHECKMULTISIGVERIFY:
		return e.checkMultiSig(opCode)

	default:
		// OP_VER, OP_VERIF, OP_VERNOTIF, OP_RESERVED, OP_RESERVED1, OP_RESERVED2, and undefined
		// op codes.
		return ErrBadOpCode
	}

	return nil
}

func (e *Execution) executeBinaryNumeric(opCode byte, n1, n2 script.Number) error {
	var result script.Number
	switch opCode {
	case script.OP_ADD:
		result = n1.Add(n2)
	case script.OP_SUB:
		result = n1.Sub(n2)
	case script.OP_MUL:
		result = n1.Mul(n2)
	case script.OP_DIV:
		r, err := n1.Div(n2)
		if err != nil {
			return errors.Wrap(ErrInvalidOperand, err.Error())
		}
		result = r
	case script.OP_MOD:
		r, err := n1.Mod(n2)
		if err != nil {
			return errors.Wrap(ErrInvalidOperand, err.Error())
		}
		result = r
	case script.OP_LSHIFT, script.OP_RSHIFT:
		if n2.Sign() < 0 || n2.Int() > maxShiftBits {
			return errors.Wrapf(ErrInvalidRange, "shift %s", n2)
		}
		if opCode == script.OP_LSHIFT {
			result = n1.Lsh(uint(n2.Int()))
		} else {
			result = n1.Rsh(uint(n2.Int()))
		}
	case script.OP_BOOLAND:
		result = script.NewNumberFromBool(n1.Bool() && n2.Bool())
	case script.OP_BOOLOR:
		result = script.NewNumberFromBool(n1.Bool() || n2.Bool())
	case script.OP_NUMEQUAL:
		result = script.NewNumberFromBool(n1.Equal(n2))
	case script.OP_NUMEQUALVERIFY:
		if !n1.Equal(n2) {
			return ErrNumEqualVerify
		}
		return nil
	case script.OP_NUMNOTEQUAL:
		result = script.NewNumberFromBool(!n1.Equal(n2))
	case script.OP_LESSTHAN:
		result = script.NewNumberFromBool(n1.Cmp(n2) < 0)
	case script.OP_GREATERTHAN:
		result = script.NewNumberFromBool(n1.Cmp(n2) > 0)
	case script.OP_LESSTHANOREQUAL:
		result = script.NewNumberFromBool(n1.Cmp(n2) <= 0)
	case script.OP_GREATERTHANOREQUAL:
		result = script.NewNumberFromBool(n1.Cmp(n2) >= 0)
	case script.OP_MIN:
		result = n1
		if n2.Cmp(n1) < 0 {
			result = n2
		}
	case script.OP_MAX:
		result = n1
		if n2.Cmp(n1) > 0 {
			result = n2
		}
	}

	b := result.Bytes()
	if len(b) > MaxScriptElementSize {
		return errors.Wrapf(ErrPushSize, "%d > %d", len(b), MaxScriptElementSize)
	}

	e.pushStack(b)
	return nil
}

// subscript returns the part of the script after the last executed OP_CODESEPARATOR with the
// signatures removed. Fork id signatures don't commit to their own removal.
func (e *Execution) subscript(signatures ...[]byte) script.Script {
	result := e.script.Subscript(e.codeSeparator, e.script.Len())
	for _, signature := range signatures {
		if e.isForkIDSignature(signature) {
			continue
		}
		result = result.FindAndDelete(script.NewScript(script.NewPushDataChunk(signature)))
	}
	return result
}

func (e *Execution) isForkIDSignature(signature []byte) bool {
	return e.Flags().Has(ScriptEnableSigHashForkID) && len(signature) > 0 &&
		SigHashType(signature[len(signature)-1]).HasForkID()
}

func (e *Execution) checkSig(opCode byte) error {
	if err := e.requireStack(2); err != nil {
		return err
	}

	flags := e.Flags()
	signature := e.top(2)
	publicKey := e.top(1)

	subscript := e.subscript(signature)

	if err := checkSignatureEncoding(signature, flags); err != nil {
		return err
	}
	if err := checkPublicKeyEncoding(publicKey, flags); err != nil {
		return err
	}

	verified := e.Checker().CheckSignature(signature, publicKey, subscript, flags)

	e.stack = e.stack[:len(e.stack)-2]

	if opCode == script.OP_CHECKSIGVERIFY {
		if !verified {
			return ErrCheckSigVerify
		}
		return nil
	}

	e.pushBool(verified)
	return nil
}

// checkMultiSig pops <dummy> <sig>... <sig count> <public key>... <key count> and checks that
// the signatures match the keys in order. Each key is tried once, so signatures must be in the
// same order as their keys.
func (e *Execution) checkMultiSig(opCode byte) error {
	flags := e.Flags()

	i := 1
	if len(e.stack) < i {
		return errors.Wrap(ErrStackEmpty, "multisig key count")
	}

	keyCountNumber, err := e.decodeNumber(e.top(i))
	if err != nil {
		return err
	}

	keyCount := keyCountNumber.Int()
	if keyCount < 0 || keyCount > MaxPublicKeysPerMultiSig {
		return errors.Wrapf(ErrPubKeyCount, "%d", keyCount)
	}

	e.opCount += keyCount
	if e.opCount > MaxOpsPerScript {
		return errors.Wrapf(ErrOpCount, "%d > %d", e.opCount, MaxOpsPerScript)
	}

	i++
	keyIndex := i
	i += keyCount
	if len(e.stack) < i {
		return errors.Wrap(ErrStackEmpty, "multisig sig count")
	}

	sigCountNumber, err := e.decodeNumber(e.top(i))
	if err != nil {
		return err
	}

	sigCount := sigCountNumber.Int()
	if sigCount < 0 || sigCount > keyCount {
		return errors.Wrapf(ErrSigCount, "%d of %d", sigCount, keyCount)
	}

	i++
	sigIndex := i
	i += sigCount
	if len(e.stack) < i {
		return errors.Wrap(ErrStackEmpty, "multisig signatures")
	}

	signatures := make([][]byte, sigCount)
	for k := 0; k < sigCount; k++ {
		signatures[k] = e.top(sigIndex + k)
	}
	subscript := e.subscript(signatures...)

	success := true
	for success && sigCount > 0 {
		signature := e.top(sigIndex)
		publicKey := e.top(keyIndex)

		if err := checkSignatureEncoding(signature, flags); err != nil {
			return err
		}
		if err := checkPublicKeyEncoding(publicKey, flags); err != nil {
			return err
		}

		if e.Checker().CheckSignature(signature, publicKey, subscript, flags) {
			sigIndex++
			sigCount--
		}
		keyIndex++
		keyCount--

		// There aren't enough keys left for the remaining signatures.
		if sigCount > keyCount {
			success = false
		}
	}

	// Remove the arguments.
	e.stack = e.stack[:len(e.stack)-(i-1)]

	// Remove the extra item that is consumed because of an off by one in the original version.
	dummy, err := e.popStack()
	if err != nil {
		return errors.Wrap(err, "multisig dummy")
	}

	if flags.Has(ScriptVerifyNullDummy) && len(dummy) != 0 {
		return errors.Wrapf(ErrSignatureNullDummy, "0x%x", dummy)
	}

	if opCode == script.OP_CHECKMULTISIGVERIFY {
		if !success {
			return ErrCheckMultiSigVerify
		}
		return nil
	}

	e.pushBool(success)
	return nil
}

// top returns the item at position n from the top of the stack where 1 is the top. The stack
// size must already be checked.
func (e *Execution) top(n int) []byte {
	return e.stack[len(e.stack)-n]
}

// remove removes and returns the item at position n from the top of the stack where 1 is the
// top.
func (e *Execution) remove(n int) []byte {
	index := len(e.stack) - n
	result := e.stack[index]
	e.stack = append(e.stack[:index], e.stack[index+1:]...)
	return result
}

func (e *Execution) requireStack(count int) error {
	if len(e.stack) < count {
		return errors.Wrapf(ErrStackEmpty, "need %d items, have %d", count, len(e.stack))
	}
	return nil
}

func (e *Execution) pushStack(b []byte) {
	e.stack = append(e.stack, b)
}

func (e *Execution) popStack() ([]byte, error) {
	l := len(e.stack)
	if l == 0 {
		return nil, ErrStackEmpty
	}

	result := e.stack[l-1]
	e.stack = e.stack[:l-1]
	return result, nil
}

func (e *Execution) pushNumber(n script.Number) {
	e.pushStack(n.Bytes())
}

func (e *Execution) pushBool(value bool) {
	e.pushNumber(script.NewNumberFromBool(value))
}

func (e *Execution) decodeNumber(b []byte) (script.Number, error) {
	return script.DecodeNumber(b, e.Flags().Has(ScriptVerifyMinimalData),
		script.DefaultNumberMaxSize)
}

func (e *Execution) popNumber() (script.Number, error) {
	b, err := e.popStack()
	if err != nil {
		return script.Number{}, err
	}

	return e.decodeNumber(b)
}

// isTrue returns false for empty items and items that are all zero, including negative zero.
func isTrue(b []byte) bool {
	for i, v := range b {
		if v != 0 {
			// Negative zero
			if i == len(b)-1 && v == 0x80 {
				return false
			}
			return true
		}
	}

	return false
}
