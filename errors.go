package dash_interpreter

import (
	"github.com/pkg/errors"
)

var (
	// Evaluation
	ErrEvalFalse      = errors.New("Eval False")
	ErrOpReturn       = errors.New("Op Return")
	ErrScriptSize     = errors.New("Script Size")
	ErrPushSize       = errors.New("Push Size")
	ErrOpCount        = errors.New("Op Count")
	ErrStackSize      = errors.New("Stack Size")
	ErrSigCount       = errors.New("Signature Count")
	ErrPubKeyCount    = errors.New("Public Key Count")
	ErrInvalidOperand = errors.New("Invalid Operand Size")
	ErrInvalidRange   = errors.New("Invalid Range")

	// Failed verify operations
	ErrVerifyFailed             = errors.New("Verify Failed")
	ErrEqualVerify              = errors.New("Equal Verify Failed")
	ErrNumEqualVerify           = errors.New("Num Equal Verify Failed")
	ErrCheckSigVerify           = errors.New("Check Sig Verify Failed")
	ErrCheckMultiSigVerify      = errors.New("Check Multi Sig Verify Failed")
	ErrNegativeLockTime         = errors.New("Negative Lock Time")
	ErrUnsatisfiedLockTime      = errors.New("Unsatisfied Lock Time")
	ErrDiscourageUpgradableNOPs = errors.New("Discouraged Upgradable NOP")

	// Logical and stack errors
	ErrBadOpCode             = errors.New("Bad Op Code")
	ErrOpCodeDisabled        = errors.New("Op Code Disabled")
	ErrStackEmpty            = errors.New("Stack Empty")
	ErrAltStackEmpty         = errors.New("Alt Stack Empty")
	ErrUnbalancedConditional = errors.New("Unbalanced Conditional")
	ErrInvalidStackOperation = errors.New("Invalid Stack Operation")
	ErrSignaturePushOnly     = errors.New("Signature Script Not Push Only")
	ErrCleanStack            = errors.New("Stack Not Clean")
	ErrMinimalData           = errors.New("Non-Minimal Push")

	// Encoding
	ErrSignatureHashType  = errors.New("Invalid Signature Hash Type")
	ErrSignatureDER       = errors.New("Invalid DER Signature")
	ErrSignatureHighS     = errors.New("Signature High S")
	ErrSignatureNullDummy = errors.New("Non-Null Multisig Dummy")
	ErrPublicKeyType      = errors.New("Invalid Public Key Type")
)
