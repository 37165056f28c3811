package validation

import (
	"bytes"
	"fmt"

	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/pkg/wire"
)

const (
	// Coin is the number of base units in one coin.
	Coin = 100000000

	// MaxMoney is the maximum number of base units that can exist.
	MaxMoney = 21000000 * Coin

	// MaxBlockSize is the maximum serialized size of a block, so also of a transaction.
	MaxBlockSize = 1000000

	// MinCoinbaseScriptSize and MaxCoinbaseScriptSize bound the coinbase input's script.
	MinCoinbaseScriptSize = 2
	MaxCoinbaseScriptSize = 100

	// NullOutPointIndex is the index of the outpoint of a coinbase input.
	NullOutPointIndex = 0xffffffff
)

// RejectCode is the code sent to peers when a transaction is rejected.
type RejectCode uint8

const (
	RejectMalformed       = RejectCode(0x01)
	RejectInvalid         = RejectCode(0x10)
	RejectObsolete        = RejectCode(0x11)
	RejectDuplicate       = RejectCode(0x12)
	RejectNonstandard     = RejectCode(0x40)
	RejectDust            = RejectCode(0x41)
	RejectInsufficientFee = RejectCode(0x42)
	RejectCheckpoint      = RejectCode(0x43)
)

func (c RejectCode) String() string {
	switch c {
	case RejectMalformed:
		return "malformed"
	case RejectInvalid:
		return "invalid"
	case RejectObsolete:
		return "obsolete"
	case RejectDuplicate:
		return "duplicate"
	case RejectNonstandard:
		return "nonstandard"
	case RejectDust:
		return "dust"
	case RejectInsufficientFee:
		return "insufficientfee"
	case RejectCheckpoint:
		return "checkpoint"
	default:
		return fmt.Sprintf("0x%02x", uint8(c))
	}
}

// Reject reasons of CheckTransaction.
const (
	ReasonInputsEmpty         = "bad-txns-vin-empty"
	ReasonOutputsEmpty        = "bad-txns-vout-empty"
	ReasonOversize            = "bad-txns-oversize"
	ReasonOutputNegative      = "bad-txns-vout-negative"
	ReasonOutputTooLarge      = "bad-txns-vout-toolarge"
	ReasonOutputTotalTooLarge = "bad-txns-txouttotal-toolarge"
	ReasonDuplicateInputs     = "bad-txns-inputs-duplicate"
	ReasonCoinbaseLength      = "bad-cb-length"
	ReasonNullPrevOut         = "bad-txns-prevout-null"
)

type validationMode uint8

const (
	modeValid = validationMode(iota)
	modeInvalid
	modeError
)

// ValidationState records the result of validation. The zero value is valid.
type ValidationState struct {
	mode         validationMode
	dos          int
	rejectCode   RejectCode
	rejectReason string
}

// DoS marks the state invalid with a denial of service score and returns ret.
func (s *ValidationState) DoS(level int, ret bool, code RejectCode, reason string) bool {
	s.rejectCode = code
	s.rejectReason = reason
	if s.mode == modeError {
		return ret
	}

	s.dos += level
	s.mode = modeInvalid
	return ret
}

// Invalid marks the state invalid without a denial of service score and returns false.
func (s *ValidationState) Invalid(code RejectCode, reason string) bool {
	return s.DoS(0, false, code, reason)
}

// Error marks the state as an internal error and returns false.
func (s *ValidationState) Error(reason string) bool {
	if s.mode == modeValid {
		s.rejectReason = reason
	}
	s.mode = modeError
	return false
}

func (s *ValidationState) IsValid() bool {
	return s.mode == modeValid
}

func (s *ValidationState) IsInvalid() bool {
	return s.mode == modeInvalid
}

func (s *ValidationState) IsError() bool {
	return s.mode == modeError
}

// DoSLevel returns the accumulated denial of service score.
func (s *ValidationState) DoSLevel() int {
	return s.dos
}

func (s *ValidationState) RejectCode() RejectCode {
	return s.rejectCode
}

func (s *ValidationState) RejectReason() string {
	return s.rejectReason
}

func (s *ValidationState) String() string {
	switch s.mode {
	case modeValid:
		return "valid"
	case modeError:
		return fmt.Sprintf("error: %s", s.rejectReason)
	default:
		return fmt.Sprintf("invalid (%s, dos %d): %s", s.rejectCode, s.dos, s.rejectReason)
	}
}

// IsNullOutPoint returns true for the outpoint of a coinbase input, a zero hash and index
// 0xffffffff.
func IsNullOutPoint(outpoint wire.OutPoint) bool {
	return outpoint.Index == NullOutPointIndex && outpoint.Hash == bitcoin.Hash32{}
}

// IsCoinBase returns true when the transaction has exactly one input and it spends the null
// outpoint.
func IsCoinBase(tx *wire.MsgTx) bool {
	return len(tx.TxIn) == 1 && IsNullOutPoint(tx.TxIn[0].PreviousOutPoint)
}

// CheckTransaction applies the context free structural checks to the transaction. It returns
// false and records the reason in state when a check fails.
func CheckTransaction(tx *wire.MsgTx, state *ValidationState) bool {
	if len(tx.TxIn) == 0 {
		return state.DoS(10, false, RejectInvalid, ReasonInputsEmpty)
	}

	if len(tx.TxOut) == 0 {
		return state.DoS(10, false, RejectInvalid, ReasonOutputsEmpty)
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return state.Error(fmt.Sprintf("serialize: %s", err))
	}
	if buf.Len() > MaxBlockSize {
		return state.DoS(100, false, RejectInvalid, ReasonOversize)
	}

	var total int64
	for _, output := range tx.TxOut {
		value := int64(output.Value)
		if value < 0 {
			return state.DoS(100, false, RejectInvalid, ReasonOutputNegative)
		}

		if value > MaxMoney {
			return state.DoS(100, false, RejectInvalid, ReasonOutputTooLarge)
		}

		total += value
		if total > MaxMoney {
			return state.DoS(100, false, RejectInvalid, ReasonOutputTotalTooLarge)
		}
	}

	outpoints := make(map[wire.OutPoint]bool)
	for _, input := range tx.TxIn {
		if outpoints[input.PreviousOutPoint] {
			return state.DoS(100, false, RejectInvalid, ReasonDuplicateInputs)
		}
		outpoints[input.PreviousOutPoint] = true
	}

	if IsCoinBase(tx) {
		size := len(tx.TxIn[0].UnlockingScript)
		if size < MinCoinbaseScriptSize || size > MaxCoinbaseScriptSize {
			return state.DoS(100, false, RejectInvalid, ReasonCoinbaseLength)
		}
	} else {
		for _, input := range tx.TxIn {
			if IsNullOutPoint(input.PreviousOutPoint) {
				return state.DoS(10, false, RejectInvalid, ReasonNullPrevOut)
			}
		}
	}

	return true
}
