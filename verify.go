package dash_interpreter

import (
	"context"

	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/dash_interpreter/validation"
	"github.com/tokenized/logger"
	"github.com/tokenized/pkg/wire"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	ErrTransactionInvalid = errors.New("Transaction Invalid")
	ErrMissingInputOutput = errors.New("Missing Input Output")
)

// TransactionWithOutputs is a transaction with spent outputs provided.
type TransactionWithOutputs interface {
	GetMsgTx() *wire.MsgTx
	InputOutput(index int) (*wire.TxOut, error) // The output being spent by the input
}

// Transaction is a transaction with the outputs it spends keyed by outpoint.
type Transaction struct {
	Tx           *wire.MsgTx
	SpentOutputs map[wire.OutPoint]*wire.TxOut
}

func NewTransaction(tx *wire.MsgTx) *Transaction {
	return &Transaction{
		Tx:           tx,
		SpentOutputs: make(map[wire.OutPoint]*wire.TxOut),
	}
}

// AddSpentOutput adds the output spent by the outpoint.
func (t *Transaction) AddSpentOutput(outpoint wire.OutPoint, output *wire.TxOut) {
	t.SpentOutputs[outpoint] = output
}

func (t *Transaction) GetMsgTx() *wire.MsgTx {
	return t.Tx
}

func (t *Transaction) InputOutput(index int) (*wire.TxOut, error) {
	if index < 0 || index >= len(t.Tx.TxIn) {
		return nil, errors.Wrapf(ErrMissingInputOutput, "input index %d out of range", index)
	}

	outpoint := t.Tx.TxIn[index].PreviousOutPoint
	output, exists := t.SpentOutputs[outpoint]
	if !exists {
		return nil, errors.Wrapf(ErrMissingInputOutput, "%s:%d", outpoint.Hash.String(),
			outpoint.Index)
	}

	return output, nil
}

// VerifyConfig configures VerifyTransaction.
type VerifyConfig struct {
	Flags ScriptFlags

	// Workers is the maximum number of inputs verified concurrently. Zero is no limit.
	Workers int

	Tracer Tracer
}

// VerifyTransaction checks the structure of the transaction and then verifies the signature
// script of every input against the output it spends. Coinbase transactions have no scripts to
// verify.
func VerifyTransaction(ctx context.Context, tx TransactionWithOutputs,
	config VerifyConfig) error {

	msgTx := tx.GetMsgTx()

	state := &validation.ValidationState{}
	if !validation.CheckTransaction(msgTx, state) {
		return errors.Wrap(ErrTransactionInvalid, state.RejectReason())
	}

	if validation.IsCoinBase(msgTx) {
		return nil
	}

	outputs := make([]*wire.TxOut, len(msgTx.TxIn))
	for index := range msgTx.TxIn {
		output, err := tx.InputOutput(index)
		if err != nil {
			return errors.Wrapf(err, "input %d", index)
		}
		outputs[index] = output
	}

	var hashCache *SigHashCache
	if config.Flags.Has(ScriptEnableSigHashForkID) {
		hashCache = NewSigHashCache(msgTx)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if config.Workers > 0 {
		group.SetLimit(config.Workers)
	}

	for index := range msgTx.TxIn {
		index := index
		group.Go(func() error {
			checker := NewTransactionSignatureChecker(msgTx, index, outputs[index].Value,
				hashCache)
			return VerifyInput(groupCtx, msgTx, index, outputs[index].LockingScript, checker,
				config.Flags, config.Tracer)
		})
	}

	return group.Wait()
}

// VerifyInput verifies the signature script of the input against the locking script it spends.
func VerifyInput(ctx context.Context, tx *wire.MsgTx, index int, lockingScript []byte,
	checker SignatureChecker, flags ScriptFlags, tracer Tracer) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	outputScript, err := script.ParseScript(lockingScript)
	if err != nil {
		return errors.Wrapf(ErrBadOpCode, "input %d locking script: %s", index, err)
	}

	signatureScript, err := script.ParseScript(tx.TxIn[index].UnlockingScript)
	if err != nil {
		return errors.Wrapf(ErrBadOpCode, "input %d unlocking script: %s", index, err)
	}

	interpreter := NewInterpreter(InterpreterConfig{
		Flags:   flags,
		Checker: checker,
		Tracer:  tracer,
	})

	if err := interpreter.Verify(ctx, signatureScript, outputScript); err != nil {
		logger.InfoWithFields(ctx, []logger.Field{
			logger.Formatter("input", "%d", index),
			logger.Formatter("flags", "%s", flags),
		}, "Input failed verification : %s", err)
		return errors.Wrapf(err, "input %d", index)
	}

	return nil
}
