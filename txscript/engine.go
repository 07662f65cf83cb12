// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
)

// ScriptFlags is a bitmask defining additional operations or tests that will be
// done when executing a script.
type ScriptFlags uint32

const (
	// ScriptBip16 defines whether the bip16 threshold has passed and thus
	// pay-to-script hash transactions will be fully validated.
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptStrictMultiSig defines whether to verify the stack item
	// used by CHECKMULTISIG is zero length.
	ScriptStrictMultiSig

	// ScriptDiscourageUpgradableNops defines whether to verify that
	// NOP1 through NOP10 are reserved for future soft-fork upgrades.  This
	// flag must not be used for consensus critical code nor applied to
	// blocks as this flag is only for stricter standard transaction
	// checks.  This flag is only applied when the above opcodes are
	// executed.
	ScriptDiscourageUpgradableNops

	// ScriptVerifyCleanStack defines that the stack must contain only
	// one stack element after evaluation and that the element must be
	// true if interpreted as a boolean.  This is rule 6 of BIP0062.
	// This flag should never be used without the ScriptBip16 flag.
	ScriptVerifyCleanStack

	// ScriptVerifyDERSignatures defines that signatures are required
	// to comply with the DER format.
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS defines that signatures are required to comply with
	// the DER format and whose S value is <= order / 2.  This is rule 5
	// of BIP0062.
	ScriptVerifyLowS

	// ScriptVerifyMinimalData defines that signatures must use the smallest
	// push operator. This is both rules 3 and 4 of BIP0062.
	ScriptVerifyMinimalData

	// ScriptVerifySigPushOnly defines that signature scripts must contain
	// only pushed data.  This is rule 2 of BIP0062.
	ScriptVerifySigPushOnly

	// ScriptVerifyStrictEncoding defines that signature scripts and
	// public keys must follow the strict encoding requirements.
	ScriptVerifyStrictEncoding

	// ScriptVerifyCheckLockTimeVerify defines whether to verify that
	// a transaction output is spendable based on the locktime.
	// This is BIP0065.
	ScriptVerifyCheckLockTimeVerify

	// ScriptVerifyCheckSequenceVerify defines whether to allow execution
	// pathways of a script to be restricted based on the age of the output
	// being spent.  This is BIP0112.
	ScriptVerifyCheckSequenceVerify

	// StandardVerifyFlags are the script flags which are used when
	// executing transaction scripts to enforce additional checks which
	// are required for the script to be considered standard.  These checks
	// help reduce issues related to transaction malleability as well as
	// allow pay-to-script hash transactions.  Note these flags are
	// different than what is required for the consensus rules in that they
	// are more strict.
	StandardVerifyFlags = ScriptBip16 |
		ScriptVerifyDERSignatures |
		ScriptVerifyStrictEncoding |
		ScriptVerifyMinimalData |
		ScriptStrictMultiSig |
		ScriptDiscourageUpgradableNops |
		ScriptVerifyCleanStack |
		ScriptVerifyCheckLockTimeVerify |
		ScriptVerifyCheckSequenceVerify |
		ScriptVerifyLowS
)

// LockTimeThreshold is the number below which a lock time is interpreted to be
// a block number.  Since an average of one block is generated per 10 minutes,
// this allows blocks for about 9,512 years.
const LockTimeThreshold = 5e8 // Tue Nov 5 00:53:20 1985 UTC

// halfOrder is used to tame ECDSA malleability (see BIP0062).
var halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// ExecState describes where an engine is in the evaluation of its script.
type ExecState int

const (
	// ExecRunning means more opcodes remain to be stepped through.
	ExecRunning ExecState = iota

	// ExecSuspended means the engine is waiting for the verdict of the
	// signature check returned by PendingSigCheck.
	ExecSuspended

	// ExecDone means evaluation ended, either by reaching the end of the
	// script or by failing.
	ExecDone
)

var execStateStrings = map[ExecState]string{
	ExecRunning:   "running",
	ExecSuspended: "suspended",
	ExecDone:      "done",
}

// String returns the ExecState as a human-readable name.
func (s ExecState) String() string {
	if str, ok := execStateStrings[s]; ok {
		return str
	}
	return fmt.Sprintf("ExecState(%d)", int(s))
}

// Engine is the virtual machine that executes a single script.
//
// Evaluation is driven one opcode at a time by Step.  When an opcode needs a
// signature verified the engine suspends, exposes the request through
// PendingSigCheck, and waits for the caller to deliver the verdict through
// ResumeSigCheck.  Execute drives the whole loop against a SignatureChecker.
type Engine struct {
	script      *Script
	pc          int
	lastCodeSep int
	dstack      stack // data stack
	astack      stack // alt stack
	condStack   []int
	numOps      int
	flags       ScriptFlags
	tx          *wire.MsgTx
	txIdx       int

	state   ExecState
	err     error
	pending *SigCheckRequest
	cont    func(valid bool) error
}

// hasFlag returns whether the script engine instance has the passed flag set.
func (vm *Engine) hasFlag(flag ScriptFlags) bool {
	return vm.flags&flag == flag
}

// isBranchExecuting returns whether or not the current conditional branch is
// actively executing.  For example, when the data stack has an OP_FALSE on it
// and an OP_IF is encountered, the branch is inactive until an OP_ELSE or
// OP_ENDIF is encountered.  It properly handles nested conditionals.
func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == OpCondTrue
}

// executeChunk performs execution on the passed chunk.  It takes into account
// whether or not it is hidden by conditionals, but some rules still must be
// tested in this case.
func (vm *Engine) executeChunk(c Chunk) error {
	op := &opcodeArray[c.Opcode]

	// Disabled opcodes are fail on program counter.
	if op.isDisabled() {
		str := fmt.Sprintf("attempt to execute disabled opcode %s", op.name)
		return scriptError(ErrDisabledOpcode, str)
	}

	// Always-illegal opcodes are fail on program counter.
	if op.alwaysIllegal() {
		str := fmt.Sprintf("attempt to execute reserved opcode %s", op.name)
		return scriptError(ErrReservedOpcode, str)
	}

	// Note that this includes OP_RESERVED which counts as a push operation.
	if op.value > OP_16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			str := fmt.Sprintf("exceeded max operation limit of %d",
				MaxOpsPerScript)
			return scriptError(ErrTooManyOperations, str)
		}

	} else if len(c.Data) > MaxScriptElementSize {
		str := fmt.Sprintf("element size %d exceeds max allowed size %d",
			len(c.Data), MaxScriptElementSize)
		return scriptError(ErrElementTooBig, str)
	}

	// Nothing left to do when this is not a conditional opcode and it is
	// not in an executing branch.
	if !vm.isBranchExecuting() && !op.isConditional() {
		return nil
	}

	// Ensure all executed data push opcodes use the minimal encoding when
	// the minimal data verification flag is set.
	if vm.dstack.verifyMinimalData && vm.isBranchExecuting() &&
		op.value <= OP_PUSHDATA4 {

		if err := checkMinimalDataPush(op, c.Data); err != nil {
			return err
		}
	}

	return op.opfunc(op, c.Data, vm)
}

// suspend records a signature check request along with the continuation that
// consumes its verdict.  Step and ResumeSigCheck notice the pending request
// and move the engine into the suspended state.
func (vm *Engine) suspend(req *SigCheckRequest, cont func(valid bool) error) {
	vm.pending = req
	vm.cont = cont
}

// fail ends evaluation with the passed error.
func (vm *Engine) fail(err error) (ExecState, error) {
	vm.state = ExecDone
	vm.err = err
	vm.pending = nil
	vm.cont = nil
	return ExecDone, err
}

// finish ends evaluation at the end of the script.
func (vm *Engine) finish() (ExecState, error) {
	if len(vm.condStack) != 0 {
		return vm.fail(scriptError(ErrUnbalancedConditional,
			"end of script reached in conditional execution"))
	}

	vm.state = ExecDone
	return ExecDone, nil
}

// afterOp completes the opcode at the program counter once it no longer waits
// on a signature check and advances to the next one.
func (vm *Engine) afterOp() (ExecState, error) {
	if vm.pending != nil {
		vm.state = ExecSuspended
		return ExecSuspended, nil
	}

	// The number of elements in the combination of the data and alt stacks
	// must not exceed the maximum number of stack elements allowed.
	combinedStackSize := vm.dstack.Depth() + vm.astack.Depth()
	if combinedStackSize > MaxStackSize {
		str := fmt.Sprintf("combined stack size %d > max allowed %d",
			combinedStackSize, MaxStackSize)
		return vm.fail(scriptError(ErrStackOverflow, str))
	}

	vm.pc++
	if vm.pc >= len(vm.script.chunks) {
		return vm.finish()
	}
	return ExecRunning, nil
}

// Step executes the next opcode and moves the program counter to the next one.
// It returns the state of the engine afterwards:
//
//   - ExecRunning when more opcodes remain
//   - ExecSuspended when the opcode waits on a signature check, see
//     PendingSigCheck and ResumeSigCheck
//   - ExecDone when the end of the script was reached or evaluation failed
//
// Once evaluation failed, every further call returns the same error.
func (vm *Engine) Step() (ExecState, error) {
	switch vm.state {
	case ExecDone:
		if vm.err != nil {
			return ExecDone, vm.err
		}
		return ExecDone, scriptError(ErrScriptDone,
			"attempt to step a script that has already finished")

	case ExecSuspended:
		return ExecSuspended, scriptError(ErrSigCheckPending,
			"attempt to step a script waiting on a signature check")
	}

	// There are zero length scripts in the wild.
	if vm.pc >= len(vm.script.chunks) {
		return vm.finish()
	}

	if err := vm.executeChunk(vm.script.chunks[vm.pc]); err != nil {
		return vm.fail(err)
	}
	return vm.afterOp()
}

// PendingSigCheck returns the signature check the engine is suspended on, or
// nil when it is not suspended.
func (vm *Engine) PendingSigCheck() *SigCheckRequest {
	return vm.pending
}

// ResumeSigCheck delivers the verdict of the pending signature check and
// continues the suspended opcode.  A non-nil err reports a failure of the
// signature backend, which is treated the same as an invalid signature.
func (vm *Engine) ResumeSigCheck(valid bool, err error) (ExecState, error) {
	if vm.state != ExecSuspended {
		return vm.state, scriptError(ErrNoPendingSigCheck,
			"no signature check is pending")
	}

	if err != nil {
		log.Debugf("Signature check for input %d failed, treating "+
			"signature as invalid: %v", vm.txIdx, err)
		valid = false
	}

	cont := vm.cont
	vm.pending = nil
	vm.cont = nil
	vm.state = ExecRunning
	if err := cont(valid); err != nil {
		return vm.fail(err)
	}
	return vm.afterOp()
}

// Abandon ends an unfinished evaluation.  Subsequent calls to Step return
// ErrEvalAbandoned.
func (vm *Engine) Abandon(reason string) {
	if vm.state == ExecDone {
		return
	}
	vm.fail(scriptError(ErrEvalAbandoned, reason))
}

// Execute runs the script to completion, resolving every signature check with
// the passed checker.  A nil checker treats every signature as invalid.  When
// the context is done before evaluation completes the evaluation is abandoned
// and an error with ErrEvalAbandoned is returned.
//
// A nil error means evaluation reached the end of the script; Result and
// CheckErrorCondition report whether that left a true value on the stack.
func (vm *Engine) Execute(ctx context.Context, checker SignatureChecker) error {
	state := vm.state
	var err error
	for state != ExecDone {
		if ctxErr := ctx.Err(); ctxErr != nil {
			vm.Abandon(ctxErr.Error())
			return vm.err
		}

		switch state {
		case ExecRunning:
			log.Tracef("%v", newLogClosure(func() string {
				dis, err := vm.DisasmPC()
				if err != nil {
					return fmt.Sprintf("stepping (%v)", err)
				}
				return fmt.Sprintf("stepping %v", dis)
			}))

			state, err = vm.Step()

			log.Tracef("%v", newLogClosure(func() string {
				var dstr, astr string
				if vm.dstack.Depth() != 0 {
					dstr = "Stack:\n" + spew.Sdump(vm.dstack.items())
				}
				if vm.astack.Depth() != 0 {
					astr = "AltStack:\n" + spew.Sdump(vm.astack.items())
				}
				return dstr + astr
			}))

		case ExecSuspended:
			var valid bool
			var checkErr error
			if checker != nil {
				valid, checkErr = checker.CheckSig(ctx, vm.pending)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				vm.Abandon(ctxErr.Error())
				return vm.err
			}
			state, err = vm.ResumeSigCheck(valid, checkErr)
		}
		if err != nil {
			return err
		}
	}

	return vm.err
}

// Result returns the boolean value of the top stack item once the script has
// finished.  An empty stack is false.  An error is returned when evaluation
// failed or has not finished.
func (vm *Engine) Result() (bool, error) {
	if vm.state != ExecDone {
		return false, scriptError(ErrScriptUnfinished,
			"result requested before the script finished")
	}
	if vm.err != nil {
		return false, vm.err
	}
	if vm.dstack.Depth() == 0 {
		return false, nil
	}
	v, err := vm.dstack.PeekBool(0)
	if err != nil {
		return false, err
	}
	return v, nil
}

// CheckErrorCondition returns nil if the script has finished and left a true
// boolean on the stack.  Otherwise it returns an error describing why not,
// including when the script has not finished.
func (vm *Engine) CheckErrorCondition() error {
	if vm.state != ExecDone {
		return scriptError(ErrScriptUnfinished,
			"error check when script unfinished")
	}
	if vm.err != nil {
		return vm.err
	}
	if vm.dstack.Depth() < 1 {
		return scriptError(ErrEmptyStack,
			"stack empty at end of script execution")
	}

	v, err := vm.dstack.PeekBool(0)
	if err != nil {
		return err
	}
	if !v {
		log.Tracef("%v", newLogClosure(func() string {
			return fmt.Sprintf("script failed: %v\nStack:\n%v",
				vm.script, vm.dstack.String())
		}))
		return scriptError(ErrEvalFalse,
			"false stack entry at end of script execution")
	}
	return nil
}

// DisasmPC returns the string for the disassembly of the opcode that will be
// next to execute when Step is called.
func (vm *Engine) DisasmPC() (string, error) {
	if vm.pc >= len(vm.script.chunks) {
		str := fmt.Sprintf("program counter %d beyond script of %d "+
			"opcodes", vm.pc, len(vm.script.chunks))
		return "", scriptError(ErrInvalidProgramCounter, str)
	}

	var buf strings.Builder
	c := vm.script.chunks[vm.pc]
	fmt.Fprintf(&buf, "%04x: ", vm.pc)
	disasmOpcode(&buf, &opcodeArray[c.Opcode], c.Data, false)
	return buf.String(), nil
}

// subScript returns the script since the last OP_CODESEPARATOR.
func (vm *Engine) subScript() *Script {
	return vm.script.subScript(vm.lastCodeSep)
}

// checkHashTypeEncoding returns whether or not the passed hashtype adheres to
// the strict encoding requirements if enabled.
func (vm *Engine) checkHashTypeEncoding(hashType SigHashType) error {
	if !vm.hasFlag(ScriptVerifyStrictEncoding) {
		return nil
	}

	sigHashType := hashType & ^SigHashAnyOneCanPay
	if sigHashType < SigHashAll || sigHashType > SigHashSingle {
		str := fmt.Sprintf("invalid hash type 0x%x", hashType)
		return scriptError(ErrInvalidSigHashType, str)
	}
	return nil
}

// isCompressedPubKey returns true the passed serialized public key data is
// encoded in compressed format, and false otherwise.
func isCompressedPubKey(pubKey []byte) bool {
	// The serialized compressed public key must be 33 bytes in length and
	// start with either 0x02 or 0x03.
	return len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03)
}

// checkPubKeyEncoding returns whether or not the passed public key adheres to
// the strict encoding requirements if enabled.
func (vm *Engine) checkPubKeyEncoding(pubKey []byte) error {
	if !vm.hasFlag(ScriptVerifyStrictEncoding) {
		return nil
	}

	if isCompressedPubKey(pubKey) {
		return nil
	}
	if len(pubKey) == 65 && pubKey[0] == 0x04 {
		// Uncompressed
		return nil
	}

	return scriptError(ErrPubKeyType, "unsupported public key type")
}

// checkSignatureEncoding returns whether or not the passed signature adheres to
// the strict encoding requirements if enabled.
func (vm *Engine) checkSignatureEncoding(sig []byte) error {
	if !vm.hasFlag(ScriptVerifyDERSignatures) &&
		!vm.hasFlag(ScriptVerifyLowS) &&
		!vm.hasFlag(ScriptVerifyStrictEncoding) {

		return nil
	}

	// The format of a DER encoded signature is as follows:
	//
	// 0x30 <total length> 0x02 <length of R> <R> 0x02 <length of S> <S>
	//   - 0x30 is the ASN.1 identifier for a sequence
	//   - Total length is 1 byte and specifies length of all remaining data
	//   - 0x02 is the ASN.1 identifier that specifies an integer follows
	//   - Length of R is 1 byte and specifies how many bytes R occupies
	//   - R is the arbitrary length big-endian encoded number which
	//     represents the R value of the signature.  DER encoding dictates
	//     that the value must be encoded using the minimum possible number
	//     of bytes.  This implies the first byte can only be null if the
	//     highest bit of the next byte is set in order to prevent it from
	//     being interpreted as a negative number.
	//   - 0x02 is once again the ASN.1 integer identifier
	//   - Length of S is 1 byte and specifies how many bytes S occupies
	//   - S is the arbitrary length big-endian encoded number which
	//     represents the S value of the signature.  The encoding rules are
	//     identical as those for R.
	const (
		asn1SequenceID = 0x30
		asn1IntegerID  = 0x02

		// minSigLen is the minimum length of a DER encoded signature and is
		// when both R and S are 1 byte each.
		//
		// 0x30 + <1-byte> + 0x02 + 0x01 + <byte> + 0x2 + 0x01 + <byte>
		minSigLen = 8

		// maxSigLen is the maximum length of a DER encoded signature and is
		// when both R and S are 33 bytes each.  It is 33 bytes because a
		// 256-bit integer requires 32 bytes and an additional leading null
		// byte might be required if the high bit is set in the value.
		//
		// 0x30 + <1-byte> + 0x02 + 0x21 + <33 bytes> + 0x2 + 0x21 + <33 bytes>
		maxSigLen = 72

		sequenceOffset = 0
		dataLenOffset  = 1
		rTypeOffset    = 2
		rLenOffset     = 3
		rOffset        = 4
	)

	sigLen := len(sig)
	if sigLen < minSigLen {
		str := fmt.Sprintf("malformed signature: too short: %d < %d", sigLen,
			minSigLen)
		return scriptError(ErrSigTooShort, str)
	}
	if sigLen > maxSigLen {
		str := fmt.Sprintf("malformed signature: too long: %d > %d", sigLen,
			maxSigLen)
		return scriptError(ErrSigTooLong, str)
	}

	if sig[sequenceOffset] != asn1SequenceID {
		str := fmt.Sprintf("malformed signature: format has wrong type: %#x",
			sig[sequenceOffset])
		return scriptError(ErrSigInvalidSeqID, str)
	}
	if int(sig[dataLenOffset]) != sigLen-2 {
		str := fmt.Sprintf("malformed signature: bad length: %d != %d",
			sig[dataLenOffset], sigLen-2)
		return scriptError(ErrSigInvalidDataLen, str)
	}

	// Calculate the offsets of the elements related to S and ensure S is
	// inside the signature.
	rLen := int(sig[rLenOffset])
	sTypeOffset := rOffset + rLen
	sLenOffset := sTypeOffset + 1
	if sTypeOffset >= sigLen {
		str := "malformed signature: S type indicator missing"
		return scriptError(ErrSigMissingSTypeID, str)
	}
	if sLenOffset >= sigLen {
		str := "malformed signature: S length missing"
		return scriptError(ErrSigMissingSLen, str)
	}

	// The lengths of R and S must match the overall length of the
	// signature.
	sOffset := sLenOffset + 1
	sLen := int(sig[sLenOffset])
	if sOffset+sLen != sigLen {
		str := "malformed signature: invalid S length"
		return scriptError(ErrSigInvalidSLen, str)
	}

	// R elements must be ASN.1 integers.
	if sig[rTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: R integer marker: %#x != %#x",
			sig[rTypeOffset], asn1IntegerID)
		return scriptError(ErrSigInvalidRIntID, str)
	}

	// Zero-length integers are not allowed for R.
	if rLen == 0 {
		str := "malformed signature: R length is zero"
		return scriptError(ErrSigZeroRLen, str)
	}

	// R must not be negative.
	if sig[rOffset]&0x80 != 0 {
		str := "malformed signature: R is negative"
		return scriptError(ErrSigNegativeR, str)
	}

	// Null bytes at the start of R are not allowed, unless R would otherwise
	// be interpreted as a negative number.
	if rLen > 1 && sig[rOffset] == 0x00 && sig[rOffset+1]&0x80 == 0 {
		str := "malformed signature: R value has too much padding"
		return scriptError(ErrSigTooMuchRPadding, str)
	}

	// S elements must be ASN.1 integers.
	if sig[sTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: S integer marker: %#x != %#x",
			sig[sTypeOffset], asn1IntegerID)
		return scriptError(ErrSigInvalidSIntID, str)
	}

	// Zero-length integers are not allowed for S.
	if sLen == 0 {
		str := "malformed signature: S length is zero"
		return scriptError(ErrSigZeroSLen, str)
	}

	// S must not be negative.
	if sig[sOffset]&0x80 != 0 {
		str := "malformed signature: S is negative"
		return scriptError(ErrSigNegativeS, str)
	}

	// Null bytes at the start of S are not allowed, unless S would otherwise
	// be interpreted as a negative number.
	if sLen > 1 && sig[sOffset] == 0x00 && sig[sOffset+1]&0x80 == 0 {
		str := "malformed signature: S value has too much padding"
		return scriptError(ErrSigTooMuchSPadding, str)
	}

	// Verify the S value is <= half the order of the curve.  This check is
	// done because when it is higher, the complement modulo the order can be
	// used instead which is a shorter encoding by 1 byte.  Further, without
	// enforcing this, it is possible to replace a signature in a valid
	// transaction with the complement while still being a valid signature
	// that verifies.  This would result in changing the transaction hash and
	// thus is a source of malleability.
	if vm.hasFlag(ScriptVerifyLowS) {
		sValue := new(big.Int).SetBytes(sig[sOffset : sOffset+sLen])
		if sValue.Cmp(halfOrder) > 0 {
			return scriptError(ErrSigHighS, "signature is not canonical "+
				"due to unnecessarily high S value")
		}
	}

	return nil
}

// GetStack returns the contents of the primary stack as an array where the
// last item in the array is the top of the stack.
func (vm *Engine) GetStack() [][]byte {
	return vm.dstack.items()
}

// SetStack sets the contents of the primary stack to the contents of the
// provided array where the last item in the array will be the top of the stack.
func (vm *Engine) SetStack(data [][]byte) {
	vm.dstack.setItems(data)
}

// GetAltStack returns the contents of the alternate stack as an array where the
// last item in the array is the top of the stack.
func (vm *Engine) GetAltStack() [][]byte {
	return vm.astack.items()
}

// State returns the current execution state of the engine.
func (vm *Engine) State() ExecState {
	return vm.state
}

// NewEngine returns a new script engine for the provided script.  The
// transaction and input index identify the spending input the script is being
// evaluated for and are required by the signature and lock time opcodes.  A
// nil transaction is permitted for scripts that do not use them.  The flags
// modify the behavior of the script engine according to the description
// provided by each flag.
func NewEngine(script *Script, tx *wire.MsgTx, txIdx int,
	flags ScriptFlags) (*Engine, error) {

	// The provided transaction input index must refer to a valid input.
	if tx != nil && (txIdx < 0 || txIdx >= len(tx.TxIn)) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", txIdx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	if script == nil {
		script = NewScript()
	}
	if script.Len() > MaxScriptSize {
		str := fmt.Sprintf("script size %d is larger than max allowed "+
			"size %d", script.Len(), MaxScriptSize)
		return nil, scriptError(ErrScriptTooBig, str)
	}

	vm := Engine{
		script: script,
		flags:  flags,
		tx:     tx,
		txIdx:  txIdx,
	}
	if vm.hasFlag(ScriptVerifyMinimalData) {
		vm.dstack.verifyMinimalData = true
		vm.astack.verifyMinimalData = true
	}

	return &vm, nil
}
