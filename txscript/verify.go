// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// Verifier runs the signature script and public key script of a transaction
// input together, including the pay-to-script-hash redeem script evaluation.
// A Verifier holds no per-input state and may be shared between goroutines as
// long as its checker may.
type Verifier struct {
	checker SignatureChecker
	flags   ScriptFlags
}

// NewVerifier returns a verifier resolving signature checks with checker under
// the provided flags.  A nil checker treats every signature as invalid.
func NewVerifier(checker SignatureChecker, flags ScriptFlags) (*Verifier, error) {
	// The clean stack flag (ScriptVerifyCleanStack) is not allowed without
	// the pay-to-script-hash (P2SH) evaluation (ScriptBip16) flag.
	//
	// Recall that evaluating a P2SH script without the flag set results in
	// non-P2SH evaluation which leaves the P2SH inputs on the stack.
	// Thus, allowing the clean stack flag without the P2SH flag would make
	// it possible to have a situation where P2SH would not be a soft fork
	// when it should be.
	if flags&ScriptVerifyCleanStack != 0 && flags&ScriptBip16 == 0 {
		return nil, scriptError(ErrInvalidFlags,
			"invalid flags combination")
	}

	return &Verifier{checker: checker, flags: flags}, nil
}

// hasFlag returns whether the verifier has the passed flag set.
func (v *Verifier) hasFlag(flag ScriptFlags) bool {
	return v.flags&flag == flag
}

// Verify reports whether sigScript satisfies pkScript for input txIdx of tx.
// A false result always comes with an error describing the reason, which is
// an Error wrapping one of the ErrorKind values.  Evaluations of hostile
// scripts fail this way rather than panicking.
//
// The redeem script of a pay-to-script-hash pkScript is only evaluated when
// the verifier has ScriptBip16 set, which StandardVerifyFlags includes.
// Without it only the script hash is checked.
func (v *Verifier) Verify(ctx context.Context, sigScript, pkScript []byte,
	tx *wire.MsgTx, txIdx int) (bool, error) {

	if err := v.verify(ctx, sigScript, pkScript, tx, txIdx); err != nil {
		log.Debugf("Script verification of input %d failed: %v",
			txIdx, err)
		return false, err
	}
	return true, nil
}

// verify performs the evaluation for Verify.
func (v *Verifier) verify(ctx context.Context, sigScript, pkScript []byte,
	tx *wire.MsgTx, txIdx int) error {

	if tx != nil && (txIdx < 0 || txIdx >= len(tx.TxIn)) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", txIdx, len(tx.TxIn))
		return scriptError(ErrInvalidIndex, str)
	}

	sig, err := ParseScript(sigScript)
	if err != nil {
		return err
	}
	pk, err := ParseScript(pkScript)
	if err != nil {
		return err
	}

	// The signature script must only contain data pushes when the
	// associated flag is set.
	if v.hasFlag(ScriptVerifySigPushOnly) && !sig.IsPushOnly() {
		return scriptError(ErrNotPushOnly,
			"signature script is not push only")
	}

	// The signature script must only contain data pushes for PS2H which is
	// determined based on the form of the public key script.
	bip16 := v.hasFlag(ScriptBip16) && pk.Class() == ScriptHashTy
	if bip16 && !sig.IsPushOnly() {
		return scriptError(ErrNotPushOnly, "pay to script hash is not "+
			"push only")
	}

	sigVM, err := v.run(ctx, sig, tx, txIdx, nil)
	if err != nil {
		return err
	}
	sigStack := sigVM.GetStack()

	// The public key script runs against the stack left by the signature
	// script.
	finalVM, err := v.run(ctx, pk, tx, txIdx, sigStack)
	if err != nil {
		return err
	}
	if err := finalVM.CheckErrorCondition(); err != nil {
		return err
	}

	if bip16 {
		// The public key script passing means the stack left by the
		// signature script is not empty, as its top is the script
		// whose hash was checked.
		if len(sigStack) == 0 {
			return scriptError(ErrEmptyStack, "signature script left "+
				"no redeem script on the stack")
		}

		redeemScript, err := ParseScript(sigStack[len(sigStack)-1])
		if err != nil {
			return err
		}

		finalVM, err = v.run(ctx, redeemScript, tx, txIdx,
			sigStack[:len(sigStack)-1])
		if err != nil {
			return err
		}
		if err := finalVM.CheckErrorCondition(); err != nil {
			return err
		}
	}

	// The final script must leave exactly one item on the stack when the
	// clean stack flag is set.
	if v.hasFlag(ScriptVerifyCleanStack) {
		if depth := len(finalVM.GetStack()); depth != 1 {
			str := fmt.Sprintf("stack must contain exactly one item "+
				"(contains %d)", depth)
			return scriptError(ErrCleanStack, str)
		}
	}

	return nil
}

// run evaluates script in a fresh engine whose data stack starts out as
// stack.
func (v *Verifier) run(ctx context.Context, script *Script, tx *wire.MsgTx,
	txIdx int, stack [][]byte) (*Engine, error) {

	vm, err := NewEngine(script, tx, txIdx, v.flags)
	if err != nil {
		return nil, err
	}
	vm.SetStack(stack)
	if err := vm.Execute(ctx, v.checker); err != nil {
		return nil, err
	}
	return vm, nil
}

// VerifyScript is a convenience function that creates a Verifier and verifies
// sigScript against pkScript for input txIdx of tx.  Pass ScriptBip16 in flags
// to have pay-to-script-hash redeem scripts evaluated.
func VerifyScript(ctx context.Context, sigScript, pkScript []byte,
	tx *wire.MsgTx, txIdx int, flags ScriptFlags,
	checker SignatureChecker) (bool, error) {

	v, err := NewVerifier(checker, flags)
	if err != nil {
		return false, err
	}
	return v.Verify(ctx, sigScript, pkScript, tx, txIdx)
}
