// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"context"
	"fmt"
	"runtime"

	"github.com/btcsuite/btcd/wire"
	"golang.org/x/sync/errgroup"
)

// ValidateTransactionScripts validates the scripts of every input of tx
// against the public key scripts of the outputs they spend, given in input
// order by prevScripts.  Inputs are validated concurrently.  The first failure
// cancels the remaining validations and is returned as an Error whose
// description names the failing input.
func ValidateTransactionScripts(ctx context.Context, tx *wire.MsgTx,
	prevScripts [][]byte, flags ScriptFlags, checker SignatureChecker) error {

	if len(prevScripts) != len(tx.TxIn) {
		str := fmt.Sprintf("transaction has %d inputs but %d previous "+
			"output scripts were provided", len(tx.TxIn),
			len(prevScripts))
		return scriptError(ErrInvalidIndex, str)
	}

	v, err := NewVerifier(checker, flags)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU() * 3)
	for txIdx, txIn := range tx.TxIn {
		txIdx, txIn := txIdx, txIn
		sigScript := txIn.SignatureScript
		pkScript := prevScripts[txIdx]
		g.Go(func() error {
			_, err := v.Verify(gctx, sigScript, pkScript, tx, txIdx)
			if err != nil {
				str := fmt.Sprintf("failed to validate input "+
					"%s:%d which references output %v - %v "+
					"(input script bytes %x, prev output "+
					"script bytes %x)", tx.TxHash(), txIdx,
					txIn.PreviousOutPoint, err, sigScript,
					pkScript)
				return Error{Err: err, Description: str}
			}
			return nil
		})
	}

	return g.Wait()
}
