// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/wire"
)

// RawTxInSignature returns the serialized ECDSA signature for the input idx of
// the given transaction, with hashType appended to it.
func RawTxInSignature(tx *wire.MsgTx, idx int, subScript []byte,
	hashType SigHashType, key *btcec.PrivateKey) ([]byte, error) {

	parsedScript, err := ParseScript(subScript)
	if err != nil {
		return nil, fmt.Errorf("cannot parse output script: %w", err)
	}
	hash, err := calcSignatureHash(parsedScript, hashType, tx, idx)
	if err != nil {
		return nil, err
	}

	signature := ecdsa.Sign(key, hash)
	return append(signature.Serialize(), byte(hashType)), nil
}

// SignatureScript creates an input signature script for tx to spend coins sent
// from a previous output to the owner of privKey.  tx must include all
// transaction inputs and outputs, however txin scripts are allowed to be
// filled or empty.  The returned script is calculated to be used as the idx'th
// txin sigscript for tx.  subscript is the PkScript of the previous output
// being used as the idx'th input.  privKey is serialized in either a
// compressed or uncompressed format based on compress.  This format must match
// the same format used to generate the payment address, or the script
// validation will fail.
func SignatureScript(tx *wire.MsgTx, idx int, subscript []byte,
	hashType SigHashType, privKey *btcec.PrivateKey,
	compress bool) ([]byte, error) {

	sig, err := RawTxInSignature(tx, idx, subscript, hashType, privKey)
	if err != nil {
		return nil, err
	}

	pk := privKey.PubKey()
	var pkData []byte
	if compress {
		pkData = pk.SerializeCompressed()
	} else {
		pkData = pk.SerializeUncompressed()
	}

	script, err := NewScriptBuilder().AddData(sig).AddData(pkData).Script()
	if err != nil {
		return nil, err
	}
	return script.Bytes(), nil
}

// MultiSigSignatureScript creates the signature script redeeming a multisig
// script: the dummy OP_0 followed by the signatures in the order of the public
// keys they belong to.
func MultiSigSignatureScript(sigs [][]byte) ([]byte, error) {
	builder := NewScriptBuilder().AddOp(OP_0)
	for _, sig := range sigs {
		builder.AddData(sig)
	}
	script, err := builder.Script()
	if err != nil {
		return nil, err
	}
	return script.Bytes(), nil
}

// PayToScriptHashSignatureScript appends the push of the serialized redeem
// script to the signature script that satisfies it, yielding the signature
// script that spends the matching pay-to-script-hash output.
func PayToScriptHashSignatureScript(redeemSigScript,
	redeemScript []byte) ([]byte, error) {

	script, err := ParseScript(redeemSigScript)
	if err != nil {
		return nil, err
	}
	if len(redeemScript) > MaxScriptElementSize {
		str := fmt.Sprintf("redeem script size %d exceeds max allowed "+
			"size %d", len(redeemScript), MaxScriptElementSize)
		return nil, scriptError(ErrElementTooBig, str)
	}
	return script.WriteBytes(redeemScript).Bytes(), nil
}
