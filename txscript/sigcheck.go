// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// SigCheckRequest describes a single signature verification the engine needs
// answered before it can continue.
type SigCheckRequest struct {
	// Signature is the signature with the trailing hash type byte removed.
	Signature []byte

	// HashType is the hash type byte that followed the signature.
	HashType SigHashType

	// PubKey is the serialized public key the signature is checked
	// against.
	PubKey []byte

	// SubScript is the script the signature commits to: the part of the
	// executing script after the most recent OP_CODESEPARATOR, with every
	// candidate signature removed.
	SubScript *Script

	// Tx and InputIdx identify the spending input.  Tx may be nil when the
	// engine was created without a transaction.
	Tx       *wire.MsgTx
	InputIdx int
}

// SignatureChecker decides whether signatures are valid.  Implementations must
// be safe for concurrent use when shared between engines running in parallel.
//
// An error reports a failure of the checker itself rather than a bad
// signature.  The engine treats such failures as invalid signatures.
type SignatureChecker interface {
	CheckSig(ctx context.Context, req *SigCheckRequest) (bool, error)
}

// SignatureCheckerFunc is an adapter to allow the use of ordinary functions as
// a SignatureChecker.
type SignatureCheckerFunc func(ctx context.Context, req *SigCheckRequest) (bool, error)

// CheckSig calls f(ctx, req).
func (f SignatureCheckerFunc) CheckSig(ctx context.Context,
	req *SigCheckRequest) (bool, error) {

	return f(ctx, req)
}

// ECDSAChecker verifies secp256k1 ECDSA signatures over the legacy signature
// hash of the spending transaction.
type ECDSAChecker struct {
	sigCache *SigCache
}

// NewECDSAChecker returns a checker that consults and populates the provided
// signature cache.  The cache may be nil.
func NewECDSAChecker(sigCache *SigCache) *ECDSAChecker {
	return &ECDSAChecker{sigCache: sigCache}
}

// CheckSig computes the signature hash for the request and verifies the
// signature against it.
//
// This is part of the SignatureChecker interface.
func (c *ECDSAChecker) CheckSig(_ context.Context,
	req *SigCheckRequest) (bool, error) {

	if req.Tx == nil {
		return false, fmt.Errorf("no transaction to compute the " +
			"signature hash over")
	}

	hash, err := calcSignatureHash(req.SubScript, req.HashType, req.Tx,
		req.InputIdx)
	if err != nil {
		return false, err
	}

	pubKey, err := btcec.ParsePubKey(req.PubKey)
	if err != nil {
		log.Tracef("unable to parse public key: %v", err)
		return false, nil
	}

	signature, err := ecdsa.ParseSignature(req.Signature)
	if err != nil {
		log.Tracef("unable to parse signature: %v", err)
		return false, nil
	}

	var sigHash chainhash.Hash
	copy(sigHash[:], hash)

	if c.sigCache != nil && c.sigCache.Exists(&sigHash, signature, pubKey) {
		return true, nil
	}

	valid := signature.Verify(sigHash[:], pubKey)
	if valid && c.sigCache != nil {
		c.sigCache.Add(&sigHash, signature, pubKey)
	}
	return valid, nil
}
