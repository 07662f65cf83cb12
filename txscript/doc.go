// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements the bitcoin transaction script language.

This package provides data structures and functions to parse and execute
bitcoin transaction scripts.

# Script Overview

Bitcoin transaction scripts are written in a stack-base, FORTH-like language.

The bitcoin script language consists of a number of opcodes which fall into
several categories such pushing and popping data to and from the stack,
performing basic and bitwise arithmetic, conditional branching, comparing
hashes, and checking cryptographic signatures.  Scripts are processed from left
to right and intentionally do not provide loops.

The vast majority of Bitcoin scripts at the time of this writing are of several
standard forms which consist of a spender providing a public key and a
signature which proves the spender owns the associated private key.  This
information is used to prove the the spender is authorized to perform the
transaction.

# Signature Checks

The engine does not verify signatures itself.  When OP_CHECKSIG,
OP_CHECKSIGVERIFY, OP_CHECKMULTISIG or OP_CHECKMULTISIGVERIFY needs a
signature checked, Engine.Step returns ExecSuspended and the request is
available from Engine.PendingSigCheck.  The caller delivers the verdict with
Engine.ResumeSigCheck, which continues the opcode.  Engine.Execute runs this
loop against a SignatureChecker such as the ECDSAChecker provided by this
package.  OP_CHECKMULTISIG suspends once for every signature and public key
pairing it tries.

# Verification

Verifier runs a signature script followed by the public key script it spends
and, for pay-to-script-hash outputs, the redeem script.  Any failure is
reported as a false result along with the reason.

# Errors

Errors returned by this package are of type txscript.Error.  This allows the
caller to programmatically determine the specific error by examining the
ErrorKind it wraps with errors.Is.
*/
package txscript
