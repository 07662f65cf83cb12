// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// ScriptClass is an enumeration for the list of standard types of script.
type ScriptClass byte

// Classes of script payment known about in the blockchain.
const (
	NonStandardTy ScriptClass = iota // None of the recognized forms.
	PubKeyTy                         // Pay pubkey.
	PubKeyHashTy                     // Pay pubkey hash.
	ScriptHashTy                     // Pay to script hash.
	MultiSigTy                       // Multi signature.
)

// scriptClassToName houses the human-readable strings which describe each
// script class.
var scriptClassToName = []string{
	NonStandardTy: "nonstandard",
	PubKeyTy:      "pubkey",
	PubKeyHashTy:  "pubkeyhash",
	ScriptHashTy:  "scripthash",
	MultiSigTy:    "multisig",
}

// String implements the Stringer interface by returning the name of
// the enum script class.  If the enum is invalid then "Invalid" will be
// returned.
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// isPubKey returns true if the script passed is a pay-to-pubkey transaction,
// false otherwise.
func isPubKey(chunks []Chunk) bool {
	return len(chunks) == 2 &&
		chunks[0].IsData() &&
		chunks[1].Opcode == OP_CHECKSIG
}

// isPubKeyHash returns true if the script passed is a pay-to-pubkey-hash
// transaction, false otherwise.
func isPubKeyHash(chunks []Chunk) bool {
	return len(chunks) == 5 &&
		chunks[0].Opcode == OP_DUP &&
		chunks[1].Opcode == OP_HASH160 &&
		chunks[2].Opcode == OP_DATA_20 &&
		chunks[3].Opcode == OP_EQUALVERIFY &&
		chunks[4].Opcode == OP_CHECKSIG
}

// isScriptHash returns true if the script passed is a pay-to-script-hash
// transaction, false otherwise.
func isScriptHash(chunks []Chunk) bool {
	return len(chunks) == 3 &&
		chunks[0].Opcode == OP_HASH160 &&
		chunks[1].Opcode == OP_DATA_20 &&
		chunks[2].Opcode == OP_EQUAL
}

// isMultiSig returns true if the passed script is a multisig transaction, false
// otherwise.
func isMultiSig(chunks []Chunk) bool {
	// The absolute minimum is 1 pubkey:
	// OP_0/OP_1-16 <pubkey> OP_1 OP_CHECKMULTISIG
	l := len(chunks)
	if l < 4 {
		return false
	}
	if !isSmallInt(chunks[0].Opcode) {
		return false
	}
	if !isSmallInt(chunks[l-2].Opcode) {
		return false
	}
	if chunks[l-1].Opcode != OP_CHECKMULTISIG {
		return false
	}

	for _, c := range chunks[1 : l-2] {
		if !c.IsData() {
			return false
		}
	}
	return true
}

// typeOfScript returns the type of the script being inspected from the known
// standard types.
func typeOfScript(chunks []Chunk) ScriptClass {
	switch {
	case isPubKey(chunks):
		return PubKeyTy
	case isPubKeyHash(chunks):
		return PubKeyHashTy
	case isScriptHash(chunks):
		return ScriptHashTy
	case isMultiSig(chunks):
		return MultiSigTy
	}
	return NonStandardTy
}

// Class returns the standard pattern the script matches.
func (s *Script) Class() ScriptClass {
	return typeOfScript(s.chunks)
}

// Capture returns the data items that identify the script within its class:
// the public key, the public key hash, the script hash or the multisig public
// keys.  Nothing is returned for non-standard scripts.
func (s *Script) Capture() [][]byte {
	c := s.chunks
	switch typeOfScript(c) {
	case PubKeyTy:
		return [][]byte{c[0].Data}
	case PubKeyHashTy:
		return [][]byte{c[2].Data}
	case ScriptHashTy:
		return [][]byte{c[1].Data}
	case MultiSigTy:
		keys := make([][]byte, 0, len(c)-3)
		for _, chunk := range c[1 : len(c)-2] {
			keys = append(keys, chunk.Data)
		}
		return keys
	}
	return nil
}

// GetScriptClass returns the class of the script passed.
//
// NonStandardTy will be returned when the script does not parse.
func GetScriptClass(script []byte) ScriptClass {
	chunks, err := parseChunks(script)
	if err != nil {
		return NonStandardTy
	}
	return typeOfScript(chunks)
}

// IsPayToScriptHash returns true if the script is in the standard
// pay-to-script-hash (P2SH) format, false otherwise.
func IsPayToScriptHash(script []byte) bool {
	chunks, err := parseChunks(script)
	if err != nil {
		return false
	}
	return isScriptHash(chunks)
}

// PayToPubKeyScript creates a new script to pay a transaction output to a
// public key.
func PayToPubKeyScript(serializedPubKey []byte) (*Script, error) {
	if len(serializedPubKey) == 0 {
		return nil, scriptError(ErrPubKeyType, "empty public key")
	}
	return NewScriptBuilder().AddFullData(serializedPubKey).
		AddOp(OP_CHECKSIG).Script()
}

// PayToPubKeyHashScript creates a new script to pay a transaction output to a
// 20-byte pubkey hash.
func PayToPubKeyHashScript(pubKeyHash []byte) (*Script, error) {
	if len(pubKeyHash) != 20 {
		str := fmt.Sprintf("pubkey hash is %d bytes instead of 20",
			len(pubKeyHash))
		return nil, scriptError(ErrInvalidHashLen, str)
	}
	return NewScriptBuilder().AddOp(OP_DUP).AddOp(OP_HASH160).
		AddData(pubKeyHash).AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).
		Script()
}

// PayToScriptHashScript creates a new script to pay a transaction output to a
// script hash.
func PayToScriptHashScript(scriptHash []byte) (*Script, error) {
	if len(scriptHash) != 20 {
		str := fmt.Sprintf("script hash is %d bytes instead of 20",
			len(scriptHash))
		return nil, scriptError(ErrInvalidHashLen, str)
	}
	return NewScriptBuilder().AddOp(OP_HASH160).AddData(scriptHash).
		AddOp(OP_EQUAL).Script()
}

// MultiSigScript returns a valid script for a multisignature redemption where
// nRequired of the keys in pubKeys are required to have signed the transaction
// for success.  An ErrTooManyRequiredSigs will be returned if nRequired is
// larger than the number of keys provided.
func MultiSigScript(nRequired int, pubKeys [][]byte) (*Script, error) {
	if len(pubKeys) == 0 || len(pubKeys) > 16 {
		str := fmt.Sprintf("unable to build multisig script with %d "+
			"public keys", len(pubKeys))
		return nil, scriptError(ErrInvalidPubKeyCount, str)
	}
	if nRequired < 0 {
		str := fmt.Sprintf("negative number of required signatures %d",
			nRequired)
		return nil, scriptError(ErrInvalidSignatureCount, str)
	}
	if len(pubKeys) < nRequired {
		str := fmt.Sprintf("unable to generate multisig script with "+
			"%d required signatures when there are only %d public "+
			"keys available", nRequired, len(pubKeys))
		return nil, scriptError(ErrTooManyRequiredSigs, str)
	}

	builder := NewScriptBuilder().AddInt64(int64(nRequired))
	for _, key := range pubKeys {
		if len(key) == 0 {
			return nil, scriptError(ErrPubKeyType, "empty public key")
		}
		builder.AddFullData(key)
	}
	builder.AddInt64(int64(len(pubKeys)))
	builder.AddOp(OP_CHECKMULTISIG)

	return builder.Script()
}

// PayToAddrScript creates a new script to pay a transaction output to a the
// specified address.
func PayToAddrScript(addr btcutil.Address) (*Script, error) {
	const nilAddrErrStr = "unable to generate payment script for nil address"

	switch addr := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress,
				nilAddrErrStr)
		}
		return PayToPubKeyHashScript(addr.ScriptAddress())

	case *btcutil.AddressScriptHash:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress,
				nilAddrErrStr)
		}
		return PayToScriptHashScript(addr.ScriptAddress())

	case *btcutil.AddressPubKey:
		if addr == nil {
			return nil, scriptError(ErrUnsupportedAddress,
				nilAddrErrStr)
		}
		return PayToPubKeyScript(addr.ScriptAddress())
	}

	str := fmt.Sprintf("unable to generate payment script for unsupported "+
		"address type %T", addr)
	return nil, scriptError(ErrUnsupportedAddress, str)
}

// ExtractPkScriptAddrs returns the type of script, addresses and required
// signatures associated with the passed PkScript.  Note that it only works for
// 'standard' transaction script types.  Any data such as public keys which are
// invalid are omitted from the results.
func ExtractPkScriptAddrs(pkScript []byte,
	chainParams *chaincfg.Params) (ScriptClass, []btcutil.Address, int, error) {

	script, err := ParseScript(pkScript)
	if err != nil {
		return NonStandardTy, nil, 0, err
	}

	var addrs []btcutil.Address
	var requiredSigs int
	class := script.Class()
	data := script.Capture()
	switch class {
	case PubKeyHashTy:
		// A pay-to-pubkey-hash script is of the form:
		//  OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG
		requiredSigs = 1
		addr, err := btcutil.NewAddressPubKeyHash(data[0], chainParams)
		if err == nil {
			addrs = append(addrs, addr)
		}

	case PubKeyTy:
		// A pay-to-pubkey script is of the form:
		//  <pubkey> OP_CHECKSIG
		requiredSigs = 1
		addr, err := btcutil.NewAddressPubKey(data[0], chainParams)
		if err == nil {
			addrs = append(addrs, addr)
		}

	case ScriptHashTy:
		// A pay-to-script-hash script is of the form:
		//  OP_HASH160 <scripthash> OP_EQUAL
		requiredSigs = 1
		addr, err := btcutil.NewAddressScriptHashFromHash(data[0],
			chainParams)
		if err == nil {
			addrs = append(addrs, addr)
		}

	case MultiSigTy:
		// A multi-signature script is of the form:
		//  <numsigs> <pubkey> <pubkey> <pubkey>... <numpubkeys> OP_CHECKMULTISIG
		requiredSigs = asSmallInt(script.chunks[0].Opcode)
		for _, pubKey := range data {
			addr, err := btcutil.NewAddressPubKey(pubKey, chainParams)
			if err == nil {
				addrs = append(addrs, addr)
			}
		}
	}

	return class, addrs, requiredSigs, nil
}

// PushedData returns an array of byte slices containing any pushed data found
// in the passed script.  This includes OP_0, but not OP_1 - OP_16.
func PushedData(script []byte) ([][]byte, error) {
	chunks, err := parseChunks(script)
	if err != nil {
		return nil, err
	}

	var data [][]byte
	for _, c := range chunks {
		if c.IsData() {
			data = append(data, c.Data)
		} else if c.Opcode == OP_0 {
			data = append(data, nil)
		}
	}
	return data, nil
}

// CalcMultiSigStats returns the number of public keys and signatures from
// a multi-signature transaction script.  The passed script MUST already be
// known to be a multi-signature script.
func CalcMultiSigStats(script []byte) (int, int, error) {
	chunks, err := parseChunks(script)
	if err != nil {
		return 0, 0, err
	}

	// A multi-signature script is of the pattern:
	//  NUM_SIGS PUBKEY PUBKEY PUBKEY... NUM_PUBKEYS OP_CHECKMULTISIG
	// Therefore the number of signatures is the oldest item on the stack
	// and the number of pubkeys is the 2nd to last.  Also, the absolute
	// minimum for a multi-signature script is 1 pubkey, so at least 4
	// items must be on the stack per:
	//  OP_1 PUBKEY OP_1 OP_CHECKMULTISIG
	if !isMultiSig(chunks) {
		str := fmt.Sprintf("script %x is not a multisig script", script)
		return 0, 0, scriptError(ErrNotMultisigScript, str)
	}

	numSigs := asSmallInt(chunks[0].Opcode)
	numPubKeys := asSmallInt(chunks[len(chunks)-2].Opcode)
	return numPubKeys, numSigs, nil
}
