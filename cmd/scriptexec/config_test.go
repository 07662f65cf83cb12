// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/coinkit/btcscript/txscript"
	"github.com/stretchr/testify/require"
)

// TestParseScriptFlags ensures flag names are mapped and combined.
func TestParseScriptFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    txscript.ScriptFlags
		wantErr bool
	}{
		{"", 0, false},
		{"NONE", 0, false},
		{"P2SH", txscript.ScriptBip16, false},
		{" p2sh , CleanStack", txscript.ScriptBip16 |
			txscript.ScriptVerifyCleanStack, false},
		{"STANDARD", txscript.StandardVerifyFlags, false},
		{"DERSIG,LOW_S,STRICTENC", txscript.ScriptVerifyDERSignatures |
			txscript.ScriptVerifyLowS |
			txscript.ScriptVerifyStrictEncoding, false},
		{"P2SH,WITNESS", 0, true},
	}

	for _, test := range tests {
		got, err := parseScriptFlags(test.in)
		if test.wantErr {
			require.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		require.Equal(t, test.want, got, test.in)
	}
}

// TestLoadConfig ensures command line arguments are validated and resolved.
func TestLoadConfig(t *testing.T) {
	cfg, _, err := loadConfig([]string{"--pkscript=51", "--testnet",
		"--flags=P2SH,MINIMALDATA", "--nofilelogging"})
	require.NoError(t, err)
	require.Equal(t, &chaincfg.TestNet3Params, cfg.params)
	require.Equal(t, txscript.ScriptBip16|txscript.ScriptVerifyMinimalData,
		cfg.scriptFlags)
	require.Equal(t, []string{"51"}, cfg.PkScripts)

	cfg, _, err = loadConfig([]string{"-p", "51"})
	require.NoError(t, err)
	require.Equal(t, &chaincfg.MainNetParams, cfg.params)
	require.Equal(t, txscript.StandardVerifyFlags, cfg.scriptFlags)
	require.Equal(t, uint(defaultSigCacheMaxSize), cfg.SigCacheMaxSize)

	cfg, _, err = loadConfig([]string{"--version"})
	require.NoError(t, err)
	require.True(t, cfg.ShowVersion)

	bad := map[string][]string{
		"no pkscript":      {"--flags=P2SH"},
		"two networks":     {"-p", "51", "--testnet", "--simnet"},
		"unknown flag":     {"-p", "51", "--flags=BOGUS"},
		"bad debug level":  {"-p", "51", "-d", "chatty"},
		"negative input":   {"-p", "51", "--input=-1"},
		"many without tx":  {"-p", "51", "-p", "51"},
		"unknown argument": {"-p", "51", "--bogus"},
	}
	for name, args := range bad {
		_, _, err := loadConfig(args)
		require.Error(t, err, name)
	}
}

// p2pkhSpend returns a serialized transaction whose only input spends a
// pay-to-pubkey-hash output, along with the spent script and its address.
func p2pkhSpend(t *testing.T) (*wire.MsgTx, []byte, string) {
	t.Helper()

	seed := chainhash.HashB([]byte("scriptexec test key"))
	key, pubKey := btcec.PrivKeyFromBytes(seed)
	pubKeyHash := btcutil.Hash160(pubKey.SerializeCompressed())
	addr, err := btcutil.NewAddressPubKeyHash(pubKeyHash,
		&chaincfg.MainNetParams)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	var prevHash chainhash.Hash
	prevHash[31] = 0x01
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(5000, pkScript.Bytes()))

	sigScript, err := txscript.SignatureScript(tx, 0, pkScript.Bytes(),
		txscript.SigHashAll, key, true)
	require.NoError(t, err)
	tx.TxIn[0].SignatureScript = sigScript

	return tx, pkScript.Bytes(), addr.EncodeAddress()
}

// serializeTxHex returns the hex encoding of the serialized transaction.
func serializeTxHex(t *testing.T, tx *wire.MsgTx) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return hex.EncodeToString(buf.Bytes())
}

// TestVerifyJob ensures a decoded job verifies the input and reports the
// public key script details.
func TestVerifyJob(t *testing.T) {
	tx, pkScript, addr := p2pkhSpend(t)
	cfg := &config{
		TxHex:           serializeTxHex(t, tx),
		PkScripts:       []string{hex.EncodeToString(pkScript)},
		SigCacheMaxSize: 10,
		params:          &chaincfg.MainNetParams,
		scriptFlags:     txscript.StandardVerifyFlags,
	}

	job, err := newVerifyJob(cfg)
	require.NoError(t, err)
	require.Equal(t, tx.TxIn[0].SignatureScript, job.sigScript)

	var out bytes.Buffer
	require.NoError(t, job.run(context.Background(), &out))
	require.Contains(t, out.String(), "class: pubkeyhash")
	require.Contains(t, out.String(), "address: "+addr)
	require.Contains(t, out.String(), "sigops: 1")
	require.Contains(t, out.String(), "result: valid")

	// The same input verifies through the whole transaction path.
	cfg.PkScripts = append(cfg.PkScripts, cfg.PkScripts[0])
	tx2 := tx.Copy()
	tx2.AddTxIn(wire.NewTxIn(&tx.TxIn[0].PreviousOutPoint, nil, nil))
	cfg.TxHex = serializeTxHex(t, tx2)
	job, err = newVerifyJob(cfg)
	require.NoError(t, err)
	out.Reset()
	require.ErrorIs(t, job.run(context.Background(), &out), errScriptFailed)
	require.Contains(t, out.String(), "result: invalid")

	// Overriding the signature script with one that leaves false on the
	// stack fails.
	cfg.TxHex = serializeTxHex(t, tx)
	cfg.PkScripts = cfg.PkScripts[:1]
	cfg.SigScript = "00"
	cfg.scriptFlags = 0
	job, err = newVerifyJob(cfg)
	require.NoError(t, err)
	out.Reset()
	require.ErrorIs(t, job.run(context.Background(), &out), errScriptFailed)
	require.Contains(t, out.String(), "sigscript: 0")
	require.Contains(t, out.String(), "result: invalid")
}

// TestNewVerifyJobErrors ensures malformed inputs are rejected.
func TestNewVerifyJobErrors(t *testing.T) {
	t.Parallel()

	tx, pkScript, _ := p2pkhSpend(t)
	pkHex := hex.EncodeToString(pkScript)

	tests := []struct {
		name string
		cfg  config
	}{
		{"bad pkscript", config{PkScripts: []string{"zz"}}},
		{"bad tx hex", config{PkScripts: []string{pkHex}, TxHex: "0g"}},
		{"truncated tx", config{PkScripts: []string{pkHex},
			TxHex: "01000000"}},
		{"input out of range", config{PkScripts: []string{pkHex},
			TxHex: serializeTxHex(t, tx), InputIndex: 1}},
		{"bad sigscript", config{PkScripts: []string{pkHex},
			SigScript: "abc"}},
		{"pkscript count mismatch", config{
			PkScripts: []string{pkHex, pkHex},
			TxHex:     serializeTxHex(t, tx)}},
	}

	for _, test := range tests {
		cfg := test.cfg
		_, err := newVerifyJob(&cfg)
		require.Error(t, err, test.name)
	}
}
