// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/wire"
	"github.com/coinkit/btcscript/internal/log"
	"github.com/coinkit/btcscript/internal/version"
	"github.com/coinkit/btcscript/txscript"
)

// errScriptFailed is returned when the verification completed and rejected at
// least one input.
var errScriptFailed = errors.New("script verification failed")

// verifyJob houses the decoded inputs of a verification run.
type verifyJob struct {
	tx        *wire.MsgTx
	inputIdx  int
	sigScript []byte
	pkScripts [][]byte
	cfg       *config
}

// decodeHex decodes a hex string which may be wrapped in whitespace.  The
// name identifies the option in errors.
func decodeHex(name, str string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(str))
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", name, err)
	}
	return b, nil
}

// newVerifyJob decodes the transaction and scripts named by the config.
func newVerifyJob(cfg *config) (*verifyJob, error) {
	job := verifyJob{
		inputIdx: cfg.InputIndex,
		cfg:      cfg,
	}

	for _, pkHex := range cfg.PkScripts {
		pkScript, err := decodeHex("public key script", pkHex)
		if err != nil {
			return nil, err
		}
		job.pkScripts = append(job.pkScripts, pkScript)
	}

	if cfg.TxHex != "" {
		serializedTx, err := decodeHex("transaction", cfg.TxHex)
		if err != nil {
			return nil, err
		}
		var tx wire.MsgTx
		err = tx.Deserialize(bytes.NewReader(serializedTx))
		if err != nil {
			return nil, fmt.Errorf("unable to deserialize "+
				"transaction: %w", err)
		}
		if job.inputIdx >= len(tx.TxIn) {
			return nil, fmt.Errorf("input index %d is out of range "+
				"for a transaction with %d inputs", job.inputIdx,
				len(tx.TxIn))
		}
		if len(job.pkScripts) > 1 && len(job.pkScripts) != len(tx.TxIn) {
			return nil, fmt.Errorf("%d public key scripts were given for "+
				"a transaction with %d inputs", len(job.pkScripts),
				len(tx.TxIn))
		}
		job.tx = &tx
		job.sigScript = tx.TxIn[job.inputIdx].SignatureScript
	}

	if cfg.SigScript != "" {
		sigScript, err := decodeHex("signature script", cfg.SigScript)
		if err != nil {
			return nil, err
		}
		job.sigScript = sigScript
	}

	return &job, nil
}

// describeScript writes the disassembly of script along with its class and,
// for public key scripts, the addresses it pays.
func (j *verifyJob) describeScript(w io.Writer, name string, script []byte,
	isPkScript bool) {

	disasm, err := txscript.DisasmString(script)
	if err != nil {
		disasm = fmt.Sprintf("%s [error: %v]", disasm, err)
	}
	fmt.Fprintf(w, "%s: %s\n", name, disasm)
	if !isPkScript {
		return
	}

	class, addrs, reqSigs, err := txscript.ExtractPkScriptAddrs(script,
		j.cfg.params)
	if err != nil {
		fmt.Fprintf(w, "  class: %v (%v)\n", class, err)
		return
	}
	fmt.Fprintf(w, "  class: %v\n", class)
	fmt.Fprintf(w, "  required signatures: %d\n", reqSigs)
	for _, addr := range addrs {
		fmt.Fprintf(w, "  address: %s\n", addr.EncodeAddress())
	}
}

// run verifies the job and writes a report to w.  It returns errScriptFailed
// when the scripts were evaluated and rejected.
func (j *verifyJob) run(ctx context.Context, w io.Writer) error {
	sigCache := txscript.NewSigCache(j.cfg.SigCacheMaxSize)
	checker := txscript.NewECDSAChecker(sigCache)

	if len(j.pkScripts) > 1 {
		for i, txIn := range j.tx.TxIn {
			name := fmt.Sprintf("input %d", i)
			j.describeScript(w, name+" sigscript", txIn.SignatureScript,
				false)
			j.describeScript(w, name+" pkscript", j.pkScripts[i], true)
		}

		log.SxecLog.Infof("Verifying %d inputs of transaction %v",
			len(j.tx.TxIn), j.tx.TxHash())
		err := txscript.ValidateTransactionScripts(ctx, j.tx, j.pkScripts,
			j.cfg.scriptFlags, checker)
		if err != nil {
			fmt.Fprintf(w, "result: invalid (%v)\n", err)
			return errScriptFailed
		}
		fmt.Fprintln(w, "result: valid")
		return nil
	}

	pkScript := j.pkScripts[0]
	j.describeScript(w, "sigscript", j.sigScript, false)
	j.describeScript(w, "pkscript", pkScript, true)
	bip16 := j.cfg.scriptFlags&txscript.ScriptBip16 != 0
	fmt.Fprintf(w, "sigops: %d\n", txscript.GetPreciseSigOpCount(
		j.sigScript, pkScript, bip16))

	log.SxecLog.Infof("Verifying input %d", j.inputIdx)
	_, err := txscript.VerifyScript(ctx, j.sigScript, pkScript, j.tx,
		j.inputIdx, j.cfg.scriptFlags, checker)
	if err != nil {
		var scriptErr txscript.Error
		if errors.As(err, &scriptErr) {
			fmt.Fprintf(w, "result: invalid (%v: %s)\n", scriptErr.Err,
				scriptErr.Description)
		} else {
			fmt.Fprintf(w, "result: invalid (%v)\n", err)
		}
		return errScriptFailed
	}
	fmt.Fprintln(w, "result: valid")
	return nil
}

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	// Load configuration and parse command line.
	cfg, _, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		fmt.Println(version.Banner(filepath.Base(os.Args[0])))
		return nil
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables may be used.
	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := log.InitLogRotator(logFile); err != nil {
			return err
		}
		defer log.LogRotator.Close()
	}
	if cfg.Trace {
		log.SetLogLevel("SCRP", "trace")
	}

	job, err := newVerifyJob(cfg)
	if err != nil {
		log.SxecLog.Error(err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return job.run(ctx, os.Stdout)
}

func main() {
	if err := realMain(); err != nil {
		if !errors.Is(err, errScriptFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
