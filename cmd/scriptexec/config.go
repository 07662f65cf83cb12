// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/coinkit/btcscript/internal/log"
	"github.com/coinkit/btcscript/txscript"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLogLevel        = "info"
	defaultLogFilename     = "scriptexec.log"
	defaultScriptFlags     = "STANDARD"
	defaultSigCacheMaxSize = 50000
)

var (
	scriptexecHomeDir = btcutil.AppDataDir("scriptexec", false)
	defaultLogDir     = filepath.Join(scriptexecHomeDir, "logs")
)

// scriptFlagNames maps the names accepted by --flags to script flags.
var scriptFlagNames = map[string]txscript.ScriptFlags{
	"P2SH":                       txscript.ScriptBip16,
	"NULLDUMMY":                  txscript.ScriptStrictMultiSig,
	"DISCOURAGE_UPGRADABLE_NOPS": txscript.ScriptDiscourageUpgradableNops,
	"CLEANSTACK":                 txscript.ScriptVerifyCleanStack,
	"DERSIG":                     txscript.ScriptVerifyDERSignatures,
	"LOW_S":                      txscript.ScriptVerifyLowS,
	"MINIMALDATA":                txscript.ScriptVerifyMinimalData,
	"SIGPUSHONLY":                txscript.ScriptVerifySigPushOnly,
	"STRICTENC":                  txscript.ScriptVerifyStrictEncoding,
	"CHECKLOCKTIMEVERIFY":        txscript.ScriptVerifyCheckLockTimeVerify,
	"CHECKSEQUENCEVERIFY":        txscript.ScriptVerifyCheckSequenceVerify,
	"STANDARD":                   txscript.StandardVerifyFlags,
	"NONE":                       0,
}

// config defines the configuration options for scriptexec.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion     bool     `short:"V" long:"version" description:"Display version information and exit"`
	DebugLevel      string   `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogDir          string   `long:"logdir" description:"Directory to log output"`
	NoFileLogging   bool     `long:"nofilelogging" description:"Disable file logging"`
	Trace           bool     `long:"trace" description:"Log every executed opcode along with the stacks"`
	RegressionTest  bool     `long:"regtest" description:"Use the regression test network for address display"`
	SimNet          bool     `long:"simnet" description:"Use the simulation test network for address display"`
	TestNet3        bool     `long:"testnet" description:"Use the test network for address display"`
	TxHex           string   `short:"t" long:"tx" description:"Hex-encoded spending transaction"`
	InputIndex      int      `short:"i" long:"input" description:"Index of the transaction input to verify"`
	PkScripts       []string `short:"p" long:"pkscript" description:"Hex-encoded public key script of the spent output -- Specify once per input to verify every input of the transaction"`
	SigScript       string   `short:"s" long:"sigscript" description:"Hex-encoded signature script overriding the one carried by the input"`
	Flags           string   `short:"f" long:"flags" description:"Comma-separated script verification flags {P2SH, NULLDUMMY, DISCOURAGE_UPGRADABLE_NOPS, CLEANSTACK, DERSIG, LOW_S, MINIMALDATA, SIGPUSHONLY, STRICTENC, CHECKLOCKTIMEVERIFY, CHECKSEQUENCEVERIFY, STANDARD, NONE}"`
	SigCacheMaxSize uint     `long:"sigcachemaxsize" description:"The maximum number of entries in the signature verification cache"`

	params      *chaincfg.Params
	scriptFlags txscript.ScriptFlags
}

// parseScriptFlags converts a comma-separated list of flag names into the
// script flags they enable.  Names are case insensitive.
func parseScriptFlags(str string) (txscript.ScriptFlags, error) {
	var scriptFlags txscript.ScriptFlags
	for _, name := range strings.Split(str, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		flag, ok := scriptFlagNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown script flag %q", name)
		}
		scriptFlags |= flag
	}
	return scriptFlags, nil
}

// loadConfig initializes and parses the config using the passed command line
// arguments.
func loadConfig(args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		DebugLevel:      defaultLogLevel,
		LogDir:          defaultLogDir,
		Flags:           defaultScriptFlags,
		SigCacheMaxSize: defaultSigCacheMaxSize,
		params:          &chaincfg.MainNetParams,
	}

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	if cfg.ShowVersion {
		return &cfg, remainingArgs, nil
	}

	// Multiple networks can't be selected simultaneously.
	funcName := "loadConfig"
	numNets := 0
	if cfg.TestNet3 {
		numNets++
		cfg.params = &chaincfg.TestNet3Params
	}
	if cfg.RegressionTest {
		numNets++
		cfg.params = &chaincfg.RegressionNetParams
	}
	if cfg.SimNet {
		numNets++
		cfg.params = &chaincfg.SimNetParams
	}
	if numNets > 1 {
		str := "%s: The testnet, regtest, and simnet params can't be " +
			"used together -- choose one of the three"
		err := fmt.Errorf(str, funcName)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	// Parse, validate, and set debug log level(s).
	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %w", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	cfg.scriptFlags, err = parseScriptFlags(cfg.Flags)
	if err != nil {
		err := fmt.Errorf("%s: %w", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	if len(cfg.PkScripts) == 0 {
		str := "%s: at least one public key script must be specified " +
			"with --pkscript"
		err := fmt.Errorf(str, funcName)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Verifying every input needs the transaction along with one script
	// per input and takes the signature scripts from the inputs.
	if len(cfg.PkScripts) > 1 && (cfg.TxHex == "" || cfg.SigScript != "") {
		str := "%s: multiple public key scripts require --tx and can't " +
			"be combined with --sigscript"
		err := fmt.Errorf(str, funcName)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	if cfg.InputIndex < 0 {
		str := "%s: the input index may not be negative -- parsed [%d]"
		err := fmt.Errorf(str, funcName, cfg.InputIndex)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	return &cfg, remainingArgs, nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(scriptexecHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
